package model

// Notification name published when a player joins a game
const NotificationNewPlayerJoined = "new_player_joined"

// Notification is a single event on a user's feed. Timestamps are float
// unix seconds so that clients can hand them straight back as the `since`
// poll watermark.
type Notification struct {
	UserID    UserID
	Name      string
	Payload   map[string]any
	Timestamp float64
}
