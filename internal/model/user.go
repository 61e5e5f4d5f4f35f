package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// Role distinguishes the game host from ordinary players
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

// User represents a registered participant. Users are identified by a
// display name only; the name is unique within a game's roster, not
// globally.
type User struct {
	ID        UserID
	Name      string
	GameID    GameID // empty until the user joins or creates a game
	Role      Role
	Team      string // team tag assigned during team selection, empty until then
	LastSeen  time.Time
	CreatedAt time.Time
}

// InGame reports whether the user currently belongs to a game
func (u *User) InGame() bool {
	return u.GameID != ""
}

// IsHost reports whether the user holds the host role
func (u *User) IsHost() bool {
	return u.Role == RoleHost
}
