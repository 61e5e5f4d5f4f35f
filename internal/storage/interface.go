package storage

import (
	"context"

	"github.com/partyup/partyup/internal/model"
)

// Storage defines the interface for data persistence.
//
// Multi-step mutations (game creation with its name reservation, joining a
// roster, replacing settings, de-duplicating notifications) are part of the
// contract here rather than in callers, so each backend can make them as
// atomic as its store allows.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	DeleteUser(ctx context.Context, id model.UserID) error

	// Game operations.
	// CreateGame reserves the (case-sensitive) game name atomically and
	// returns model.ErrGameNameTaken if it is already held.
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GetGameByName(ctx context.Context, name string) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error

	// Roster operations.
	// AddPlayer persists the user and adds them to the game's roster,
	// returning model.ErrNameTakenInGame when a different roster member
	// already uses the same display name. Re-adding an existing member is
	// a no-op beyond saving the user record.
	AddPlayer(ctx context.Context, gameID model.GameID, user *model.User) error
	// RemovePlayer takes the user off the game's roster and releases
	// their display name there. Removing a non-member is a no-op.
	RemovePlayer(ctx context.Context, gameID model.GameID, userID model.UserID) error
	ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.User, error)

	// Settings operations. ReplaceSettings deletes all prior settings for
	// the game and writes the given map (replace-all, not upsert).
	ReplaceSettings(ctx context.Context, gameID model.GameID, settings map[string]string) error
	GetSettings(ctx context.Context, gameID model.GameID) (map[string]string, error)

	// Notification operations.
	// AddNotification removes any pending notification with the same name
	// for the same user before inserting (last-write-wins per name).
	AddNotification(ctx context.Context, n *model.Notification) error
	// NotificationsSince returns the user's notifications with timestamp
	// strictly greater than since, ascending by timestamp.
	NotificationsSince(ctx context.Context, userID model.UserID, since float64) ([]*model.Notification, error)
	// DeleteNotifications removes all of the user's notifications with the
	// given name.
	DeleteNotifications(ctx context.Context, userID model.UserID, name string) error
}
