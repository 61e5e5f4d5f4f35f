package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/partyup/partyup/internal/dependencies/clock"
	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/storage"
)

// Errors
var (
	ErrInvalidGameName = errors.New("game name must be between 3 and 128 characters")
	ErrInvalidSetting  = errors.New("invalid setting")
)

// Game name length limits, in runes
const (
	MinGameNameLength = 3
	MaxGameNameLength = 128
)

// Controller manages the game directory: creation, rosters, host
// privileges, settings and team assignment
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
}

// NewController creates a new directory controller
func NewController(storage storage.Storage, clock clock.Clock) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
	}
}

// ValidateGameName checks game name length limits
func ValidateGameName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinGameNameLength || n > MaxGameNameLength {
		return ErrInvalidGameName
	}
	return nil
}

// CreateGame creates a new game with the given user as host. The game
// name must be globally unique; model.ErrGameNameTaken is returned when
// it is already in use.
func (c *Controller) CreateGame(ctx context.Context, creator *model.User, name string) (*model.Game, error) {
	if err := ValidateGameName(name); err != nil {
		return nil, err
	}

	game := &model.Game{
		ID:        model.GameID(uuid.NewString()),
		Name:      name,
		CreatedAt: c.clock.Now(),
	}

	if err := c.storage.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	creator.GameID = game.ID
	creator.Role = model.RoleHost
	if err := c.storage.AddPlayer(ctx, game.ID, creator); err != nil {
		return nil, err
	}

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// JoinGame adds a user to a game's roster as a player. Joining a game the
// user is already in is a no-op that keeps their existing role, so a host
// following their own invite link stays host. A user belongs to at most
// one game: switching games detaches them from the previous roster.
func (c *Controller) JoinGame(ctx context.Context, gameID model.GameID, user *model.User) error {
	if _, err := c.storage.GetGame(ctx, gameID); err != nil {
		return err
	}

	if user.GameID != gameID {
		if user.GameID != "" {
			if err := c.storage.RemovePlayer(ctx, user.GameID, user.ID); err != nil {
				return err
			}
		}
		user.GameID = gameID
		user.Role = model.RolePlayer
		user.Team = ""
	}

	return c.storage.AddPlayer(ctx, gameID, user)
}

// Roster returns all users in a game
func (c *Controller) Roster(ctx context.Context, gameID model.GameID) ([]*model.User, error) {
	return c.storage.ListPlayers(ctx, gameID)
}

// GetHost returns the host of a game, or model.ErrNotHost if the game has
// no host (which indicates a corrupted roster)
func (c *Controller) GetHost(ctx context.Context, gameID model.GameID) (*model.User, error) {
	roster, err := c.storage.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	host := model.GetHost(roster)
	if host == nil {
		return nil, model.ErrNotHost
	}
	return host, nil
}

// SetHost assigns the host role to a roster member. A game has exactly one
// host: assigning the current host again is a no-op, any other assignment
// fails with model.ErrHostAlreadyAssigned.
func (c *Controller) SetHost(ctx context.Context, gameID model.GameID, userID model.UserID) error {
	roster, err := c.storage.ListPlayers(ctx, gameID)
	if err != nil {
		return err
	}

	current := model.GetHost(roster)
	if current != nil {
		if current.ID == userID {
			return nil
		}
		return model.ErrHostAlreadyAssigned
	}

	for _, u := range roster {
		if u.ID == userID {
			u.Role = model.RoleHost
			return c.storage.SaveUser(ctx, u)
		}
	}
	return model.ErrUserNotFound
}

// UpdateSettings validates and replaces a game's settings. Only the host
// may change settings. Unknown keys and out-of-range values are rejected.
func (c *Controller) UpdateSettings(ctx context.Context, gameID model.GameID, requester model.UserID, settings map[string]string) error {
	if err := c.requireHost(ctx, gameID, requester); err != nil {
		return err
	}

	validated := make(map[string]string, len(settings))
	for key, value := range settings {
		bounds, ok := model.SettingRanges[key]
		if !ok {
			return fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", ErrInvalidSetting, key)
		}
		if n < bounds.Min || n > bounds.Max {
			return fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidSetting, key, bounds.Min, bounds.Max)
		}
		validated[key] = strconv.Itoa(n)
	}

	return c.storage.ReplaceSettings(ctx, gameID, validated)
}

// Settings returns a game's settings with defaults filled in for any key
// the host has not configured
func (c *Controller) Settings(ctx context.Context, gameID model.GameID) (map[string]string, error) {
	stored, err := c.storage.GetSettings(ctx, gameID)
	if err != nil {
		return nil, err
	}

	settings := make(map[string]string, len(model.SettingRanges))
	for key, bounds := range model.SettingRanges {
		if value, ok := stored[key]; ok {
			settings[key] = value
		} else {
			settings[key] = strconv.Itoa(bounds.Default)
		}
	}
	return settings, nil
}

// SetTeams assigns team tags to roster members. Only the host may assign
// teams. Users absent from the assignment keep their current team.
func (c *Controller) SetTeams(ctx context.Context, gameID model.GameID, requester model.UserID, assignments map[model.UserID]string) error {
	if err := c.requireHost(ctx, gameID, requester); err != nil {
		return err
	}

	roster, err := c.storage.ListPlayers(ctx, gameID)
	if err != nil {
		return err
	}

	for _, u := range roster {
		team, ok := assignments[u.ID]
		if !ok || u.Team == team {
			continue
		}
		u.Team = team
		if err := c.storage.SaveUser(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) requireHost(ctx context.Context, gameID model.GameID, userID model.UserID) error {
	roster, err := c.storage.ListPlayers(ctx, gameID)
	if err != nil {
		return err
	}
	for _, u := range roster {
		if u.ID == userID {
			if !u.IsHost() {
				return model.ErrNotHost
			}
			return nil
		}
	}
	return model.ErrNotInGame
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, creator *model.User, name string) (*model.Game, error)
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	JoinGame(ctx context.Context, gameID model.GameID, user *model.User) error
	Roster(ctx context.Context, gameID model.GameID) ([]*model.User, error)
	GetHost(ctx context.Context, gameID model.GameID) (*model.User, error)
	SetHost(ctx context.Context, gameID model.GameID, userID model.UserID) error
	UpdateSettings(ctx context.Context, gameID model.GameID, requester model.UserID, settings map[string]string) error
	Settings(ctx context.Context, gameID model.GameID) (map[string]string, error)
	SetTeams(ctx context.Context, gameID model.GameID, requester model.UserID, assignments map[model.UserID]string) error
}

var _ ControllerInterface = (*Controller)(nil)
