package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	games         map[model.GameID]*model.Game
	gameNameIndex map[string]model.GameID
	rosters       map[model.GameID][]model.UserID
	settings      map[model.GameID]map[string]string
	notifications map[model.UserID][]*model.Notification
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		games:         make(map[model.GameID]*model.Game),
		gameNameIndex: make(map[string]model.GameID),
		rosters:       make(map[model.GameID][]model.UserID),
		settings:      make(map[model.GameID]map[string]string),
		notifications: make(map[model.UserID][]*model.Notification),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gameNameIndex[game.Name]; ok {
		return model.ErrGameNameTaken
	}
	s.gameNameIndex[game.Name] = game.ID
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) GetGameByName(ctx context.Context, name string) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.gameNameIndex[name]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil
	}
	delete(s.gameNameIndex, game.Name)
	delete(s.games, id)
	delete(s.rosters, id)
	delete(s.settings, id)
	return nil
}

// Roster operations

func (s *Storage) AddPlayer(ctx context.Context, gameID model.GameID, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; !ok {
		return model.ErrGameNotFound
	}
	for _, id := range s.rosters[gameID] {
		if id == user.ID {
			s.users[user.ID] = user
			return nil
		}
		member, ok := s.users[id]
		if ok && member.Name == user.Name {
			return model.ErrNameTakenInGame
		}
	}
	s.rosters[gameID] = append(s.rosters[gameID], user.ID)
	s.users[user.ID] = user
	return nil
}

func (s *Storage) RemovePlayer(ctx context.Context, gameID model.GameID, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rosters[gameID][:0]
	for _, id := range s.rosters[gameID] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	s.rosters[gameID] = kept
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []*model.User
	for _, id := range s.rosters[gameID] {
		if user, ok := s.users[id]; ok {
			players = append(players, user)
		}
	}
	return players, nil
}

// Settings operations

func (s *Storage) ReplaceSettings(ctx context.Context, gameID model.GameID, settings map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	replacement := make(map[string]string, len(settings))
	for k, v := range settings {
		replacement[k] = v
	}
	s.settings[gameID] = replacement
	return nil
}

func (s *Storage) GetSettings(ctx context.Context, gameID model.GameID) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]string, len(s.settings[gameID]))
	for k, v := range s.settings[gameID] {
		result[k] = v
	}
	return result, nil
}

// Notification operations

func (s *Storage) AddNotification(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[n.UserID][:0]
	for _, existing := range s.notifications[n.UserID] {
		if existing.Name != n.Name {
			kept = append(kept, existing)
		}
	}
	s.notifications[n.UserID] = append(kept, n)
	return nil
}

func (s *Storage) NotificationsSince(ctx context.Context, userID model.UserID, since float64) ([]*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Notification
	for _, n := range s.notifications[userID] {
		if n.Timestamp > since {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}

func (s *Storage) DeleteNotifications(ctx context.Context, userID model.UserID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[userID][:0]
	for _, n := range s.notifications[userID] {
		if n.Name != name {
			kept = append(kept, n)
		}
	}
	s.notifications[userID] = kept
	return nil
}
