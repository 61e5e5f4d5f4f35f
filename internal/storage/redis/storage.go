package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, userKey(user.ID), data, s.cfg.UserTTL).Err()
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	return s.client.Del(ctx, userKey(id)).Err()
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// SETNX on the name index is the uniqueness claim; only the winner
	// writes the game record.
	claimed, err := s.client.SetNX(ctx, gameNameIndexKey(game.Name), string(game.ID), s.cfg.GameTTL).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrGameNameTaken
	}

	return s.client.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL).Err()
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) GetGameByName(ctx context.Context, name string) (*model.Game, error) {
	gameIDStr, err := s.client.Get(ctx, gameNameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	return s.GetGame(ctx, model.GameID(gameIDStr))
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.Del(ctx, gameNameIndexKey(game.Name))
	pipe.Del(ctx, rosterKey(id))
	pipe.Del(ctx, rosterNamesKey(id))
	pipe.Del(ctx, settingsKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Roster operations

func (s *Storage) AddPlayer(ctx context.Context, gameID model.GameID, user *model.User) error {
	exists, err := s.client.Exists(ctx, gameKey(gameID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrGameNotFound
	}

	isMember, err := s.client.SIsMember(ctx, rosterKey(gameID), string(user.ID)).Result()
	if err != nil {
		return err
	}
	if isMember {
		return s.SaveUser(ctx, user)
	}

	// SADD on the names set is the uniqueness claim for the display name
	added, err := s.client.SAdd(ctx, rosterNamesKey(gameID), user.Name).Result()
	if err != nil {
		return err
	}
	if added == 0 {
		return model.ErrNameTakenInGame
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, rosterKey(gameID), string(user.ID))
	pipe.Set(ctx, userKey(user.ID), data, s.cfg.UserTTL)
	pipe.Expire(ctx, rosterKey(gameID), s.cfg.GameTTL)
	pipe.Expire(ctx, rosterNamesKey(gameID), s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) RemovePlayer(ctx context.Context, gameID model.GameID, userID model.UserID) error {
	if err := s.client.SRem(ctx, rosterKey(gameID), string(userID)).Err(); err != nil {
		return err
	}

	// Release the display name claim so a later member can use it
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil
		}
		return err
	}
	return s.client.SRem(ctx, rosterNamesKey(gameID), user.Name).Err()
}

func (s *Storage) ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.User, error) {
	userIDs, err := s.client.SMembers(ctx, rosterKey(gameID)).Result()
	if err != nil {
		return nil, err
	}

	if len(userIDs) == 0 {
		return []*model.User{}, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = userKey(model.UserID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.User, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // User may have expired
		}
		var user model.User
		if err := json.Unmarshal([]byte(val.(string)), &user); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &user)
	}

	return players, nil
}

// Settings operations

func (s *Storage) ReplaceSettings(ctx context.Context, gameID model.GameID, settings map[string]string) error {
	key := settingsKey(gameID)

	// Delete existing settings and write the new map atomically
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	if len(settings) > 0 {
		fields := make(map[string]interface{}, len(settings))
		for k, v := range settings {
			fields[k] = v
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.cfg.GameTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSettings(ctx context.Context, gameID model.GameID) (map[string]string, error) {
	return s.client.HGetAll(ctx, settingsKey(gameID)).Result()
}

// Notification operations

func (s *Storage) AddNotification(ctx context.Context, n *model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	indexKey := notificationIndexKey(n.UserID)
	dataKey := notificationDataKey(n.UserID)

	// ZADD by name replaces the previous score for the same name, and the
	// HASH write replaces the previous payload, so the last write wins.
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: n.Timestamp, Member: n.Name})
	pipe.HSet(ctx, dataKey, n.Name, data)
	pipe.Expire(ctx, indexKey, s.cfg.NotificationTTL)
	pipe.Expire(ctx, dataKey, s.cfg.NotificationTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) NotificationsSince(ctx context.Context, userID model.UserID, since float64) ([]*model.Notification, error) {
	names, err := s.client.ZRangeByScore(ctx, notificationIndexKey(userID), &redis.ZRangeBy{
		Min: "(" + strconv.FormatFloat(since, 'f', -1, 64),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, nil
	}

	values, err := s.client.HMGet(ctx, notificationDataKey(userID), names...).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*model.Notification, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var n model.Notification
		if err := json.Unmarshal([]byte(val.(string)), &n); err != nil {
			continue // Skip invalid data
		}
		result = append(result, &n)
	}

	return result, nil
}

func (s *Storage) DeleteNotifications(ctx context.Context, userID model.UserID, name string) error {
	pipe := s.client.Pipeline()
	pipe.ZRem(ctx, notificationIndexKey(userID), name)
	pipe.HDel(ctx, notificationDataKey(userID), name)
	_, err := pipe.Exec(ctx)
	return err
}
