package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/storage"
)

const uniqueViolation = "23505"

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL storage instance
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// Close closes the database connection pool
func (s *Storage) Close() {
	s.pool.Close()
}

// Migrate creates the schema if it does not already exist
func (s *Storage) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			game_id VARCHAR(64),
			role VARCHAR(16),
			team VARCHAR(64),
			last_seen TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT games_name_unique UNIQUE (name)
		)`,
		`CREATE TABLE IF NOT EXISTS roster (
			game_id VARCHAR(64) NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			user_id VARCHAR(64) NOT NULL,
			name VARCHAR(128) NOT NULL,
			PRIMARY KEY (game_id, user_id),
			CONSTRAINT roster_name_unique UNIQUE (game_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			game_id VARCHAR(64) NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			key VARCHAR(64) NOT NULL,
			value VARCHAR(255) NOT NULL,
			PRIMARY KEY (game_id, key)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			user_id VARCHAR(64) NOT NULL,
			name VARCHAR(64) NOT NULL,
			payload JSONB,
			ts DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (user_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_ts ON notifications(user_id, ts)`,
	}

	for _, migration := range migrations {
		if _, err := s.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, game_id, role, team, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET name = $2, game_id = $3, role = $4, team = $5, last_seen = $6
	`
	_, err := s.pool.Exec(ctx, query,
		user.ID, user.Name, user.GameID, user.Role, user.Team, user.LastSeen, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	query := `SELECT id, name, game_id, role, team, last_seen, created_at FROM users WHERE id = $1`
	var user model.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.GameID, &user.Role, &user.Team, &user.LastSeen, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	query := `INSERT INTO games (id, name, created_at) VALUES ($1, $2, $3)`
	_, err := s.pool.Exec(ctx, query, game.ID, game.Name, game.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "games_name_unique") {
			return model.ErrGameNameTaken
		}
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	query := `SELECT id, name, created_at FROM games WHERE id = $1`
	var game model.Game
	err := s.pool.QueryRow(ctx, query, id).Scan(&game.ID, &game.Name, &game.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &game, nil
}

func (s *Storage) GetGameByName(ctx context.Context, name string) (*model.Game, error) {
	query := `SELECT id, name, created_at FROM games WHERE name = $1`
	var game model.Game
	err := s.pool.QueryRow(ctx, query, name).Scan(&game.ID, &game.Name, &game.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("getting game by name: %w", err)
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting game: %w", err)
	}
	return nil
}

// Roster operations

func (s *Storage) AddPlayer(ctx context.Context, gameID model.GameID, user *model.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)`, gameID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking game: %w", err)
	}
	if !exists {
		return model.ErrGameNotFound
	}

	// The (game_id, name) constraint rejects a second member with the same
	// display name; re-adding the same user is a no-op via the PK conflict.
	rosterQuery := `
		INSERT INTO roster (game_id, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, user_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, rosterQuery, gameID, user.ID, user.Name); err != nil {
		if isUniqueViolation(err, "roster_name_unique") {
			return model.ErrNameTakenInGame
		}
		return fmt.Errorf("adding to roster: %w", err)
	}

	userQuery := `
		INSERT INTO users (id, name, game_id, role, team, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET name = $2, game_id = $3, role = $4, team = $5, last_seen = $6
	`
	_, err = tx.Exec(ctx, userQuery,
		user.ID, user.Name, user.GameID, user.Role, user.Team, user.LastSeen, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Storage) RemovePlayer(ctx context.Context, gameID model.GameID, userID model.UserID) error {
	query := `DELETE FROM roster WHERE game_id = $1 AND user_id = $2`
	if _, err := s.pool.Exec(ctx, query, gameID, userID); err != nil {
		return fmt.Errorf("removing from roster: %w", err)
	}
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.User, error) {
	query := `
		SELECT u.id, u.name, u.game_id, u.role, u.team, u.last_seen, u.created_at
		FROM users u
		JOIN roster r ON r.user_id = u.id
		WHERE r.game_id = $1
		ORDER BY u.created_at
	`
	rows, err := s.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var players []*model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(&user.ID, &user.Name, &user.GameID, &user.Role, &user.Team, &user.LastSeen, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, &user)
	}
	return players, rows.Err()
}

// Settings operations

func (s *Storage) ReplaceSettings(ctx context.Context, gameID model.GameID, settings map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM settings WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}

	for key, value := range settings {
		_, err := tx.Exec(ctx,
			`INSERT INTO settings (game_id, key, value) VALUES ($1, $2, $3)`,
			gameID, key, value)
		if err != nil {
			return fmt.Errorf("writing setting: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Storage) GetSettings(ctx context.Context, gameID model.GameID) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM settings WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// Notification operations

func (s *Storage) AddNotification(ctx context.Context, n *model.Notification) error {
	var payloadJSON []byte
	var err error
	if n.Payload != nil {
		payloadJSON, err = json.Marshal(n.Payload)
		if err != nil {
			return fmt.Errorf("marshaling payload: %w", err)
		}
	}

	query := `
		INSERT INTO notifications (user_id, name, payload, ts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name)
		DO UPDATE SET payload = $3, ts = $4
	`
	_, err = s.pool.Exec(ctx, query, n.UserID, n.Name, payloadJSON, n.Timestamp)
	if err != nil {
		return fmt.Errorf("adding notification: %w", err)
	}
	return nil
}

func (s *Storage) NotificationsSince(ctx context.Context, userID model.UserID, since float64) ([]*model.Notification, error) {
	query := `
		SELECT user_id, name, payload, ts
		FROM notifications
		WHERE user_id = $1 AND ts > $2
		ORDER BY ts
	`
	rows, err := s.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var result []*model.Notification
	for rows.Next() {
		var n model.Notification
		var payloadJSON []byte
		if err := rows.Scan(&n.UserID, &n.Name, &payloadJSON, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		if payloadJSON != nil {
			if err := json.Unmarshal(payloadJSON, &n.Payload); err != nil {
				return nil, fmt.Errorf("unmarshaling payload: %w", err)
			}
		}
		result = append(result, &n)
	}
	return result, rows.Err()
}

func (s *Storage) DeleteNotifications(ctx context.Context, userID model.UserID, name string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return fmt.Errorf("deleting notifications: %w", err)
	}
	return nil
}
