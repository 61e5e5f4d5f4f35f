package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/partyup/partyup/internal/dependencies/clock"
	"github.com/partyup/partyup/internal/dependencies/random"
	"github.com/partyup/partyup/internal/services/directory"
	"github.com/partyup/partyup/internal/services/identity"
	"github.com/partyup/partyup/internal/services/notify"
	"github.com/partyup/partyup/internal/storage"
	"github.com/partyup/partyup/internal/storage/memory"
	postgresstorage "github.com/partyup/partyup/internal/storage/postgres"
	redisstorage "github.com/partyup/partyup/internal/storage/redis"
	"github.com/partyup/partyup/internal/token"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService     *identity.Service
	DirectoryController *directory.Controller
	NotifyService       *notify.Service
	Tokens              *token.Codec
}

// Config holds configuration for the application factory
type Config struct {
	// IdentityConfig holds configuration for the identity service (optional)
	// If zero value, defaults to identity.DefaultConfig()
	IdentityConfig identity.Config
	// TokenSecret signs invite tokens. If empty, a random secret is
	// generated; tokens then do not survive a restart.
	TokenSecret string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL connection settings (required if StorageType is "postgres")
	PostgresConfig *postgresstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		postgresStore, err := postgresstorage.New(context.Background(), *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = postgresStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Use default identity config if not provided
	identityCfg := cfg.IdentityConfig
	if identityCfg.SessionDuration == 0 {
		identityCfg = identity.DefaultConfig()
	}

	secret := cfg.TokenSecret
	if secret == "" {
		logger.Warn("no token secret configured, generating an ephemeral one")
		secret = rnd.String(32, secretAlphabet)
	}

	return newWithDependencies(store, clk, rnd, identityCfg, []byte(secret)), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, identityCfg identity.Config, secret []byte) *App {
	identityService := identity.New(store, clk, rnd, identityCfg)
	directoryController := directory.NewController(store, clk)
	notifyService := notify.New(store, clk)
	tokens := token.NewCodec(secret, clk)

	return &App{
		Storage:             store,
		Clock:               clk,
		Random:              rnd,
		IdentityService:     identityService,
		DirectoryController: directoryController,
		NotifyService:       notifyService,
		Tokens:              tokens,
	}
}
