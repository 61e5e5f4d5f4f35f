package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/partyup/partyup/internal/config"
	"github.com/partyup/partyup/internal/factory"
	"github.com/partyup/partyup/internal/services/identity"
	postgresstorage "github.com/partyup/partyup/internal/storage/postgres"
	redisstorage "github.com/partyup/partyup/internal/storage/redis"
	"github.com/partyup/partyup/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the lobby web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := factory.New(factoryConfig(cfg, logger))
			if err != nil {
				return err
			}

			router, err := web.NewRouter(web.RouterConfig{
				Logger:              logger,
				IdentityService:     app.IdentityService,
				DirectoryController: app.DirectoryController,
				NotifyService:       app.NotifyService,
				Tokens:              app.Tokens,
			})
			if err != nil {
				return err
			}

			server := web.NewServer(router, web.ServerConfig{
				Host:            cfg.Server.Host,
				Port:            cfg.Server.Port,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			logger.Info("server started",
				slog.String("addr", server.Addr()),
				slog.String("storage", cfg.Storage.Type))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutdown signal received")
				return server.Shutdown(context.Background())
			}
		},
	}
}

// loadConfig resolves the config file from the --config flag or the
// PARTYUP_CONFIG environment variable, falling back to defaults.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("PARTYUP_CONFIG")
	}
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func factoryConfig(cfg *config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		IdentityConfig: identity.Config{SessionDuration: cfg.Session.Duration},
		TokenSecret:    cfg.Invite.Secret,
		Logger:         logger,
		StorageType:    cfg.Storage.Type,
	}

	switch cfg.Storage.Type {
	case factory.StorageTypeRedis:
		fc.RedisConfig = &redisstorage.Config{
			URL:             cfg.Redis.URL,
			PoolSize:        cfg.Redis.PoolSize,
			MinIdleConns:    cfg.Redis.MinIdleConns,
			UserTTL:         cfg.Redis.UserTTL,
			GameTTL:         cfg.Redis.GameTTL,
			NotificationTTL: cfg.Redis.NotificationTTL,
		}
	case factory.StorageTypePostgres:
		fc.PostgresConfig = &postgresstorage.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		}
	}

	return fc
}
