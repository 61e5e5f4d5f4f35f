package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partyup/partyup/internal/services/directory"
	"github.com/partyup/partyup/internal/services/identity"
	"github.com/partyup/partyup/internal/services/notify"
	"github.com/partyup/partyup/internal/token"
	"github.com/partyup/partyup/internal/web/handler"
	"github.com/partyup/partyup/internal/web/middleware"
	"github.com/partyup/partyup/internal/web/templates"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger              *slog.Logger
	IdentityService     *identity.Service
	DirectoryController *directory.Controller
	NotifyService       *notify.Service
	Tokens              *token.Codec
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	renderer, err := templates.New()
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.IdentityService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.IdentityService)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.IdentityService, cfg.DirectoryController, cfg.Tokens, renderer)
	gameHandler := handler.NewGameHandler(cfg.DirectoryController, cfg.NotifyService, cfg.Tokens, renderer, cfg.Logger)
	lobbyHandler := handler.NewLobbyHandler(cfg.DirectoryController, cfg.NotifyService, cfg.Tokens, renderer, cfg.Logger)
	notificationsHandler := handler.NewNotificationsHandler(cfg.NotifyService, cfg.Logger)

	// Public routes (optional auth so a logged-in visitor is recognised)
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)

	// Protected routes (require login)
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(authMiddleware)

	protected.HandleFunc("/", lobbyHandler.Index).Methods(http.MethodGet)
	protected.HandleFunc("/index", lobbyHandler.Index).Methods(http.MethodGet)
	protected.HandleFunc("/notifications", notificationsHandler.Poll).Methods(http.MethodGet)

	protected.HandleFunc("/create_game", gameHandler.CreateGamePage).Methods(http.MethodGet)
	protected.HandleFunc("/create_game", gameHandler.CreateGame).Methods(http.MethodPost)
	protected.HandleFunc("/join_game/{token}", gameHandler.Join).Methods(http.MethodGet)
	protected.HandleFunc("/init_game", gameHandler.InitGamePage).Methods(http.MethodGet)
	protected.HandleFunc("/init_game", gameHandler.InitGame).Methods(http.MethodPost)
	protected.HandleFunc("/select_teams", gameHandler.SelectTeamsPage).Methods(http.MethodGet)
	protected.HandleFunc("/select_teams", gameHandler.SelectTeams).Methods(http.MethodPost)
	protected.HandleFunc("/enter_cards", gameHandler.EnterCards).Methods(http.MethodGet)

	return r, nil
}
