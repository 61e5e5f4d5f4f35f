package handler

import (
	"log/slog"
	"net/http"

	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/services/directory"
	"github.com/partyup/partyup/internal/services/notify"
	"github.com/partyup/partyup/internal/token"
	"github.com/partyup/partyup/internal/web/middleware"
	"github.com/partyup/partyup/internal/web/templates"
)

// LobbyHandler renders the lobby view
type LobbyHandler struct {
	directoryController *directory.Controller
	notifyService       *notify.Service
	tokens              *token.Codec
	renderer            *templates.Renderer
	logger              *slog.Logger
}

// NewLobbyHandler creates a new LobbyHandler
func NewLobbyHandler(
	directoryController *directory.Controller,
	notifyService *notify.Service,
	tokens *token.Codec,
	renderer *templates.Renderer,
	logger *slog.Logger,
) *LobbyHandler {
	return &LobbyHandler{
		directoryController: directoryController,
		notifyService:       notifyService,
		tokens:              tokens,
		renderer:            renderer,
		logger:              logger,
	}
}

// Index renders the lobby. For users in a game it shows the roster and,
// for the host, a fresh invite link. Viewing the lobby consumes the
// viewer's pending join notifications so they are shown exactly once.
func (h *LobbyHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	data := templates.LobbyData{
		PageData: templates.PageData{
			Title: "Lobby",
			Flash: middleware.GetFlash(r.Context()),
			User:  user,
		},
	}

	if !user.InGame() {
		h.render(w, data)
		return
	}

	game, err := h.directoryController.GetGame(r.Context(), user.GameID)
	if err != nil {
		h.logger.Error("loading game", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	roster, err := h.directoryController.Roster(r.Context(), user.GameID)
	if err != nil {
		h.logger.Error("loading roster", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.Game = game
	data.Roster = roster
	data.Host = model.GetHost(roster)
	data.IsHost = user.IsHost()

	if data.IsHost {
		inviteToken, err := h.tokens.Issue(game.ID, token.DefaultTTL)
		if err != nil {
			h.logger.Error("issuing invite token", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data.InviteLink = "/join_game/" + inviteToken
	}

	if n, err := h.notifyService.Consume(r.Context(), user.ID, model.NotificationNewPlayerJoined); err != nil {
		h.logger.Error("consuming notifications", slog.Any("error", err))
	} else if n != nil {
		if name, ok := n.Payload["player_name"].(string); ok {
			data.Joined = append(data.Joined, name)
		}
	}

	h.render(w, data)
}

func (h *LobbyHandler) render(w http.ResponseWriter, data templates.LobbyData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, "lobby.html", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
