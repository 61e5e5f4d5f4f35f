package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"

	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/services/directory"
	"github.com/partyup/partyup/internal/services/notify"
	"github.com/partyup/partyup/internal/token"
	"github.com/partyup/partyup/internal/web/middleware"
	"github.com/partyup/partyup/internal/web/templates"
)

// GameHandler handles game creation, joining and host setup
type GameHandler struct {
	directoryController *directory.Controller
	notifyService       *notify.Service
	tokens              *token.Codec
	renderer            *templates.Renderer
	logger              *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(
	directoryController *directory.Controller,
	notifyService *notify.Service,
	tokens *token.Codec,
	renderer *templates.Renderer,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		directoryController: directoryController,
		notifyService:       notifyService,
		tokens:              tokens,
		renderer:            renderer,
		logger:              logger,
	}
}

// CreateGamePage renders the game creation form
func (h *GameHandler) CreateGamePage(w http.ResponseWriter, r *http.Request) {
	h.renderCreateGame(w, r, templates.CreateGameData{})
}

// CreateGame handles the game creation form submission
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderCreateGame(w, r, templates.CreateGameData{Error: "Invalid form data"})
		return
	}

	gameName := strings.TrimSpace(r.FormValue("game_name"))

	_, err := h.directoryController.CreateGame(r.Context(), user, gameName)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrInvalidGameName):
			h.renderCreateGame(w, r, templates.CreateGameData{
				GameName: gameName,
				Error:    err.Error(),
			})
		case errors.Is(err, model.ErrGameNameTaken):
			h.renderCreateGame(w, r, templates.CreateGameData{
				GameName: gameName,
				Error:    "A game with that name already exists",
			})
		default:
			h.logger.Error("creating game", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	middleware.SetFlash(w, "success", "Game "+gameName+" created")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Join consumes an invite token and adds the user to the game's roster.
// Every failure mode of the token itself is a plain 404.
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokenString := mux.Vars(r)["token"]

	gameID, err := h.tokens.Verify(tokenString)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	roster, err := h.directoryController.Roster(r.Context(), gameID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	alreadyMember := false
	for _, u := range roster {
		if u.ID == user.ID {
			alreadyMember = true
			break
		}
	}

	if err := h.directoryController.JoinGame(r.Context(), gameID, user); err != nil {
		switch {
		case errors.Is(err, model.ErrGameNotFound):
			http.NotFound(w, r)
		case errors.Is(err, model.ErrNameTakenInGame):
			middleware.SetFlash(w, "error", "Your name is already taken in that game")
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			h.logger.Error("joining game", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	// Tell everyone who was already in the game
	if !alreadyMember {
		payload := map[string]any{"player_name": user.Name}
		for _, u := range roster {
			if err := h.notifyService.Publish(r.Context(), u.ID, model.NotificationNewPlayerJoined, payload); err != nil {
				h.logger.Error("publishing join notification", slog.Any("error", err))
			}
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// InitGamePage renders the host settings form
func (h *GameHandler) InitGamePage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireHost(w, r)
	if !ok {
		return
	}

	settings, err := h.directoryController.Settings(r.Context(), user.GameID)
	if err != nil {
		h.logger.Error("loading settings", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderInitGame(w, r, templates.InitGameData{
		Fields: settingFields(settings),
	})
}

// InitGame handles the settings form submission
func (h *GameHandler) InitGame(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireHost(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderInitGame(w, r, templates.InitGameData{Error: "Invalid form data"})
		return
	}

	submitted := make(map[string]string, len(model.SettingRanges))
	for key := range model.SettingRanges {
		if value := r.FormValue(key); value != "" {
			submitted[key] = value
		}
	}

	err := h.directoryController.UpdateSettings(r.Context(), user.GameID, user.ID, submitted)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidSetting) {
			h.renderInitGame(w, r, templates.InitGameData{
				Fields: settingFields(submitted),
				Error:  err.Error(),
			})
			return
		}
		h.logger.Error("updating settings", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	middleware.SetFlash(w, "success", "Settings saved")
	http.Redirect(w, r, "/select_teams", http.StatusSeeOther)
}

// SelectTeamsPage renders the team assignment form
func (h *GameHandler) SelectTeamsPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireHost(w, r)
	if !ok {
		return
	}

	roster, err := h.directoryController.Roster(r.Context(), user.GameID)
	if err != nil {
		h.logger.Error("loading roster", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rows := make([]templates.TeamRow, 0, len(roster))
	for _, u := range roster {
		rows = append(rows, templates.TeamRow{
			UserID: u.ID,
			Name:   u.Name,
			Team:   u.Team,
		})
	}

	h.renderSelectTeams(w, r, templates.SelectTeamsData{Rows: rows})
}

// SelectTeams handles the team assignment form submission
func (h *GameHandler) SelectTeams(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireHost(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/select_teams", http.StatusSeeOther)
		return
	}

	assignments := make(map[model.UserID]string)
	for field, values := range r.Form {
		if !strings.HasPrefix(field, "team_") || len(values) == 0 {
			continue
		}
		userID := model.UserID(strings.TrimPrefix(field, "team_"))
		assignments[userID] = strings.TrimSpace(values[0])
	}

	err := h.directoryController.SetTeams(r.Context(), user.GameID, user.ID, assignments)
	if err != nil {
		h.logger.Error("assigning teams", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	middleware.SetFlash(w, "success", "Teams saved")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EnterCards is a placeholder for the card entry phase
func (h *GameHandler) EnterCards(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Card entry is not ready yet. Check back soon."))
}

// requireHost loads the user and redirects anyone who is not the host of
// their game. Non-hosts get a plain redirect, not an error.
func (h *GameHandler) requireHost(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user := middleware.GetUser(r.Context())
	if user == nil || !user.InGame() || !user.IsHost() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

// settingFields converts a settings map into form fields in stable order
func settingFields(settings map[string]string) []templates.SettingField {
	keys := make([]string, 0, len(model.SettingRanges))
	for key := range model.SettingRanges {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]templates.SettingField, 0, len(keys))
	for _, key := range keys {
		bounds := model.SettingRanges[key]
		fields = append(fields, templates.SettingField{
			Key:   key,
			Value: settings[key],
			Min:   bounds.Min,
			Max:   bounds.Max,
		})
	}
	return fields
}

func (h *GameHandler) renderCreateGame(w http.ResponseWriter, r *http.Request, data templates.CreateGameData) {
	data.Title = "Create a game"
	data.Flash = middleware.GetFlash(r.Context())
	data.User = middleware.GetUser(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, "create_game.html", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *GameHandler) renderInitGame(w http.ResponseWriter, r *http.Request, data templates.InitGameData) {
	data.Title = "Game settings"
	data.Flash = middleware.GetFlash(r.Context())
	data.User = middleware.GetUser(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, "init_game.html", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *GameHandler) renderSelectTeams(w http.ResponseWriter, r *http.Request, data templates.SelectTeamsData) {
	data.Title = "Select teams"
	data.Flash = middleware.GetFlash(r.Context())
	data.User = middleware.GetUser(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, "select_teams.html", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
