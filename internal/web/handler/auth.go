package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/services/directory"
	"github.com/partyup/partyup/internal/services/identity"
	"github.com/partyup/partyup/internal/token"
	"github.com/partyup/partyup/internal/web/middleware"
	"github.com/partyup/partyup/internal/web/templates"
)

// AuthHandler handles registration and logout
type AuthHandler struct {
	identityService     *identity.Service
	directoryController *directory.Controller
	tokens              *token.Codec
	renderer            *templates.Renderer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	identityService *identity.Service,
	directoryController *directory.Controller,
	tokens *token.Codec,
	renderer *templates.Renderer,
) *AuthHandler {
	return &AuthHandler{
		identityService:     identityService,
		directoryController: directoryController,
		tokens:              tokens,
		renderer:            renderer,
	}
}

// RegisterPage renders the registration form
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.renderRegister(w, r, templates.RegisterData{
		Next: r.URL.Query().Get("next"),
	})
}

// Register handles the registration form submission. When the form carries
// a join link as its next target, the chosen name is also checked against
// that game's roster so the follow-up join cannot fail on a duplicate.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, templates.RegisterData{Error: "Invalid form data"})
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	next := r.FormValue("next")

	if err := identity.ValidateName(name); err != nil {
		h.renderRegister(w, r, templates.RegisterData{
			Name:  name,
			Next:  next,
			Error: err.Error(),
		})
		return
	}

	if gameID, ok := h.joinTarget(next); ok {
		roster, err := h.directoryController.Roster(r.Context(), gameID)
		if err == nil {
			for _, u := range roster {
				if u.Name == name {
					h.renderRegister(w, r, templates.RegisterData{
						Name:  name,
						Next:  next,
						Error: "That name is already taken in this game",
					})
					return
				}
			}
		}
	}

	session, err := h.identityService.Register(r.Context(), name)
	if err != nil {
		h.renderRegister(w, r, templates.RegisterData{
			Name:  name,
			Next:  next,
			Error: "Registration failed",
		})
		return
	}

	h.setSessionCookie(w, session.Token)
	middleware.SetFlash(w, "success", "Welcome, "+name+"!")

	if next != "" && strings.HasPrefix(next, "/") {
		http.Redirect(w, r, next, http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Logout clears the session and returns to the lobby
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.identityService.InvalidateSession(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// joinTarget extracts the game a join link points at, when next is one
func (h *AuthHandler) joinTarget(next string) (model.GameID, bool) {
	const prefix = "/join_game/"
	if !strings.HasPrefix(next, prefix) {
		return "", false
	}
	gameID, err := h.tokens.Verify(strings.TrimPrefix(next, prefix))
	if err != nil {
		return "", false
	}
	return gameID, true
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   86400, // 1 day
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, data templates.RegisterData) {
	data.Title = "Register"
	data.Flash = middleware.GetFlash(r.Context())
	data.User = middleware.GetUser(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, "register.html", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
