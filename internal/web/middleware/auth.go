package middleware

import (
	"context"
	"net/http"

	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/services/identity"
)

type contextKey string

const (
	userContextKey contextKey = "user"

	// SessionCookieName is the cookie carrying the session token
	SessionCookieName = "session"
)

// GetUser retrieves the logged-in user from the request context
// Returns nil if nobody is logged in
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// Auth returns middleware that requires a logged-in user
// Redirects to the registration page if not logged in
func Auth(identityService *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromSession(r, identityService)
			if user == nil {
				// Store original URL to come back after registering
				redirectURL := "/register?next=" + r.URL.Path
				http.Redirect(w, r, redirectURL, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns middleware that attempts to resolve the session but
// doesn't require it. Sets the user in context if logged in, nil otherwise
func OptionalAuth(identityService *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromSession(r, identityService)
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getUserFromSession(r *http.Request, identityService *identity.Service) *model.User {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	user, err := identityService.GetUser(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}

	// Each authenticated request refreshes the user's last-seen time.
	// A failed update doesn't invalidate the session.
	_ = identityService.Touch(r.Context(), user.ID)

	return user
}
