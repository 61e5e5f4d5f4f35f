package web_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"name": {"Alice"}}
	rr := ts.post("/register", form)

	// Should redirect to home
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// Session cookie should be set
	assert.True(t, ts.cookies.hasSession())

	// Follow redirect and check we're logged in
	rr = ts.followRedirect(rr)
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#current-user", "Alice")
	assertContainsText(t, doc, "#flash", "Welcome, Alice!")
}

func TestRegisterEmptyName(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"name": {""}}
	rr := ts.post("/register", form)

	// Form is re-rendered with an error, no session
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, ts.cookies.hasSession())

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#register-error")
	assertContainsElement(t, doc, "#register-form")
}

func TestRegisterNameTooLong(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"name": {strings.Repeat("a", 129)}}
	rr := ts.post("/register", form)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, ts.cookies.hasSession())

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#register-error")
}

func TestRegisterDuplicateNamesAllowed(t *testing.T) {
	ts := newWebTestServer(t)

	ts.registerUser("Alice")

	// A second browser can register the same display name
	ts.cookies = newCookieJar()
	form := url.Values{"name": {"Alice"}}
	rr := ts.post("/register", form)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, ts.cookies.hasSession())
}

func TestRegisterPreservesNextTarget(t *testing.T) {
	ts := newWebTestServer(t)

	// Registration page carries the next target into the form
	rr := ts.get("/register?next=/join_game/sometoken")
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	next, ok := doc.Find("#register-form input[name='next']").Attr("value")
	assert.True(t, ok)
	assert.Equal(t, "/join_game/sometoken", next)

	// Submitting with next redirects there
	form := url.Values{
		"name": {"Alice"},
		"next": {"/join_game/sometoken"},
	}
	rr = ts.post("/register", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/join_game/sometoken", rr.Header().Get("Location"))
}

func TestRegisterIgnoresExternalNext(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{
		"name": {"Alice"},
		"next": {"https://evil.example.com/"},
	}
	rr := ts.post("/register", form)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestRegisterPageRedirectsWhenLoggedIn(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")

	rr := ts.get("/register")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestRegisterPostIgnoredWhenLoggedIn(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	token := ts.cookies.cookies["session"].Value

	// A logged-in user resubmitting the form gets no new user or session
	rr := ts.post("/register", url.Values{"name": {"Mallory"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, token, ts.cookies.cookies["session"].Value)

	rr = ts.get("/")
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#current-user", "Alice")
}

func TestAuthenticatedRequestUpdatesLastSeen(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	token := ts.cookies.cookies["session"].Value

	// Registration alone has not recorded any activity yet
	user, err := ts.app.IdentityService.GetUser(context.Background(), token)
	require.NoError(t, err)
	require.True(t, user.LastSeen.IsZero())

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)

	user, err = ts.app.IdentityService.GetUser(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, user.LastSeen.IsZero())
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")

	rr := ts.get("/logout")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// Session cookie is cleared
	assert.False(t, ts.cookies.hasSession())

	// Home now redirects to registration
	rr = ts.get("/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/register")
}

func TestProtectedPageRedirectsAnonymous(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/create_game")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/register?next=/create_game", rr.Header().Get("Location"))
}
