package web_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobbyRedirectsAnonymous(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/register?next=/", rr.Header().Get("Location"))
}

func TestLobbyWithoutGame(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#create-game-link")
	assertNotContainsElement(t, doc, "#roster")
	assertContainsText(t, doc, "#current-user", "Alice")
}

func TestLobbyShowsRoster(t *testing.T) {
	ts := newWebTestServer(t)
	hostCookies, guestCookies := setupGameWithGuest(t, ts, "Friday Night")

	ts.cookies = hostCookies
	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#game-name", "Friday Night")
	assertContainsText(t, doc, "#roster", "Alice")
	assertContainsText(t, doc, "#roster", "Bob")
	assert.Equal(t, 1, doc.Find("#roster .host-badge").Length())

	// The guest sees the same roster but no host controls
	ts.cookies = guestCookies
	rr = ts.get("/")
	doc = parseHTML(rr.Body)
	assertContainsText(t, doc, "#roster", "Alice")
	assertNotContainsElement(t, doc, "#init-game-link")
	assertContainsElement(t, doc, "#waiting-notice")
}

func TestLobbyInviteLinkFreshPerView(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	ts.createGame("Friday Night")

	first := ts.inviteLink()
	second := ts.inviteLink()

	// Both are valid join links even if issued at the same instant
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)

	ts.cookies = newCookieJar()
	ts.registerUser("Bob")
	rr := ts.get(first)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}
