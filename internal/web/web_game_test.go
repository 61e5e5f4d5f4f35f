package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGameWithGuest registers a host with a game and a second user who has
// joined it via an invite link. Returns the jars for both users; ts.cookies
// is left on the host's jar.
func setupGameWithGuest(t *testing.T, ts *webTestServer, gameName string) (hostCookies, guestCookies *cookieJar) {
	t.Helper()

	hostCookies = ts.cookies
	ts.registerUser("Alice")
	ts.createGame(gameName)
	link := ts.inviteLink()

	guestCookies = newCookieJar()
	ts.cookies = guestCookies
	ts.registerUser("Bob")
	rr := ts.get(link)
	require.Equal(t, http.StatusSeeOther, rr.Code, "Expected redirect after joining")

	ts.cookies = hostCookies
	return hostCookies, guestCookies
}

func TestCreateGame(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")

	form := url.Values{"game_name": {"Friday Night"}}
	rr := ts.post("/create_game", form)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	// Lobby shows the game with the creator as host
	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#game-name", "Friday Night")
	assertContainsElement(t, doc, "#roster .roster-member .host-badge")
	assertContainsElement(t, doc, "#invite-link")
	assertContainsElement(t, doc, "#init-game-link")
}

func TestCreateGameDuplicateName(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	ts.createGame("Friday Night")

	// A different user cannot reuse the name
	ts.cookies = newCookieJar()
	ts.registerUser("Bob")
	form := url.Values{"game_name": {"Friday Night"}}
	rr := ts.post("/create_game", form)

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#create-game-error", "already exists")
	// The submitted name is kept in the form
	value, _ := doc.Find("#create-game-form input[name='game_name']").Attr("value")
	assert.Equal(t, "Friday Night", value)
}

func TestCreateGameEmptyName(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")

	rr := ts.post("/create_game", url.Values{"game_name": {""}})

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#create-game-error")
}

func TestJoinGameViaInviteLink(t *testing.T) {
	ts := newWebTestServer(t)
	_, guestCookies := setupGameWithGuest(t, ts, "Friday Night")

	// Guest sees the game lobby with both players
	ts.cookies = guestCookies
	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#game-name", "Friday Night")
	assert.Equal(t, 2, doc.Find("#roster .roster-member").Length())
	// Guest is not the host: no invite link, waiting on Alice
	assertNotContainsElement(t, doc, "#invite-link")
	assertContainsText(t, doc, "#waiting-notice", "Alice")
}

func TestJoinGameNotifiesExistingMembers(t *testing.T) {
	ts := newWebTestServer(t)
	hostCookies, _ := setupGameWithGuest(t, ts, "Friday Night")

	// Host's next lobby view announces the join
	ts.cookies = hostCookies
	rr := ts.get("/")
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".joined-notice", "Bob")

	// The notice is consumed: a reload no longer shows it
	rr = ts.get("/")
	doc = parseHTML(rr.Body)
	assertNotContainsElement(t, doc, ".joined-notice")
}

func TestJoinGameInvalidToken(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")

	rr := ts.get("/join_game/not-a-real-token")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestJoinOwnGameKeepsHostRole(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	ts.createGame("Friday Night")
	link := ts.inviteLink()

	// Host follows their own invite link
	rr := ts.get(link)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = ts.get("/")
	doc := parseHTML(rr.Body)
	// Still the host: invite link present, no join notice published
	assertContainsElement(t, doc, "#invite-link")
	assertNotContainsElement(t, doc, ".joined-notice")
	assert.Equal(t, 1, doc.Find("#roster .roster-member").Length())
}

func TestJoinGameDuplicateDisplayName(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	ts.createGame("Friday Night")
	link := ts.inviteLink()

	// Another browser registers the same display name and tries to join
	ts.cookies = newCookieJar()
	ts.registerUser("Alice")
	rr := ts.get(link)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#flash", "already taken")
	// Not in the game
	assertContainsElement(t, doc, "#create-game-link")
}

func TestInitGameUpdatesSettings(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	ts.createGame("Friday Night")

	// Form shows the defaults
	rr := ts.get("/init_game")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	value, _ := doc.Find("#init-game-form input[name='num_cards']").Attr("value")
	assert.Equal(t, "3", value)

	form := url.Values{
		"num_cards":  {"5"},
		"num_rounds": {"4"},
		"round_time": {"60"},
	}
	rr = ts.post("/init_game", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/select_teams", rr.Header().Get("Location"))

	// Reload shows the new values
	rr = ts.get("/init_game")
	doc = parseHTML(rr.Body)
	value, _ = doc.Find("#init-game-form input[name='num_cards']").Attr("value")
	assert.Equal(t, "5", value)
}

func TestInitGameRejectsOutOfRange(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")
	ts.createGame("Friday Night")

	rr := ts.post("/init_game", url.Values{"num_cards": {"999"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#init-game-error")
}

func TestInitGameNonHostRedirected(t *testing.T) {
	ts := newWebTestServer(t)
	_, guestCookies := setupGameWithGuest(t, ts, "Friday Night")

	ts.cookies = guestCookies
	rr := ts.get("/init_game")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = ts.post("/init_game", url.Values{"num_cards": {"5"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestSelectTeams(t *testing.T) {
	ts := newWebTestServer(t)
	_, guestCookies := setupGameWithGuest(t, ts, "Friday Night")

	// Form lists both players
	rr := ts.get("/select_teams")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	require.Equal(t, 2, doc.Find("#select-teams-form .team-row").Length())

	// Assign teams by user ID from the form rows
	form := url.Values{}
	var inputNames []string
	doc.Find("#select-teams-form .team-row input").Each(func(i int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		inputNames = append(inputNames, name)
	})
	teams := []string{"red", "blue"}
	for i, name := range inputNames {
		form.Set(name, teams[i%len(teams)])
	}

	rr = ts.post("/select_teams", form)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	// Team tags show up on the roster for everyone
	ts.cookies = guestCookies
	rr = ts.get("/")
	doc = parseHTML(rr.Body)
	assert.Equal(t, 2, doc.Find("#roster .team-tag").Length())
}

func TestSelectTeamsNonHostRedirected(t *testing.T) {
	ts := newWebTestServer(t)
	_, guestCookies := setupGameWithGuest(t, ts, "Friday Night")

	ts.cookies = guestCookies
	rr := ts.get("/select_teams")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestEnterCardsPlaceholder(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("Alice")

	rr := ts.get("/enter_cards")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "not ready yet")
}
