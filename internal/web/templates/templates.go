package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/partyup/partyup/internal/model"
)

//go:embed *.html
var files embed.FS

// FlashMessage is a one-shot message shown at the top of the next page
type FlashMessage struct {
	Type    string // "success", "error" or "info"
	Message string
}

// PageData holds fields common to every page
type PageData struct {
	Title string
	Flash *FlashMessage
	User  *model.User
}

// RegisterData is the data for the registration page
type RegisterData struct {
	PageData
	Name  string
	Next  string
	Error string
}

// CreateGameData is the data for the game creation page
type CreateGameData struct {
	PageData
	GameName string
	Error    string
}

// LobbyData is the data for the lobby page
type LobbyData struct {
	PageData
	Game       *model.Game
	Roster     []*model.User
	Host       *model.User
	IsHost     bool
	InviteLink string
	Joined     []string // display names from consumed join notifications
}

// SettingField is one bounded integer input on the settings form
type SettingField struct {
	Key   string
	Value string
	Min   int
	Max   int
}

// InitGameData is the data for the host settings page
type InitGameData struct {
	PageData
	Fields []SettingField
	Error  string
}

// TeamRow is one (player, team) row on the team selection form
type TeamRow struct {
	UserID model.UserID
	Name   string
	Team   string
}

// SelectTeamsData is the data for the team selection page
type SelectTeamsData struct {
	PageData
	Rows []TeamRow
}

// Renderer renders pages into the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

var pageFiles = []string{
	"register.html",
	"create_game.html",
	"lobby.html",
	"init_game.html",
	"select_teams.html",
}

// New parses all embedded templates
func New() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		t, err := template.ParseFS(files, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pages[page] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes the named page wrapped in the layout
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
