package model

import "time"

// GameID uniquely identifies a game
type GameID string

// Game represents a party game lobby. The player roster is kept as a
// storage-level index from game to users rather than embedded here.
type Game struct {
	ID        GameID
	Name      string // globally unique, case-sensitive
	CreatedAt time.Time
}

// Setting keys configured by the host before a game starts
const (
	SettingNumCards  = "num_cards"
	SettingNumRounds = "num_rounds"
	SettingRoundTime = "round_time"
)

// SettingBounds describes the valid range and default for a setting key
type SettingBounds struct {
	Min     int
	Max     int
	Default int
}

// SettingRanges maps each known setting key to its bounds
var SettingRanges = map[string]SettingBounds{
	SettingNumCards:  {Min: 1, Max: 20, Default: 3},
	SettingNumRounds: {Min: 1, Max: 10, Default: 3},
	SettingRoundTime: {Min: 10, Max: 120, Default: 30},
}

// GetHost returns the host among the given roster, or nil if none
func GetHost(roster []*User) *User {
	for _, u := range roster {
		if u.Role == RoleHost {
			return u
		}
	}
	return nil
}
