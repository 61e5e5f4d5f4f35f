package redis

import (
	"fmt"

	"github.com/partyup/partyup/internal/model"
)

// Key prefix for all lobby-related data
const keyPrefix = "partyup"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gameNameIndexKey returns the Redis key for the game name -> game_id index
func gameNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:game_name:%s", keyPrefix, name)
}

// rosterKey returns the Redis key for the SET of user IDs in a game
func rosterKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:roster:%s", keyPrefix, gameID)
}

// rosterNamesKey returns the Redis key for the SET of display names in a game
func rosterNamesKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:roster_names:%s", keyPrefix, gameID)
}

// settingsKey returns the Redis key for a game's settings HASH
func settingsKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:settings:%s", keyPrefix, gameID)
}

// notificationIndexKey returns the Redis key for the ZSET of a user's
// notification names scored by timestamp
func notificationIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:notifications:%s", keyPrefix, userID)
}

// notificationDataKey returns the Redis key for the HASH of a user's
// notification payloads keyed by name
func notificationDataKey(userID model.UserID) string {
	return fmt.Sprintf("%s:notification_data:%s", keyPrefix, userID)
}
