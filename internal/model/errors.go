package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Game errors
	ErrGameNotFound        = errors.New("game not found")
	ErrGameNameTaken       = errors.New("game name already taken")
	ErrNameTakenInGame     = errors.New("username already taken in this game")
	ErrNotHost             = errors.New("user is not the host")
	ErrHostAlreadyAssigned = errors.New("game already has a different host")
	ErrNotInGame           = errors.New("user is not in a game")
)
