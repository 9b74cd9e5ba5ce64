package apperror

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrStoryNotFound = errors.New("story not found")

	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrGameCompleted      = errors.New("game is already completed")
	ErrEmptyRoster        = errors.New("no players in the room")
	ErrPlayerNameRequired = errors.New("player name is required")

	ErrVersionConflict = errors.New("session was modified concurrently")
	ErrRoomCodeTaken   = errors.New("room code is already taken")
)
