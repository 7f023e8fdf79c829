package service

import "errors"

// Validation errors surfaced to players as non-fatal notices. None of them
// leave any state mutated.
var (
	ErrNameRequired    = errors.New("player name is required")
	ErrCodeRequired    = errors.New("room code is required")
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNotHost         = errors.New("only the host can do that")
	ErrWrongPhase      = errors.New("operation not allowed in the room's current state")
	ErrPhrasesRequired = errors.New("at least one phrase is required")
	ErrPlayerCount     = errors.New("player count outside the configured bounds")
	ErrPlayerBounds    = errors.New("invalid player bounds")
	ErrEliminated      = errors.New("eliminated players cannot vote")
	ErrInvalidTarget   = errors.New("vote target is not an active player in this room")
	ErrSelfVote        = errors.New("players cannot vote for themselves")
)
