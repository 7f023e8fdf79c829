package models

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	StatusLobby    RoomStatus = "lobby"
	StatusPlaying  RoomStatus = "playing"
	StatusVoting   RoomStatus = "voting"
	StatusFinished RoomStatus = "finished"
)

// Valid reports whether s is one of the known lifecycle states.
func (s RoomStatus) Valid() bool {
	switch s {
	case StatusLobby, StatusPlaying, StatusVoting, StatusFinished:
		return true
	}
	return false
}

// Room represents a game room. A room owns its players, votes and sessions;
// deleting the room cascades to all of them.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string

	// Code is the human-entered join code: 6 characters from [A-Z0-9],
	// stored uppercase and looked up case-insensitively.
	Code string

	// HostName is the display name of the player who created the room.
	HostName string

	// Status is the current lifecycle state.
	Status RoomStatus

	// Phrases is the shuffled phrase list for the game. Empty until the
	// host starts the game.
	Phrases []string

	// CurrentPhraseIndex is the zero-based index into Phrases. It is a
	// valid index whenever Status != finished and the game has started.
	CurrentPhraseIndex int

	// CurrentRound numbers voting rounds starting at 1. It advances both
	// when a phrase is completed and when an elimination sends the room
	// back to playing, so votes never bleed between ballots.
	CurrentRound int

	// MinPlayers and MaxPlayers bound the player count required to start.
	MinPlayers int
	MaxPlayers int

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64
}

// CurrentPhrase returns the active phrase, or "" if the game has not started
// or the room is finished.
func (r *Room) CurrentPhrase() string {
	if r.CurrentPhraseIndex < 0 || r.CurrentPhraseIndex >= len(r.Phrases) {
		return ""
	}
	return r.Phrases[r.CurrentPhraseIndex]
}
