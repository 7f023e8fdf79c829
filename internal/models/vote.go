package models

// Vote is one ballot entry. Votes are append-only; the store enforces at most
// one vote per (room, round, voter).
type Vote struct {
	// ID is the unique identifier for the vote (UUID format).
	ID string

	// RoomID references the owning room.
	RoomID string

	// RoundNumber is the voting round this ballot belongs to.
	RoundNumber int

	// VoterID is the player who cast the vote.
	VoterID string

	// VotedForID is the suspected impostor.
	VotedForID string

	// CreatedAt is the Unix timestamp when the vote was cast.
	CreatedAt int64
}
