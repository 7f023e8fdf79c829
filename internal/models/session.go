package models

// Session is the persisted identity record behind a signed session token.
// Tokens are stateless; the row exists so the cleanup job can enumerate and
// expire stale identities independently of game data.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// PlayerID references the player this session authenticates.
	PlayerID string

	// RoomID references the room the player belongs to.
	RoomID string

	// CreatedAt is the Unix timestamp when the session was issued.
	CreatedAt int64
}
