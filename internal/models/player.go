package models

// Player represents a participant in a room. The display name is unique
// within the room and doubles as the identity players recognize each other by.
type Player struct {
	// ID is the unique identifier for the player (UUID format).
	ID string

	// RoomID references the owning room.
	RoomID string

	// Name is the display name, unique within the room.
	Name string

	// IsHost is true for exactly one player per room, set at creation.
	IsHost bool

	// IsEliminated is set when a tally votes the player out. Eliminations
	// persist for the rest of the game.
	IsEliminated bool

	// IsImpostor marks membership in the room's impostor set for the
	// current phrase.
	IsImpostor bool

	// JoinedAt is the Unix timestamp when the player joined.
	JoinedAt int64
}

// ActivePlayers filters players down to those still in the game.
func ActivePlayers(players []Player) []Player {
	active := make([]Player, 0, len(players))
	for _, p := range players {
		if !p.IsEliminated {
			active = append(active, p)
		}
	}
	return active
}
