package service

// Session identifies the player making a request. It is built from a
// validated session token and passed explicitly into every operation that
// acts on behalf of a player.
type Session struct {
	PlayerID   string
	PlayerName string
	RoomID     string
	RoomCode   string
}
