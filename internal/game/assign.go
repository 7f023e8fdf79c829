package game

import (
	"math/rand"

	"github.com/fmarinoa/el-impostor-game/internal/models"
)

// roomCodeAlphabet is the character set for join codes. 36^6 codes make
// collisions unlikely; the store's unique index catches the rest.
const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// NewRoomCode generates a random 6-character join code.
func NewRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

// ShufflePhrases returns a uniformly random permutation of phrases. The input
// slice is not modified.
func ShufflePhrases(phrases []string) []string {
	shuffled := make([]string, len(phrases))
	copy(shuffled, phrases)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// PickImpostors samples n distinct player IDs uniformly at random. If n
// exceeds the player count, every player is returned.
func PickImpostors(players []models.Player, n int) []string {
	if n > len(players) {
		n = len(players)
	}
	ids := make([]string, 0, n)
	for _, i := range rand.Perm(len(players))[:n] {
		ids = append(ids, players[i].ID)
	}
	return ids
}
