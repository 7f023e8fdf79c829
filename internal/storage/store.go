// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/fmarinoa/el-impostor-game/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a conditional update finds the room in
	// a different state than expected. The losing writer must re-fetch and
	// give up; exactly one writer wins any phase transition.
	ErrConflict = errors.New("room state changed concurrently")

	// ErrDuplicateVote is returned when a player votes twice in the same
	// round.
	ErrDuplicateVote = errors.New("player already voted this round")

	// ErrDuplicateName is returned when a joining player's name is already
	// taken in the room.
	ErrDuplicateName = errors.New("player name already taken in this room")

	// ErrDuplicateCode is returned when a generated join code collides
	// with an existing room. Callers regenerate and retry.
	ErrDuplicateCode = errors.New("room code already in use")
)

// Store defines the interface for game state persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateRoom persists a new room. The ID and CreatedAt fields are
	// populated by the store if unset.
	CreateRoom(ctx context.Context, room *models.Room) error

	// GetRoomByCode retrieves a room by its join code, matched
	// case-insensitively. Returns ErrNotFound if no room has the code.
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)

	// UpdateRoom writes the room's mutable fields (status, phrases,
	// phrase index, round, player bounds) conditionally: the write only
	// applies if the stored status still equals expectedStatus. Returns
	// ErrConflict otherwise.
	UpdateRoom(ctx context.Context, room *models.Room, expectedStatus models.RoomStatus) error

	// DeleteRoom removes a room; players, votes and sessions cascade.
	DeleteRoom(ctx context.Context, roomID string) error

	// CreatePlayer persists a new player. Returns ErrDuplicateName if the
	// display name is taken within the room.
	CreatePlayer(ctx context.Context, player *models.Player) error

	// ListPlayers returns a room's players ordered by join time.
	ListPlayers(ctx context.Context, roomID string) ([]models.Player, error)

	// GetPlayer retrieves a player by ID.
	GetPlayer(ctx context.Context, playerID string) (*models.Player, error)

	// EliminatePlayer marks a player as eliminated.
	EliminatePlayer(ctx context.Context, playerID string) error

	// SetImpostors atomically clears the impostor flag for every player in
	// the room and sets it for the given IDs.
	SetImpostors(ctx context.Context, roomID string, impostorIDs []string) error

	// CreateVote persists a ballot entry. Returns ErrDuplicateVote if the
	// voter already voted in this round.
	CreateVote(ctx context.Context, vote *models.Vote) error

	// ListVotes returns a room's votes for one round, ordered by cast time.
	ListVotes(ctx context.Context, roomID string, round int) ([]models.Vote, error)

	// CreateSession persists an identity record.
	CreateSession(ctx context.Context, session *models.Session) error

	// Close releases any resources held by the store.
	Close() error
}

// Cleaner is the retention surface consumed by the cleanup job. Deletes apply
// to rows with a timestamp strictly before the cutoff.
type Cleaner interface {
	DeleteVotesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeletePlayersBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteRoomsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// ListSessionsBefore enumerates stale identity records so the job can
	// delete them one by one, mirroring how hosted auth providers expose
	// identity deletion.
	ListSessionsBefore(ctx context.Context, cutoff time.Time) ([]models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
