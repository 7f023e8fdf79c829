package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fmarinoa/el-impostor-game/internal/models"
	"github.com/fmarinoa/el-impostor-game/internal/storage"
)

// CreateVote persists a ballot entry. The (room, round, voter) unique index
// turns a double vote into ErrDuplicateVote regardless of how many requests
// race.
func (s *SQLiteStore) CreateVote(ctx context.Context, vote *models.Vote) error {
	if vote.ID == "" {
		vote.ID = uuid.New().String()
	}
	if vote.CreatedAt == 0 {
		vote.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO votes (id, room_id, round_number, voter_id, voted_for_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		vote.ID, vote.RoomID, vote.RoundNumber, vote.VoterID, vote.VotedForID, vote.CreatedAt,
	)
	if isUniqueViolation(err, "votes") {
		return storage.ErrDuplicateVote
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// ListVotes returns a room's votes for one round, ordered by cast time so the
// tally's first-seen tie-break stays deterministic.
func (s *SQLiteStore) ListVotes(ctx context.Context, roomID string, round int) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, round_number, voter_id, voted_for_id, created_at
		 FROM votes WHERE room_id = ? AND round_number = ? ORDER BY created_at, id`,
		roomID, round,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.RoomID, &v.RoundNumber, &v.VoterID, &v.VotedForID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return votes, nil
}
