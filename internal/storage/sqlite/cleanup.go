package sqlite

import (
	"context"
	"fmt"
	"time"
)

// deleteBefore removes rows from table whose timestamp column is strictly
// before cutoff, returning the number of rows deleted.
func (s *SQLiteStore) deleteBefore(ctx context.Context, table, column string, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s < ?", table, column), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// DeleteVotesBefore removes votes cast strictly before cutoff.
func (s *SQLiteStore) DeleteVotesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteBefore(ctx, "votes", "created_at", cutoff)
}

// DeletePlayersBefore removes players who joined strictly before cutoff.
func (s *SQLiteStore) DeletePlayersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteBefore(ctx, "players", "joined_at", cutoff)
}

// DeleteRoomsBefore removes rooms created strictly before cutoff; players,
// votes and sessions cascade.
func (s *SQLiteStore) DeleteRoomsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteBefore(ctx, "rooms", "created_at", cutoff)
}
