package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fmarinoa/el-impostor-game/internal/models"
	"github.com/fmarinoa/el-impostor-game/internal/storage"
)

// CreatePlayer persists a new player.
func (s *SQLiteStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	if player.ID == "" {
		player.ID = uuid.New().String()
	}
	if player.JoinedAt == 0 {
		player.JoinedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, room_id, name, is_host, is_eliminated, is_impostor, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		player.ID, player.RoomID, player.Name, player.IsHost, player.IsEliminated, player.IsImpostor, player.JoinedAt,
	)
	if isUniqueViolation(err, "players") {
		return storage.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// ListPlayers returns a room's players ordered by join time.
func (s *SQLiteStore) ListPlayers(ctx context.Context, roomID string) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, name, is_host, is_eliminated, is_impostor, joined_at
		 FROM players WHERE room_id = ? ORDER BY joined_at, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.RoomID, &p.Name, &p.IsHost, &p.IsEliminated, &p.IsImpostor, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

// GetPlayer retrieves a player by ID.
func (s *SQLiteStore) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	p := &models.Player{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, room_id, name, is_host, is_eliminated, is_impostor, joined_at
		 FROM players WHERE id = ?`,
		playerID,
	).Scan(&p.ID, &p.RoomID, &p.Name, &p.IsHost, &p.IsEliminated, &p.IsImpostor, &p.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// EliminatePlayer marks a player as eliminated.
func (s *SQLiteStore) EliminatePlayer(ctx context.Context, playerID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE players SET is_eliminated = 1 WHERE id = ?", playerID)
	if err != nil {
		return fmt.Errorf("failed to eliminate player: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetImpostors clears every impostor flag in the room and sets the given IDs,
// in one transaction so observers never see a room with no impostors mid-swap.
func (s *SQLiteStore) SetImpostors(ctx context.Context, roomID string, impostorIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE players SET is_impostor = 0 WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("failed to reset impostors: %w", err)
	}

	for _, id := range impostorIDs {
		if _, err := tx.ExecContext(ctx,
			"UPDATE players SET is_impostor = 1 WHERE id = ? AND room_id = ?", id, roomID); err != nil {
			return fmt.Errorf("failed to set impostor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
