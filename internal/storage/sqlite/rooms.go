package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fmarinoa/el-impostor-game/internal/models"
	"github.com/fmarinoa/el-impostor-game/internal/storage"
)

// CreateRoom persists a new room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}
	if room.Status == "" {
		room.Status = models.StatusLobby
	}
	room.Code = strings.ToUpper(room.Code)

	phrases, err := json.Marshal(room.Phrases)
	if err != nil {
		return fmt.Errorf("failed to encode phrases: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, code, host_name, status, phrases, current_phrase_index, current_round, min_players, max_players, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.Code, room.HostName, room.Status, string(phrases),
		room.CurrentPhraseIndex, room.CurrentRound, room.MinPlayers, room.MaxPlayers, room.CreatedAt,
	)
	if isUniqueViolation(err, "rooms") {
		return storage.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

// GetRoomByCode retrieves a room by join code, matched case-insensitively.
func (s *SQLiteStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	room := &models.Room{}
	var phrases string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, host_name, status, phrases, current_phrase_index, current_round, min_players, max_players, created_at
		 FROM rooms WHERE code = ?`,
		strings.ToUpper(code),
	).Scan(&room.ID, &room.Code, &room.HostName, &room.Status, &phrases,
		&room.CurrentPhraseIndex, &room.CurrentRound, &room.MinPlayers, &room.MaxPlayers, &room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if err := json.Unmarshal([]byte(phrases), &room.Phrases); err != nil {
		return nil, fmt.Errorf("failed to decode phrases: %w", err)
	}
	return room, nil
}

// UpdateRoom conditionally writes the room's mutable fields. The update only
// applies while the stored status equals expectedStatus, which makes phase
// transitions single-writer: of two racing hosts, exactly one sees the row in
// the expected state.
func (s *SQLiteStore) UpdateRoom(ctx context.Context, room *models.Room, expectedStatus models.RoomStatus) error {
	phrases, err := json.Marshal(room.Phrases)
	if err != nil {
		return fmt.Errorf("failed to encode phrases: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE rooms
		 SET status = ?, phrases = ?, current_phrase_index = ?, current_round = ?, min_players = ?, max_players = ?
		 WHERE id = ? AND status = ?`,
		room.Status, string(phrases), room.CurrentPhraseIndex, room.CurrentRound,
		room.MinPlayers, room.MaxPlayers, room.ID, expectedStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrConflict
	}
	return nil
}

// DeleteRoom removes a room; dependents cascade.
func (s *SQLiteStore) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
