package cleanup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fmarinoa/el-impostor-game/internal/models"
	"github.com/fmarinoa/el-impostor-game/internal/storage"
	"github.com/fmarinoa/el-impostor-game/internal/storage/sqlite"
)

func TestRun(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now()
	stale := now.Add(-48 * time.Hour).Unix()

	oldRoom := &models.Room{Code: "OLDAAA", HostName: "Old", Status: models.StatusFinished, CreatedAt: stale}
	if err := store.CreateRoom(ctx, oldRoom); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	oldPlayer := &models.Player{RoomID: oldRoom.ID, Name: "Old", IsHost: true, JoinedAt: stale}
	if err := store.CreatePlayer(ctx, oldPlayer); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	oldVote := &models.Vote{RoomID: oldRoom.ID, RoundNumber: 1, VoterID: oldPlayer.ID, VotedForID: oldPlayer.ID, CreatedAt: stale}
	if err := store.CreateVote(ctx, oldVote); err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	oldSession := &models.Session{PlayerID: oldPlayer.ID, RoomID: oldRoom.ID, CreatedAt: stale}
	if err := store.CreateSession(ctx, oldSession); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	freshRoom := &models.Room{Code: "NEWAAA", HostName: "New", Status: models.StatusLobby}
	if err := store.CreateRoom(ctx, freshRoom); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	freshPlayer := &models.Player{RoomID: freshRoom.ID, Name: "New", IsHost: true}
	if err := store.CreatePlayer(ctx, freshPlayer); err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}

	report := Run(ctx, store, now.Add(-24*time.Hour))

	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if report.VotesDeleted != 1 {
		t.Errorf("VotesDeleted = %d, want 1", report.VotesDeleted)
	}
	if report.PlayersDeleted != 1 {
		t.Errorf("PlayersDeleted = %d, want 1", report.PlayersDeleted)
	}
	if report.RoomsDeleted != 1 {
		t.Errorf("RoomsDeleted = %d, want 1", report.RoomsDeleted)
	}
	if report.SessionsDeleted != 1 {
		t.Errorf("SessionsDeleted = %d, want 1", report.SessionsDeleted)
	}

	if _, err := store.GetRoomByCode(ctx, "OLDAAA"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("stale room still present: %v", err)
	}
	if _, err := store.GetRoomByCode(ctx, "NEWAAA"); err != nil {
		t.Errorf("fresh room lost: %v", err)
	}
	if _, err := store.GetPlayer(ctx, freshPlayer.ID); err != nil {
		t.Errorf("fresh player lost: %v", err)
	}
}

// failingCleaner errors on vote deletion only.
type failingCleaner struct {
	storage.Cleaner
}

func (f *failingCleaner) DeleteVotesBefore(context.Context, time.Time) (int64, error) {
	return 0, errors.New("boom")
}

func TestRunIsolatesCollectionFailures(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	stale := time.Now().Add(-48 * time.Hour).Unix()

	room := &models.Room{Code: "OLDBBB", HostName: "Old", Status: models.StatusFinished, CreatedAt: stale}
	if err := store.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	report := Run(ctx, &failingCleaner{Cleaner: store}, time.Now().Add(-24*time.Hour))

	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly the vote failure", report.Errors)
	}
	if report.RoomsDeleted != 1 {
		t.Errorf("RoomsDeleted = %d, want 1 despite vote failure", report.RoomsDeleted)
	}
}
