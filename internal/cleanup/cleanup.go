// Package cleanup implements the retention job: rooms, players, votes and
// session identities older than the retention window are deleted on every
// run. The job is triggered by an external scheduler; it holds no state
// between runs.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/fmarinoa/el-impostor-game/internal/storage"
)

// Report summarizes one run. A failure in one collection does not stop
// processing of the others; each error is recorded here instead.
type Report struct {
	Cutoff time.Time

	VotesDeleted    int64
	PlayersDeleted  int64
	RoomsDeleted    int64
	SessionsDeleted int64

	Errors []error
}

// Run deletes all data older than the cutoff. Votes go first and rooms last
// so that, if a run dies halfway, no vote ever outlives its room.
func Run(ctx context.Context, store storage.Cleaner, cutoff time.Time) *Report {
	report := &Report{Cutoff: cutoff}

	if n, err := store.DeleteVotesBefore(ctx, cutoff); err != nil {
		slog.Error("Failed to delete old votes", "error", err)
		report.Errors = append(report.Errors, err)
	} else {
		report.VotesDeleted = n
		slog.Info("Deleted old votes", "count", n)
	}

	// Identities are enumerated and deleted one by one, before their players:
	// player deletion cascades onto sessions, which would hide them from the
	// sweep. A single bad row must not abort the rest.
	if sessions, err := store.ListSessionsBefore(ctx, cutoff); err != nil {
		slog.Error("Failed to list old sessions", "error", err)
		report.Errors = append(report.Errors, err)
	} else {
		slog.Info("Found old sessions to delete", "count", len(sessions))
		for _, sess := range sessions {
			if err := store.DeleteSession(ctx, sess.ID); err != nil {
				slog.Error("Failed to delete session", "session_id", sess.ID, "error", err)
				report.Errors = append(report.Errors, err)
				continue
			}
			report.SessionsDeleted++
		}
	}

	if n, err := store.DeletePlayersBefore(ctx, cutoff); err != nil {
		slog.Error("Failed to delete old players", "error", err)
		report.Errors = append(report.Errors, err)
	} else {
		report.PlayersDeleted = n
		slog.Info("Deleted old players", "count", n)
	}

	if n, err := store.DeleteRoomsBefore(ctx, cutoff); err != nil {
		slog.Error("Failed to delete old rooms", "error", err)
		report.Errors = append(report.Errors, err)
	} else {
		report.RoomsDeleted = n
		slog.Info("Deleted old rooms", "count", n)
	}

	return report
}
