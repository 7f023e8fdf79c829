package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fmarinoa/el-impostor-game/internal/cleanup"
	"github.com/fmarinoa/el-impostor-game/internal/storage/sqlite"
	"github.com/fmarinoa/el-impostor-game/pkg/logging"
)

type config struct {
	dbPath    string
	retention time.Duration
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("IMPOSTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "impostor-cleanup",
		Short:         "Deletes game data older than the retention window.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.dbPath, "db-path", "./data/impostor.db", "path to the SQLite database (env: IMPOSTOR_DB_PATH)")
	fs.DurationVar(&cfg.retention, "retention", 24*time.Hour, "how long game data is kept (env: IMPOSTOR_RETENTION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	store, err := sqlite.New(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	cutoff := time.Now().Add(-cfg.retention)
	slog.Info("Cleanup started", "cutoff", cutoff.Format(time.RFC3339), "retention", cfg.retention)

	report := cleanup.Run(ctx, store, cutoff)

	slog.Info("Cleanup completed",
		"votes_deleted", report.VotesDeleted,
		"players_deleted", report.PlayersDeleted,
		"rooms_deleted", report.RoomsDeleted,
		"sessions_deleted", report.SessionsDeleted,
		"errors", len(report.Errors),
	)
	return nil
}

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg := &config{}
	if err := newCmd(cfg).Execute(); err != nil {
		slog.Error("Cleanup failed", "error", err)
		os.Exit(1)
	}
}
