package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/fmarinoa/el-impostor-game/internal/auth"
	"github.com/fmarinoa/el-impostor-game/internal/events"
	"github.com/fmarinoa/el-impostor-game/internal/metrics"
	"github.com/fmarinoa/el-impostor-game/internal/server"
	"github.com/fmarinoa/el-impostor-game/internal/service"
	"github.com/fmarinoa/el-impostor-game/internal/storage/sqlite"
	"github.com/fmarinoa/el-impostor-game/pkg/logging"
)

type config struct {
	bind          string
	port          int
	dbPath        string
	jwtSecret     string
	tokenDuration time.Duration
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.jwtSecret == "" {
		return errors.New("a session signing secret is required (--jwt-secret / IMPOSTOR_JWT_SECRET)")
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("IMPOSTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "impostor-server",
		Short:         "Game server for El Impostor, a find-the-impostor party game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: IMPOSTOR_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: IMPOSTOR_PORT)")
	fs.StringVar(&cfg.dbPath, "db-path", "./data/impostor.db", "path to the SQLite database (env: IMPOSTOR_DB_PATH)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "secret for signing session tokens (env: IMPOSTOR_JWT_SECRET)")
	fs.DurationVar(&cfg.tokenDuration, "token-duration", 24*time.Hour, "session token lifetime (env: IMPOSTOR_TOKEN_DURATION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(cfg *config) error {
	store, err := sqlite.New(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.dbPath)

	hub := events.NewHub()
	m := metrics.New()
	tokens := auth.NewJWTManager(cfg.jwtSecret, cfg.tokenDuration)
	rooms := service.NewRoomService(store, hub, tokens, m)

	handler := server.New(rooms, hub, tokens, m).Handler()

	// h2c allows HTTP/2 without TLS for deployments behind a proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	slog.Info("Game server starting", "address", addr)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func main() {
	// .env is optional; real deployments configure via environment.
	_ = godotenv.Load()
	logging.Setup()

	cfg := &config{}
	if err := newCmd(cfg).Execute(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
