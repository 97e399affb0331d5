package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ureserve/internal/api"
	"ureserve/internal/config"
	"ureserve/internal/db"
	"ureserve/internal/session"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var cfgPath string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ureserve",
		Short: "Client for the university facility-reservation service",
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "",
		"path to config.yaml (defaults to $URESERVE_CONFIG_PATH, then configs/config.yaml)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newLoginCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newReserveCmd())
	root.AddCommand(newCancelCmd())
	root.AddCommand(newReportCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the pieces every command needs.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	db     *db.DB
	client *api.Client
	rdb    *redis.Client
}

func newApp() (*app, error) {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	path := cfgPath
	if path == "" {
		path = os.Getenv("URESERVE_CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("set api.base_url in config")
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.APIKey,
		api.WithTimeout(cfg.APITimeout()),
		api.WithRateLimit(cfg.RequestsPerSec(), cfg.RequestBurst()),
	)

	a := &app{cfg: cfg, logger: logger, db: database, client: client}
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		client.UseRedisCache(a.rdb, cfg.CacheTTL())
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

// currentSession loads the persisted login and fails with a hint when
// there is none.
func (a *app) currentSession(ctx context.Context) (session.Session, error) {
	sess, err := a.db.LoadSession(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if sess.IsZero() {
		return session.Session{}, fmt.Errorf("no session found, run `ureserve login` first")
	}
	return sess, nil
}
