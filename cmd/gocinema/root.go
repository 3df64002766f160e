package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	goCinema "github.com/MrEthical07/goCinema"
	"github.com/MrEthical07/goCinema/metrics/export/prometheus"
	"github.com/MrEthical07/goCinema/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	jsonOut      bool
	printMetrics bool
)

var rootCmd = &cobra.Command{
	Use:   "gocinema",
	Short: "Browse the movie catalog and manage your session",
	Long: `gocinema signs you in against the auth provider, keeps the session on disk
(or in Redis) between runs and browses the movie catalog.

Configuration is read from gocinema.yaml in the working directory or the user
config directory, and from GOCINEMA_* environment variables, for example:

  GOCINEMA_AUTH_BASE_URL=https://xyz.supabase.co
  GOCINEMA_AUTH_API_KEY=...
  GOCINEMA_CATALOG_API_KEY=...
  GOCINEMA_STORAGE_BACKEND=redis`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gocinema.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output JSON")
	rootCmd.PersistentFlags().BoolVar(&printMetrics, "metrics", false, "print Prometheus metrics to stderr on exit")
}

// app bundles an engine with the resources it was built over.
type app struct {
	engine *goCinema.Engine
	logger *slog.Logger
	close  func()
}

// getEngine loads configuration, opens the session backend and builds an
// engine. The caller must call close.
func getEngine(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log.Level)

	storage, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	engine, err := goCinema.New().
		WithConfig(cfg.engineConfig()).
		WithStorage(storage).
		WithLogger(logger).
		WithMetricsEnabled(printMetrics).
		WithLatencyHistograms(printMetrics).
		Build()
	if err != nil {
		closeStorage()
		return nil, err
	}

	return &app{
		engine: engine,
		logger: logger,
		close: func() {
			if printMetrics {
				fmt.Fprint(os.Stderr, prometheus.NewPrometheusExporter(engine).Render())
			}
			engine.Close()
			closeStorage()
		},
	}, nil
}

func openStorage(ctx context.Context, cfg storageConfig) (session.Storage, func(), error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := session.NewRedisStorage(client, cfg.RedisPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return rs, func() { _ = client.Close() }, nil
	default:
		fs, err := session.NewFileStorage(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session dir: %w", err)
		}
		return fs, func() {}, nil
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// commandContext tags the command's context with a fresh request id so
// engine events and logs of one invocation can be correlated.
func commandContext(cmd *cobra.Command) context.Context {
	return goCinema.WithRequestID(cmd.Context(), uuid.NewString())
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}
