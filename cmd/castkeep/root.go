package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/castkeep/castkeep/internal/config"
	"github.com/castkeep/castkeep/internal/events"
	"github.com/castkeep/castkeep/internal/library"
	"github.com/castkeep/castkeep/internal/medialist"
	"github.com/castkeep/castkeep/internal/service"
)

var version = "dev"

var (
	configPath string
	dbPath     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "castkeep",
	Short: "Local media library for casting",
	Long: `castkeep - local media library for casting

Keeps a persistent library of cast-able media: records with their
playable tracks and genres, stored in a single SQLite file shared by
every process on this machine.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Media database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("castkeep {{.Version}}\n")
}

// env is the wired-up application state behind every command.
type env struct {
	cfg   *config.Config
	store *library.Store
	bus   *events.Bus
	svc   *service.Library
	list  *medialist.List
	log   *slog.Logger
}

// openEnv loads config, opens the shared database, and wires the
// service stack. Callers must closeEnv when done.
func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	path := cfg.Database.Path
	if dbPath != "" {
		path = dbPath
	}

	log := newLogger(cfg.Log.Level)

	store, err := library.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	bus := events.NewBus(events.NewEventLog(store.DB()), log)
	svc := service.NewLibrary(store, bus, log)

	return &env{
		cfg:   cfg,
		store: store,
		bus:   bus,
		svc:   svc,
		list:  medialist.New(svc, log),
		log:   log,
	}, nil
}

// closeEnv flushes the event bus and checkpoints the database so
// other processes see a clean file.
func (e *env) closeEnv() {
	_ = e.bus.Close()
	if err := e.store.Close(); err != nil {
		e.log.Error("close library", "error", err)
	}
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			// No config anywhere is fine; defaults cover local use.
			return config.Default(), nil
		}
		path = discovered
	}

	cfg, err := config.Load(path)
	if err != nil {
		var cerr *config.ConfigError
		if errors.As(err, &cerr) {
			return nil, fmt.Errorf("config %s:\n%s", path, cerr.Error())
		}
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelWarn
	if verbose {
		lvl = slog.LevelDebug
	} else {
		switch level {
		case "debug":
			lvl = slog.LevelDebug
		case "info":
			lvl = slog.LevelInfo
		case "error":
			lvl = slog.LevelError
		}
	}

	// Commands print results on stdout; logs go to stderr.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
