// Command tripcast serves recorded trips over REST and replays them as
// live position streams over WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tripcast/tripcast/internal/config"
	"github.com/tripcast/tripcast/internal/database"
	"github.com/tripcast/tripcast/internal/influx"
	"github.com/tripcast/tripcast/internal/logging"
	"github.com/tripcast/tripcast/internal/monitor"
	"github.com/tripcast/tripcast/internal/replay"
	"github.com/tripcast/tripcast/internal/routing"
	"github.com/tripcast/tripcast/internal/seed"
	"github.com/tripcast/tripcast/internal/server"
	"github.com/tripcast/tripcast/internal/store"
	"github.com/tripcast/tripcast/internal/store/gormstore"
	"github.com/tripcast/tripcast/internal/store/memstore"
)

func main() {
	configDir := flag.String("config", ".", "directory containing tripcast.cfg.json")
	seedOnly := flag.Bool("seed-only", false, "seed the store and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}
	if err := config.Load(*configDir); err != nil {
		slog.Warn("Config file not loaded, using defaults", "error", err)
	}

	if err := run(*seedOnly); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(seedOnly bool) error {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	logFile, err := os.OpenFile(
		logging.LogFilePath(logsDir, "tripcast", time.Now()),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	level := config.GetString("logLevel")
	graylogAddr := ""
	if config.GetBool("graylog.enabled") {
		graylogAddr = config.GetString("graylog.address")
	}

	logManager := logging.NewSlogManager()
	logManager.Setup(logFile, level, graylogAddr)
	defer logManager.Close()
	logger := logManager.Logger()

	zlog := logging.NewZerolog(level, logFile)

	// Trip store.
	ts, dbm, err := openStore(zlog, logger)
	if err != nil {
		return err
	}
	if dbm != nil {
		defer dbm.Close()
	}
	defer ts.Close()

	// Seed an empty store from the bundled JSON files.
	seedDir := config.GetString("seed.dir")
	loader := seed.NewLoader(logger)
	bundles, err := loader.Load(seedDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("No seed directory, skipping seeding", "dir", seedDir)
		} else {
			return fmt.Errorf("loading seeds: %w", err)
		}
	} else {
		n, err := loader.Apply(context.Background(), ts, bundles)
		if err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
		if n > 0 {
			logger.Info("Seeded store", "trips", n)
		}
	}
	if seedOnly {
		logger.Info("Seed-only run complete")
		return nil
	}

	// Path densifier.
	osrmCfg := config.GetOSRMConfig()
	var densifier routing.Densifier = routing.Passthrough{}
	if osrmCfg.Enabled {
		densifier = routing.NewOSRMClient(osrmCfg, logger)
		logger.Info("Road snapping enabled", "baseUrl", osrmCfg.BaseURL)
	} else {
		logger.Info("Road snapping disabled, replaying raw waypoints")
	}

	replays, err := replay.NewManager(ts, densifier, config.GetReplayConfig(), logger)
	if err != nil {
		return fmt.Errorf("creating replay manager: %w", err)
	}
	defer replays.Shutdown()

	// Metrics.
	var influxManager *influx.Manager
	if config.GetBool("influx.enabled") {
		influxManager = influx.NewManager(zlog, filepath.Join(logsDir, "influx_backup.gz"))
		if err := influxManager.Connect(); err != nil {
			logger.Warn("InfluxDB unavailable", "error", err)
			influxManager = nil
		} else {
			defer influxManager.Close()
		}
	}

	mon := monitor.NewService(monitor.Dependencies{
		Store:   ts,
		Replays: replays,
		Influx:  influxManager,
		Logger:  logger,
		IsDatabaseValid: func() bool {
			return dbm == nil || dbm.IsValid
		},
	}, viperDuration("monitor.interval", 30*time.Second))
	mon.Start()
	defer mon.Stop()

	// HTTP.
	srv := server.New(ts, replays, config.GetReplayConfig(), logger)
	httpServer := &http.Server{
		Addr:         ":" + config.GetString("http.port"),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // WebSocket sessions are long-lived
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Graceful shutdown incomplete", "error", err)
	}
	return nil
}

// openStore builds the trip store selected by storage.type. The gorm
// backends share the database manager's Postgres-then-SQLite fallback.
func openStore(zlog zerolog.Logger, logger *slog.Logger) (store.TripStore, *database.Manager, error) {
	cfg := config.GetStorageConfig()

	if cfg.Type == "memory" {
		logger.Info("Using in-memory trip store")
		return memstore.New(), nil, nil
	}

	dbm := database.NewManager(zlog)
	dbm.SqliteFilePath = cfg.SqlitePath

	var err error
	if cfg.Type == "sqlite" {
		err = dbm.ConnectLocal()
	} else {
		err = dbm.Connect()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := dbm.Setup(); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	return gormstore.New(dbm.DB, logger), dbm, nil
}

func viperDuration(key string, fallback time.Duration) time.Duration {
	s := config.GetString(key)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
