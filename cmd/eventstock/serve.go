package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/api"
	"github.com/erazemk/eventstock/internal/config"
	"github.com/erazemk/eventstock/internal/ledger"
	"github.com/erazemk/eventstock/internal/logging"
	"github.com/erazemk/eventstock/internal/mongostore"
	"github.com/erazemk/eventstock/internal/scheduler"
	"github.com/erazemk/eventstock/internal/snapshot"
	"github.com/erazemk/eventstock/internal/store"
)

// runServe loads the ledger, serves the API and runs the scheduled jobs
// until SIGINT or SIGTERM, then writes a final snapshot.
func runServe(cfg *config.Config) error {
	logger, closeLog, err := logging.New(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := ensureDatabase(os.Stdout, cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("database ready", zap.String("path", cfg.Storage.DBPath))

	ctx := context.Background()

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}
	if pruned, err := store.PruneRevokedTokens(ctx, database, time.Now()); err != nil {
		logger.Warn("pruning revoked tokens failed", zap.Error(err))
	} else if pruned > 0 {
		logger.Info("pruned expired token revocations", zap.Int64("count", pruned))
	}

	snapshots, closeSnapshots, err := openSnapshotStore(ctx, cfg, &store.SnapshotStore{DB: database})
	if err != nil {
		return err
	}
	defer closeSnapshots()

	l := ledger.New()
	loaded, err := l.LoadSnapshot(ctx, snapshots)
	if err != nil {
		return err
	}
	items, events := l.Stats()
	logger.Info("ledger ready",
		zap.String("backend", cfg.Storage.SnapshotBackend),
		zap.Bool("restored", loaded),
		zap.Int("items", items),
		zap.Int("events", events))

	router := api.NewRouter(api.Deps{
		DB:                database,
		Ledger:            l,
		Snapshots:         snapshots,
		JWTSecret:         jwtSecret,
		LowStockThreshold: cfg.Schedule.LowStockThreshold,
		Logger:            logging.Named(logger, "api"),
	})

	sched := scheduler.NewScheduler(cfg.Schedule, l, snapshots, logging.Named(logger, "scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", cfg.Server.Addr))
	serveErr := server.ListenAndServe()
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	sched.Stop()

	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := l.SaveSnapshot(saveCtx, snapshots); err != nil {
		logger.Error("final snapshot failed", zap.Error(err))
		if serveErr == nil {
			serveErr = err
		}
	} else {
		logger.Info("final snapshot saved")
	}

	logger.Info("server stopped, closing database")
	return serveErr
}

// openSnapshotStore returns the store selected by the configured backend and
// a function that releases it.
func openSnapshotStore(ctx context.Context, cfg *config.Config, sqlite snapshot.Store) (snapshot.Store, func(), error) {
	switch cfg.Storage.SnapshotBackend {
	case config.BackendFile:
		return snapshot.NewFileStore(cfg.Storage.SnapshotFile), func() {}, nil
	case config.BackendSQLite:
		return sqlite, func() {}, nil
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		s, err := mongostore.New(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.Storage.SnapshotBackend)
	}
}
