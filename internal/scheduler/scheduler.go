// Package scheduler runs the periodic ledger jobs: snapshot autosave and the
// low-stock report.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/config"
	"github.com/erazemk/eventstock/internal/ledger"
	"github.com/erazemk/eventstock/internal/snapshot"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 2 * time.Minute

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	cfg    config.ScheduleConfig
	ledger *ledger.Ledger
	store  snapshot.Store
	logger *zap.Logger
}

// NewScheduler creates a scheduler. Cron specs use the standard five-field
// format.
func NewScheduler(cfg config.ScheduleConfig, l *ledger.Ledger, store snapshot.Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		cfg:    cfg,
		ledger: l,
		store:  store,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop. An empty spec disables
// its job.
func (s *Scheduler) Start() error {
	if s.cfg.AutosaveCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.AutosaveCron, s.Autosave); err != nil {
			return fmt.Errorf("scheduling autosave %q: %w", s.cfg.AutosaveCron, err)
		}
	}
	if s.cfg.LowStockCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.LowStockCron, func() { s.LowStockReport() }); err != nil {
			return fmt.Errorf("scheduling low stock report %q: %w", s.cfg.LowStockCron, err)
		}
	}

	s.logger.Info("starting scheduler",
		zap.String("autosave", s.cfg.AutosaveCron),
		zap.String("low_stock", s.cfg.LowStockCron))
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Autosave writes the ledger snapshot to the configured store.
func (s *Scheduler) Autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.ledger.SaveSnapshot(ctx, s.store); err != nil {
		s.logger.Error("autosave failed", zap.Error(err))
		return
	}
	items, events := s.ledger.Stats()
	s.logger.Info("autosave complete", zap.Int("items", items), zap.Int("events", events))
}

// LowStockReport logs a warning for every item below the configured
// threshold and returns how many there were.
func (s *Scheduler) LowStockReport() int {
	threshold := s.cfg.LowStockThreshold
	if threshold <= 0 {
		threshold = ledger.DefaultLowStockThreshold
	}

	low := s.ledger.LowStock(threshold)
	for _, item := range low {
		s.logger.Warn("low stock",
			zap.String("item_id", item.ID),
			zap.String("name", item.Name),
			zap.Int("quantity", item.Quantity),
			zap.String("unit", item.Unit),
			zap.Int("threshold", threshold))
	}
	if len(low) == 0 {
		s.logger.Info("no items below low stock threshold", zap.Int("threshold", threshold))
	}
	return len(low)
}
