// Package scheduler runs Sync periodically.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/usercache/internal/common"
	"github.com/dmitrijs2005/usercache/internal/logging"
	"github.com/dmitrijs2005/usercache/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Syncer is the part of services.SyncService the scheduler drives.
type Syncer interface {
	Sync(ctx context.Context) error
	InProgress() bool
}

type Scheduler struct {
	interval time.Duration
	syncer   Syncer
	logger   logging.Logger
	metrics  *metrics.Metrics
	cron     *cron.Cron
}

// New returns a scheduler firing every interval. A zero interval disables it.
func New(interval time.Duration, syncer Syncer, logger logging.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		interval: interval,
		syncer:   syncer,
		logger:   logger,
		metrics:  m,
	}
}

// Start schedules the job and returns immediately. Ticks use ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info(ctx, "scheduler is disabled")
		return nil
	}

	s.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{ctx: ctx, l: s.logger})))
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.logger.Info(ctx, "starting scheduler", "interval", s.interval.String())
	s.cron.Start()
	return nil
}

// Stop prevents new ticks and waits for a running one to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info(context.Background(), "stopped scheduler")
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.syncer.InProgress() {
		s.logger.Info(ctx, "sync already running, skipping scheduled run")
		s.metrics.ObserveSync(metrics.ResultSkipped, 0)
		return
	}

	if err := s.syncer.Sync(ctx); err != nil {
		s.logger.Error(ctx, "scheduled sync failed", "error", err, "kind", common.KindName(err))
	}
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	ctx context.Context
	l   logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(c.ctx, msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(c.ctx, msg, append(keysAndValues, "error", err)...)
}
