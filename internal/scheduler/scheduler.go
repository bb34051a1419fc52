// Package scheduler runs the recurring jobs, currently just the
// nightly catalog optimization.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/config"
	"github.com/Sohamiota/Target-JIT-org/internal/service"
)

type Scheduler struct {
	cron    *cron.Cron
	baseCtx context.Context
}

func New(baseCtx context.Context) *Scheduler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Scheduler{
		cron:    cron.New(),
		baseCtx: baseCtx,
	}
}

// Add registers a job under a standard five-field cron spec.
func (s *Scheduler) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		job(s.baseCtx)
	})
}

func (s *Scheduler) Start() {
	log.Info().Msg("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

// Configure wires the configured jobs and returns the scheduler ready
// to start. A disabled scheduler config yields nil.
func Configure(baseCtx context.Context, cfg config.SchedulerConfig, optimize *service.OptimizeService) (*Scheduler, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	s := New(baseCtx)
	if _, err := s.Add(cfg.OptimizeCron, func(ctx context.Context) {
		runScheduledOptimization(ctx, optimize)
	}); err != nil {
		return nil, err
	}

	log.Info().Str("cron", cfg.OptimizeCron).Msg("nightly optimization scheduled")
	return s, nil
}

func runScheduledOptimization(ctx context.Context, optimize *service.OptimizeService) {
	start := time.Now()
	run, failures, err := optimize.RunOptimization(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("scheduled optimization failed")
		return
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("optimized", run.ItemCount).
		Int("failed", len(failures)).
		Dur("duration", time.Since(start)).
		Msg("scheduled optimization completed")
}
