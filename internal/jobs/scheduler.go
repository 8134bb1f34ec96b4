package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is the part of the booking service the scheduler drives.
type Sweeper interface {
	ReleaseUnpaid(ctx context.Context) (int, error)
	CompleteFinished(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
	log     *zap.Logger
}

// NewScheduler registers the booking sweeps on spec, a standard five field
// cron expression.
func NewScheduler(spec string, sweeper Sweeper, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		timeout: time.Minute,
		log:     log.With(zap.String("component", "jobs")),
	}

	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid jobs schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info("Scheduler started", zap.Int("entries", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out", zap.Error(ctx.Err()))
	}
}

// RunOnce runs both sweeps. A failure in one does not skip the other.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	released, err := s.sweeper.ReleaseUnpaid(ctx)
	if err != nil {
		s.log.Error("Release unpaid bookings failed", zap.Error(err))
	} else if released > 0 {
		s.log.Info("Released unpaid bookings", zap.Int("count", released))
	}

	completed, err := s.sweeper.CompleteFinished(ctx)
	if err != nil {
		s.log.Error("Complete finished bookings failed", zap.Error(err))
	} else if completed > 0 {
		s.log.Info("Completed finished bookings", zap.Int("count", completed))
	}
}
