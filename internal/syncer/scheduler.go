package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/panjf2000/ants/v2"
)

// PassRunner is the slice of the syncer the scheduler needs.
type PassRunner interface {
	RunPass(ctx context.Context) *Summary
}

// Scheduler drives sync passes either once or on a fixed interval. A
// single-slot non-blocking pool guards against overlapping passes: a tick
// that fires while a pass is still running is skipped, not queued. Skipped
// work is recovered by the lookback window on the next tick.
type Scheduler struct {
	syncer   PassRunner
	interval time.Duration
	pool     *ants.Pool
}

// NewScheduler creates a scheduler around a syncer.
func NewScheduler(syncer PassRunner, interval time.Duration) (*Scheduler, error) {
	pool, err := ants.NewPool(1, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create scheduler pool: %w", err)
	}
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		pool:     pool,
	}, nil
}

// Close releases the scheduler's worker pool.
func (s *Scheduler) Close() {
	s.pool.Release()
}

// RunOnce executes a single pass and returns its summary.
func (s *Scheduler) RunOnce(ctx context.Context) *Summary {
	return s.syncer.RunPass(ctx)
}

// RunContinuous runs a pass immediately, then on every interval tick until
// the context is cancelled. Each summary is handed to report.
func (s *Scheduler) RunContinuous(ctx context.Context, report func(*Summary)) error {
	if s.interval <= 0 {
		return fmt.Errorf("continuous mode requires a positive interval")
	}

	s.dispatch(ctx, report)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.dispatch(ctx, report)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, report func(*Summary)) {
	err := s.pool.Submit(func() {
		summary := s.syncer.RunPass(ctx)
		if report != nil {
			report(summary)
		}
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			log.Printf("Previous sync pass still running, skipping this tick")
			return
		}
		log.Printf("Warning: failed to dispatch sync pass: %v", err)
	}
}
