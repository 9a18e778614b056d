package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// slowRunner blocks each pass until released, counting invocations.
type slowRunner struct {
	started atomic.Int32
	release chan struct{}
}

func (r *slowRunner) RunPass(ctx context.Context) *Summary {
	r.started.Add(1)
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	return &Summary{RunID: "test", Started: time.Now()}
}

func TestSchedulerRunOnce(t *testing.T) {
	runner := &slowRunner{release: make(chan struct{})}
	close(runner.release)

	sched, err := NewScheduler(runner, time.Minute)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	defer sched.Close()

	summary := sched.RunOnce(context.Background())
	if summary == nil || summary.RunID != "test" {
		t.Fatalf("RunOnce summary = %v", summary)
	}
	if got := runner.started.Load(); got != 1 {
		t.Errorf("passes started = %d, want 1", got)
	}
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	runner := &slowRunner{release: make(chan struct{})}

	sched, err := NewScheduler(runner, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	defer sched.Close()

	var reports atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sched.RunContinuous(ctx, func(*Summary) { reports.Add(1) })
	}()

	// Let several ticks fire while the first pass is still blocked.
	deadline := time.After(2 * time.Second)
	for runner.started.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first pass never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	time.Sleep(100 * time.Millisecond)

	if got := runner.started.Load(); got != 1 {
		t.Errorf("passes started while first still running = %d, want 1", got)
	}

	close(runner.release)
	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("RunContinuous returned %v, want context.Canceled", err)
	}
	if reports.Load() > 1 {
		// The single released pass reports at most once before cancellation.
		t.Errorf("reports = %d, want at most 1", reports.Load())
	}
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	runner := &slowRunner{release: make(chan struct{})}
	close(runner.release)

	sched, err := NewScheduler(runner, 0)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	defer sched.Close()

	if err := sched.RunContinuous(context.Background(), nil); err == nil {
		t.Fatal("expected error for non-positive interval")
	}
}
