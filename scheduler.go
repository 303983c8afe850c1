package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"tidepool/server/internal/telemetry"
	"tidepool/server/logging"
	logginglifecycle "tidepool/server/logging/lifecycle"
	loggingsimulation "tidepool/server/logging/simulation"
)

// ErrAlreadyRunning is returned by Start when the loop is live.
var ErrAlreadyRunning = errors.New("server: scheduler already running")

// Scheduler drives Hub.Tick at the configured interval and broadcasts the
// resulting state.
type Scheduler struct {
	hub       *Hub
	interval  time.Duration
	publisher logging.Publisher

	// AfterTick, when set, observes every report. It runs on the loop
	// goroutine.
	AfterTick func(TickReport)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	streak uint64
}

func NewScheduler(hub *Hub, pub logging.Publisher) *Scheduler {
	return &Scheduler{hub: hub, interval: hub.cfg.TickInterval, publisher: pub}
}

// Start launches the loop. It stops when ctx is cancelled or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return ErrAlreadyRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	logginglifecycle.SchedulerStarted(ctx, s.publisher, s.hub.TickCount(), logginglifecycle.SchedulerStartedPayload{IntervalMillis: s.interval.Milliseconds()}, nil)
	s.hub.logger.Printf("scheduler started, tick interval %s", s.interval)
	go s.run(loopCtx, s.done)
	return nil
}

// Stop cancels the loop and waits for it to exit. Stopping an idle
// scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if done == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is live.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer s.exit(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// exit clears the loop state however the loop ended, then releases Stop.
func (s *Scheduler) exit(done chan struct{}) {
	s.mu.Lock()
	if s.done == done {
		s.cancel()
		s.cancel = nil
		s.done = nil
	}
	s.mu.Unlock()
	tick := s.hub.TickCount()
	logginglifecycle.SchedulerStopped(context.Background(), s.publisher, tick, logginglifecycle.SchedulerStoppedPayload{Ticks: tick}, nil)
	s.hub.logger.Printf("scheduler stopped")
	close(done)
}

// Step runs one tick and broadcast synchronously.
func (s *Scheduler) Step(ctx context.Context) TickReport {
	start := time.Now()
	report := s.hub.Tick(ctx, s.hub.cfg.Now())
	s.hub.Broadcast(ctx)
	s.checkBudget(ctx, report.Tick, time.Since(start))
	if s.AfterTick != nil {
		s.AfterTick(report)
	}
	return report
}

func (s *Scheduler) checkBudget(ctx context.Context, tick uint64, duration time.Duration) {
	budget := s.interval
	if budget <= 0 || float64(duration) <= float64(budget)*tickBudgetWarnRatio {
		s.mu.Lock()
		s.streak = 0
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.streak++
	streak := s.streak
	s.mu.Unlock()

	s.hub.metrics.Add(telemetry.MetricTickOverruns, 1)
	loggingsimulation.TickBudgetOverrun(ctx, s.publisher, tick, loggingsimulation.TickBudgetOverrunPayload{
		DurationMillis: duration.Milliseconds(),
		BudgetMillis:   budget.Milliseconds(),
		Ratio:          float64(duration) / float64(budget),
		Streak:         streak,
	}, nil)
}
