package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFunc is a reconciliation task body. The scheduler passes an
// explicit "now" so task logic never reads the wall clock itself.
type TaskFunc func(ctx context.Context, now time.Time)

type task struct {
	name  string
	every time.Duration
	// atHour >= 0 means a daily task fired at that clock hour instead
	// of on a fixed interval.
	atHour int
	run    TaskFunc
}

// Scheduler drives the reconciliation tasks. Each task runs on its own
// goroutine and is invoked synchronously from its timer loop, so one task
// instance never overlaps itself, while different tasks run concurrently.
type Scheduler struct {
	logger *zap.Logger

	mu     sync.Mutex
	tasks  []task
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Register adds a fixed-interval task.
func (s *Scheduler) Register(name string, every time.Duration, run TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task{name: name, every: every, atHour: -1, run: run})
}

// RegisterDaily adds a task fired once a day at the given local hour.
func (s *Scheduler) RegisterDaily(name string, hour int, run TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task{name: name, atHour: hour, run: run})
}

// Start launches all registered tasks. Interval tasks also run once
// immediately so a restart does not delay reconciliation by a full
// period.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, t := range s.tasks {
		s.wg.Add(1)
		if t.atHour >= 0 {
			go s.runDaily(ctx, t)
		} else {
			go s.runInterval(ctx, t)
		}
	}
	s.logger.Info("scheduler started", zap.Int("tasks", len(s.tasks)))
}

// Stop cancels all task loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runInterval(ctx context.Context, t task) {
	defer s.wg.Done()

	s.invoke(ctx, t, time.Now())

	ticker := time.NewTicker(t.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.invoke(ctx, t, now)
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context, t task) {
	defer s.wg.Done()

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), t.atHour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			s.invoke(ctx, t, fired)
		}
	}
}

// invoke runs one task iteration, isolating panics so a bad batch cannot
// kill the task loop.
func (s *Scheduler) invoke(ctx context.Context, t task, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", t.name),
				zap.Any("panic", r))
		}
	}()

	start := time.Now()
	t.run(ctx, now)
	s.logger.Debug("scheduler task finished",
		zap.String("task", t.name),
		zap.Duration("took", time.Since(start)))
}
