package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	core "github.com/cuongbtq/jobboard/internal/domain"
)

// TimerConfig holds the cron schedule for each pass kind
type TimerConfig struct {
	Logger     *slog.Logger
	Runner     Runner
	Schedules  map[string]string
	RunOnStart bool
	JobTimeout time.Duration
	Location   *time.Location
}

// Timer fires passes on their cron schedules. A kind whose previous run is
// still going is skipped rather than queued.
type Timer struct {
	logger     *slog.Logger
	runner     Runner
	cron       *cron.Cron
	kinds      []core.PassKind
	runOnStart bool
	jobTimeout time.Duration

	mu  sync.Mutex
	ctx context.Context
	wg  sync.WaitGroup
}

// NewTimer validates every schedule and registers it with a cron instance
func NewTimer(cfg *TimerConfig) (*Timer, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("timer runner is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	jobTimeout := cfg.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}

	cronLog := cronLogger{logger: logger}
	t := &Timer{
		logger: logger,
		runner: cfg.Runner,
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		runOnStart: cfg.RunOnStart,
		jobTimeout: jobTimeout,
		ctx:        context.Background(),
	}

	for name, spec := range cfg.Schedules {
		kind, err := core.ParsePassKind(name)
		if err != nil {
			return nil, fmt.Errorf("failed to register schedule: %w", err)
		}

		if _, err := t.cron.AddFunc(spec, func() { t.fire(kind, "cron") }); err != nil {
			return nil, fmt.Errorf("failed to register schedule for %s: %w", kind, err)
		}

		t.kinds = append(t.kinds, kind)
		logger.Info("Pass scheduled",
			slog.String("kind", string(kind)),
			slog.String("spec", spec),
		)
	}

	return t, nil
}

// Start begins firing scheduled passes. With RunOnStart every scheduled kind
// runs once immediately, in pass order.
func (t *Timer) Start(ctx context.Context) {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	if t.runOnStart {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			for _, kind := range core.PassKinds {
				if t.scheduled(kind) {
					t.fire(kind, "startup")
				}
			}
		}()
	}

	t.cron.Start()
}

// Stop halts the schedule and waits for running passes, bounded by ctx
func (t *Timer) Stop(ctx context.Context) error {
	cronDone := t.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timer stop timed out: %w", ctx.Err())
	}
}

func (t *Timer) scheduled(kind core.PassKind) bool {
	for _, k := range t.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// fire runs one pass. Errors are logged; the next tick is the retry. Like
// triggered passes, a fired pass is detached from shutdown cancellation and
// bounded only by the job timeout.
func (t *Timer) fire(kind core.PassKind, source string) {
	t.mu.Lock()
	base := t.ctx
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(base), t.jobTimeout)
	defer cancel()

	passID := uuid.NewString()
	t.logger.Info("Timer firing pass",
		slog.String("pass_id", passID),
		slog.String("kind", string(kind)),
		slog.String("source", source),
	)

	report, err := t.runner.Run(ctx, kind)
	if err != nil {
		t.logger.Error("Scheduled pass failed",
			slog.String("pass_id", passID),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		return
	}

	logReport(t.logger, passID, report)
}

// cronLogger adapts slog to the cron.Logger interface
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
