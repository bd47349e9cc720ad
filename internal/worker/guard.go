package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuongbtq/jobboard/internal/alerts"
	core "github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/worker/domain"
)

// ExclusiveRunner lets at most one pass of each kind run in this process.
// The timer and the trigger consumer share one instance.
type ExclusiveRunner struct {
	runner Runner

	mu      sync.Mutex
	running map[core.PassKind]bool
}

// NewExclusiveRunner wraps runner with a per-kind in-process guard
func NewExclusiveRunner(runner Runner) *ExclusiveRunner {
	return &ExclusiveRunner{
		runner:  runner,
		running: make(map[core.PassKind]bool),
	}
}

// Run executes the pass, or returns ErrPassInProgress if one of the same kind is active
func (e *ExclusiveRunner) Run(ctx context.Context, kind core.PassKind) (*alerts.Report, error) {
	e.mu.Lock()
	if e.running[kind] {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrPassInProgress, kind)
	}
	e.running[kind] = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.running, kind)
		e.mu.Unlock()
	}()

	return e.runner.Run(ctx, kind)
}
