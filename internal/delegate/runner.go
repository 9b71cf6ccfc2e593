package delegate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State describes where a delegated run currently stands.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	// StateAbandoned means the run's deadline elapsed without a completion
	// report. There is no cancellation after dispatch; abandonment is how
	// callers distinguish "still working" from "never coming back".
	StateAbandoned State = "abandoned"
)

// Status is a point-in-time view of a delegated run.
type Status struct {
	RunID      string     `json:"runId"`
	Name       string     `json:"name"`
	State      State      `json:"state"`
	StartedAt  time.Time  `json:"startedAt"`
	Deadline   time.Time  `json:"deadline"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type run struct {
	name       string
	startedAt  time.Time
	deadline   time.Time
	finishedAt *time.Time
	err        error
	done       bool
}

// ErrClosed is returned by Dispatch after the runner has been shut down.
// Callers treat it as a synchronous dispatch failure and take their fallback
// path.
var ErrClosed = errors.New("delegate runner is closed")

// Runner executes delegated work asynchronously and keeps a record of every
// run with its deadline, so callers can poll instead of waiting.
type Runner struct {
	mu     sync.Mutex
	runs   map[string]*run
	closed bool
	logger *zap.Logger

	now func() time.Time
}

func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		runs:   make(map[string]*run),
		logger: logger,
		now:    time.Now,
	}
}

// Dispatch starts fn in the background under a context bounded by budget and
// returns the run id immediately. A non-nil error means the run was never
// started.
func (r *Runner) Dispatch(name string, budget time.Duration, fn func(ctx context.Context) error) (string, error) {
	if fn == nil {
		return "", errors.New("delegated function is required")
	}
	if budget <= 0 {
		return "", errors.New("delegation budget must be positive")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrClosed
	}

	id := uuid.NewString()
	started := r.now()
	r.runs[id] = &run{
		name:      name,
		startedAt: started,
		deadline:  started.Add(budget),
	}
	r.mu.Unlock()

	r.logger.Info("delegated run dispatched",
		zap.String("run_id", id),
		zap.String("name", name),
		zap.Duration("budget", budget),
	)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), budget)
		defer cancel()

		err := fn(ctx)

		r.mu.Lock()
		entry := r.runs[id]
		finished := r.now()
		entry.finishedAt = &finished
		entry.err = err
		entry.done = true
		r.mu.Unlock()

		if err != nil {
			r.logger.Warn("delegated run failed",
				zap.String("run_id", id),
				zap.String("name", name),
				zap.Error(err),
			)
			return
		}

		r.logger.Info("delegated run completed",
			zap.String("run_id", id),
			zap.String("name", name),
		)
	}()

	return id, nil
}

// Status reports the current state of a run. The second return value is
// false when the run id is unknown.
func (r *Runner) Status(id string) (*Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.runs[id]
	if !ok {
		return nil, false
	}

	status := &Status{
		RunID:      id,
		Name:       entry.name,
		StartedAt:  entry.startedAt,
		Deadline:   entry.deadline,
		FinishedAt: entry.finishedAt,
	}

	switch {
	case entry.done && entry.err != nil:
		status.State = StateFailed
		status.Error = entry.err.Error()
	case entry.done:
		status.State = StateCompleted
	case r.now().After(entry.deadline):
		status.State = StateAbandoned
	default:
		status.State = StateRunning
	}

	return status, true
}

// Close stops accepting new dispatches. In-flight runs are not cancelled;
// their contexts expire on their own deadlines.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
