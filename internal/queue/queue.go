package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task is one queued generation request.
type Task struct {
	ID             string    `json:"id"`
	JobDescription string    `json:"jobDescription"`
	Status         string    `json:"status"`
	CVHTML         string    `json:"cvHtml,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Queue is a JSON-file-backed generation queue. New tasks go to the front;
// completion is a terminal flip. All access is serialized by a mutex, so a
// single Queue value must be shared across handlers.
type Queue struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{path: path, logger: logger}
}

// Submit adds a pending task to the front of the queue and returns its id
// and the new queue length.
func (q *Queue) Submit(jobDescription string) (string, int, error) {
	if jobDescription == "" {
		return "", 0, errors.New("jobDescription is required")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	tasks, err := q.load()
	if err != nil {
		return "", 0, err
	}

	task := Task{
		ID:             uuid.NewString(),
		JobDescription: jobDescription,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	tasks = append([]Task{task}, tasks...)

	if err := q.save(tasks); err != nil {
		return "", 0, err
	}

	q.logger.Info("task queued",
		zap.String("task_id", task.ID),
		zap.Int("queue_length", len(tasks)),
	)

	return task.ID, len(tasks), nil
}

// Complete marks the task completed and attaches the generated HTML. An
// unknown id is a no-op, so a late delegation callback cannot fail the
// caller.
func (q *Queue) Complete(id, cvHTML string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks, err := q.load()
	if err != nil {
		return err
	}

	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		tasks[i].Status = StatusCompleted
		tasks[i].CVHTML = cvHTML
		if err := q.save(tasks); err != nil {
			return err
		}
		q.logger.Info("task completed", zap.String("task_id", id))
		return nil
	}

	q.logger.Debug("completion for unknown task ignored", zap.String("task_id", id))
	return nil
}

// List returns a snapshot of the queue, newest first.
func (q *Queue) List() ([]Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

func (q *Queue) load() ([]Task, error) {
	data, err := os.ReadFile(q.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading queue file: %w", err)
	}
	if len(data) == 0 {
		return []Task{}, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decoding queue file: %w", err)
	}
	return tasks, nil
}

func (q *Queue) save(tasks []Task) error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("creating queue directory: %w", err)
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding queue: %w", err)
	}
	if err := os.WriteFile(q.path, data, 0o644); err != nil {
		return fmt.Errorf("writing queue file: %w", err)
	}
	return nil
}
