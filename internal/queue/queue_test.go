package queue

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "queue.json"), zap.NewNop())
}

func TestSubmitPrependsTasks(t *testing.T) {
	q := newTestQueue(t)

	firstID, length, err := q.Submit("Senior PM role at Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if length != 1 {
		t.Fatalf("expected length 1, got %d", length)
	}

	secondID, length, err := q.Submit("Delivery lead at Globex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if length != 2 {
		t.Fatalf("expected length 2, got %d", length)
	}

	tasks, err := q.List()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != secondID || tasks[1].ID != firstID {
		t.Error("newest task is not at the front")
	}
	if tasks[0].Status != StatusPending {
		t.Errorf("expected pending status, got %q", tasks[0].Status)
	}
}

func TestSubmitRequiresDescription(t *testing.T) {
	q := newTestQueue(t)

	if _, _, err := q.Submit(""); err == nil {
		t.Fatal("expected an error for an empty job description")
	}
}

func TestCompleteFlipsStatus(t *testing.T) {
	q := newTestQueue(t)

	id, _, err := q.Submit("PM role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := q.Complete(id, "<html>cv</html>"); err != nil {
		t.Fatalf("completing: %v", err)
	}

	tasks, err := q.List()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if tasks[0].Status != StatusCompleted {
		t.Errorf("expected completed, got %q", tasks[0].Status)
	}
	if tasks[0].CVHTML != "<html>cv</html>" {
		t.Errorf("cv html not attached: %q", tasks[0].CVHTML)
	}
}

func TestCompleteUnknownIDIsNoOp(t *testing.T) {
	q := newTestQueue(t)

	id, _, err := q.Submit("PM role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := q.Complete("no-such-id", "x"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	tasks, err := q.List()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if tasks[0].ID != id || tasks[0].Status != StatusPending {
		t.Errorf("unknown completion touched the queue: %+v", tasks[0])
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	q := newTestQueue(t)

	id, _, err := q.Submit("PM role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := q.Complete(id, "first"); err != nil {
		t.Fatalf("completing: %v", err)
	}
	if err := q.Complete(id, "second"); err != nil {
		t.Fatalf("repeat completion: %v", err)
	}

	tasks, err := q.List()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if tasks[0].Status != StatusCompleted {
		t.Errorf("expected completed, got %q", tasks[0].Status)
	}
}

func TestListEmptyQueue(t *testing.T) {
	q := newTestQueue(t)

	tasks, err := q.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected an empty queue, got %d tasks", len(tasks))
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")

	q := New(path, zap.NewNop())
	id, _, err := q.Submit("PM role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened := New(path, zap.NewNop())
	tasks, err := reopened.List()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != id {
		t.Fatalf("queue did not persist: %+v", tasks)
	}
}
