package tailoring

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ops-desk/mission-control/internal/ai"
	"github.com/ops-desk/mission-control/internal/delegate"
	"github.com/ops-desk/mission-control/internal/jobposting"
	"github.com/ops-desk/mission-control/internal/profile"
	"github.com/ops-desk/mission-control/internal/queue"
	"github.com/ops-desk/mission-control/internal/store"
)

const testProfile = `# Jane Doe

## Skills
Project management, PMO, stakeholder management, agile, scrum

## Experience

## Head of PMO - Acme Health 2021
Led a team using agile delivery and stakeholder management.
`

type stubDrafter struct {
	draft  *ai.Draft
	err    error
	called chan *ai.DraftRequest
}

func (s *stubDrafter) Draft(ctx context.Context, req *ai.DraftRequest) (*ai.Draft, error) {
	if s.called != nil {
		s.called <- req
	}
	return s.draft, s.err
}

type fixture struct {
	orch  *Orchestrator
	store *store.Store
	queue *queue.Queue
}

func newFixture(t *testing.T, drafter ai.Drafter) *fixture {
	t.Helper()

	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.md")
	if err := os.WriteFile(profilePath, []byte(testProfile), 0o644); err != nil {
		t.Fatalf("writing profile: %v", err)
	}

	st, err := store.Open(filepath.Join(dir, "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	q := queue.New(filepath.Join(dir, "queue.json"), zap.NewNop())

	orch := NewOrchestrator(
		jobposting.NewLoader(zap.NewNop()),
		profile.NewLoader(profilePath, zap.NewNop()),
		drafter,
		delegate.NewRunner(zap.NewNop()),
		st.History(),
		q,
		zap.NewNop(),
	)
	return &fixture{orch: orch, store: st, queue: q}
}

func TestAnalyzeScoresDescription(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.orch.Analyze(context.Background(), "",
		"Senior Project Manager role. 5+ years project management, PMO, stakeholder management.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Analysis.ATSScore <= 0 {
		t.Errorf("expected a positive score, got %d", result.Analysis.ATSScore)
	}

	matched := strings.Join(result.Analysis.MatchedKeywords, " ")
	if !strings.Contains(matched, "project management") {
		t.Errorf("expected project management in matched set: %v", result.Analysis.MatchedKeywords)
	}
	if !strings.Contains(matched, "pmo") {
		t.Errorf("expected pmo in matched set: %v", result.Analysis.MatchedKeywords)
	}

	if len(result.Suggestions.KeyMatches) == 0 {
		t.Error("expected key match suggestions")
	}
}

func TestAnalyzeRequiresInput(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.orch.Analyze(context.Background(), "", ""); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestAnalyzeSoftSkillGaps(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.orch.Analyze(context.Background(), "",
		"Looking for negotiation and presentation skills plus project management.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gaps := strings.Join(result.Suggestions.SoftSkillGaps, " ")
	if !strings.Contains(gaps, "negotiation") || !strings.Contains(gaps, "presentation") {
		t.Errorf("expected soft skill gaps, got %v", result.Suggestions.SoftSkillGaps)
	}
}

func TestGenerateDelegatesDraft(t *testing.T) {
	drafter := &stubDrafter{
		draft: &ai.Draft{
			JobTitle:        "Senior PM",
			Company:         "Globex",
			ATSScore:        87,
			MatchedKeywords: []string{"project management"},
			MissingKeywords: []string{"jira"},
			HTML:            "<h1>Jane Doe</h1>",
		},
		called: make(chan *ai.DraftRequest, 1),
	}
	f := newFixture(t, drafter)

	result, err := f.orch.Generate(context.Background(), &GenerateRequest{
		JobDescription: "Senior PM role at Globex",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusGenerating {
		t.Fatalf("expected generating, got %q", result.Status)
	}
	if result.RunID == "" {
		t.Fatal("expected a run id")
	}
	if result.HTML != "" {
		t.Error("generating response must not carry draft fields")
	}

	select {
	case req := <-drafter.called:
		if !strings.Contains(req.MasterProfile, "Jane Doe") {
			t.Error("master profile not passed to drafter")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drafter was never called")
	}

	// The callback records the draft in history.
	deadline := time.After(2 * time.Second)
	for {
		entries, err := f.store.History().List(context.Background(), 10)
		if err != nil {
			t.Fatalf("listing history: %v", err)
		}
		if len(entries) == 1 {
			if entries[0].JobTitle != "Senior PM" || entries[0].ATSScore != 87 {
				t.Fatalf("unexpected history entry: %+v", entries[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("draft was never recorded in history")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGenerateCompletesQueueTask(t *testing.T) {
	drafter := &stubDrafter{
		draft: &ai.Draft{
			JobTitle: "PM",
			Company:  "Acme",
			HTML:     "<h1>cv</h1>",
		},
	}
	f := newFixture(t, drafter)

	queueID, _, err := f.queue.Submit("PM role at Acme")
	if err != nil {
		t.Fatalf("queueing: %v", err)
	}

	_, err = f.orch.Generate(context.Background(), &GenerateRequest{
		JobDescription: "PM role at Acme",
		QueueID:        queueID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		tasks, err := f.queue.List()
		if err != nil {
			t.Fatalf("listing queue: %v", err)
		}
		if tasks[0].Status == queue.StatusCompleted {
			if tasks[0].CVHTML != "<h1>cv</h1>" {
				t.Fatalf("queue task missing cv html: %+v", tasks[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("queue task never completed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGenerateFallbackWithoutDrafter(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.orch.Generate(context.Background(), &GenerateRequest{
		JobDescription: "Senior Project Manager. Project management, PMO, stakeholder management required.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusFallback {
		t.Fatalf("expected fallback, got %q", result.Status)
	}
	if result.RunID != "" {
		t.Error("fallback must not report a run id")
	}
	if result.ATSScore <= 0 {
		t.Errorf("expected a positive fallback score, got %d", result.ATSScore)
	}
	if !strings.Contains(result.HTML, "Relevant Skills") {
		t.Errorf("fallback html missing skills section: %q", result.HTML)
	}
	if !strings.Contains(result.HTML, "Head of PMO") {
		t.Errorf("fallback html missing experience: %q", result.HTML)
	}

	entries, err := f.store.History().List(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	if entries[0].Notes == "" {
		t.Error("fallback entry should note how it was generated")
	}
}

func TestGenerateRequiresDescription(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.orch.Generate(context.Background(), &GenerateRequest{}); err == nil {
		t.Fatal("expected a validation error")
	}
}
