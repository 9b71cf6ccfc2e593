package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ops-desk/mission-control/internal/delegate"
	"github.com/ops-desk/mission-control/internal/jobposting"
	"github.com/ops-desk/mission-control/internal/profile"
	"github.com/ops-desk/mission-control/internal/qa"
	"github.com/ops-desk/mission-control/internal/queue"
	"github.com/ops-desk/mission-control/internal/store"
	"github.com/ops-desk/mission-control/internal/tailoring"
)

const serverTestProfile = `# Jane Doe

## Skills
Project management, PMO, stakeholder management, agile
`

// newTestServer wires the real components with no AI delegates configured,
// so generation and review always take their deterministic paths.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.md")
	if err := os.WriteFile(profilePath, []byte(serverTestProfile), 0o644); err != nil {
		t.Fatalf("writing profile: %v", err)
	}

	st, err := store.Open(filepath.Join(dir, "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	q := queue.New(filepath.Join(dir, "queue.json"), zap.NewNop())
	runner := delegate.NewRunner(zap.NewNop())
	profiles := profile.NewLoader(profilePath, zap.NewNop())

	orch := tailoring.NewOrchestrator(
		jobposting.NewLoader(zap.NewNop()),
		profiles,
		nil,
		runner,
		st.History(),
		q,
		zap.NewNop(),
	)

	return New(Deps{
		Orchestrator: orch,
		Renderer:     tailoring.NewRenderer(filepath.Join(dir, "public"), zap.NewNop()),
		QA:           qa.NewService(st.QA(), runner, nil, zap.NewNop()),
		Queue:        q,
		History:      st.History(),
		Tasks:        st.Tasks(),
		Runner:       runner,
		PublicDir:    filepath.Join(dir, "public"),
		Logger:       zap.NewNop(),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var decoded map[string]any
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodGet, "/healthcheck", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodPost, "/api/cv/generate", map[string]string{
		"description": "5+ years project management, PMO, stakeholder management",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	analysis, ok := body["analysis"].(map[string]any)
	if !ok {
		t.Fatalf("missing analysis block: %v", body)
	}
	if analysis["atsScore"].(float64) <= 0 {
		t.Errorf("expected a positive score: %v", analysis)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodPost, "/api/cv/generate", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] == nil {
		t.Error("expected an error envelope")
	}
}

func TestGenerateFullFallback(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodPost, "/api/cv/generate-full", map[string]string{
		"jobDescription": "Project management and PMO leadership role",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["status"] != "fallback" {
		t.Errorf("expected fallback status: %v", body)
	}
	if body["html"] == "" {
		t.Error("expected fallback html")
	}
}

func TestGenerateFullValidation(t *testing.T) {
	s := newTestServer(t)

	w, _ := doJSON(t, s, http.MethodPost, "/api/cv/generate-full", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRenderEndpoint(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodPost, "/api/cv/pdf", map[string]any{
		"job":     map[string]string{"title": "PM", "company": "Acme"},
		"content": "<h1>Jane</h1>",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["downloadUrl"] == nil || body["filename"] == nil {
		t.Errorf("incomplete render response: %v", body)
	}

	w, _ = doJSON(t, s, http.MethodPost, "/api/cv/pdf", map[string]any{
		"job": map[string]string{"title": "PM"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without company, got %d", w.Code)
	}
}

func TestQAEndpoints(t *testing.T) {
	s := newTestServer(t)

	// No reviewer configured: submission settles immediately from the score.
	w, body := doJSON(t, s, http.MethodPost, "/api/cv/qa", map[string]any{
		"cvId":            "cv-1",
		"jobTitle":        "PM",
		"company":         "Acme",
		"atsScore":        85,
		"matchedKeywords": []string{"pmo"},
		"missingKeywords": []string{"sap"},
		"pdfUrl":          "/cv/cv-1.pdf",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["status"] != "approved" {
		t.Errorf("expected approved fallback: %v", body)
	}

	w, body = doJSON(t, s, http.MethodGet, "/api/cv/qa?cvId=cv-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["cvId"] != "cv-1" {
		t.Errorf("unexpected review: %v", body)
	}
	matched, ok := body["matchedKeywords"].([]any)
	if !ok || len(matched) != 1 || matched[0] != "pmo" {
		t.Errorf("matched keywords not returned: %v", body["matchedKeywords"])
	}
	if body["pdfUrl"] != "/cv/cv-1.pdf" {
		t.Errorf("pdf url not returned: %v", body["pdfUrl"])
	}

	w, _ = doJSON(t, s, http.MethodGet, "/api/cv/qa?cvId=missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown cvId, got %d", w.Code)
	}

	w, body = doJSON(t, s, http.MethodPut, "/api/cv/qa", map[string]any{
		"cvId":      "cv-1",
		"qaVerdict": "rejected",
		"qaScore":   30,
		"qaNotes":   "manual override",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["status"] != "rejected" {
		t.Errorf("override not reflected: %v", body)
	}

	w, _ = doJSON(t, s, http.MethodPost, "/api/cv/qa", map[string]any{"cvId": "cv-2"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without jobTitle/company, got %d", w.Code)
	}
}

func TestQueueEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodPost, "/api/cv/queue", map[string]string{
		"jobDescription": "PM role",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	id := body["id"].(string)
	if body["queueLength"].(float64) != 1 {
		t.Errorf("unexpected queue length: %v", body)
	}

	w, _ = doJSON(t, s, http.MethodPatch, "/api/cv/queue", map[string]string{
		"id":     id,
		"cvHtml": "<h1>done</h1>",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// Unknown id completes as a no-op.
	w, _ = doJSON(t, s, http.MethodPatch, "/api/cv/queue", map[string]string{
		"id": "unknown",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown id, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cv/queue", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var tasks []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decoding queue: %v", err)
	}
	if len(tasks) != 1 || tasks[0]["status"] != "completed" {
		t.Fatalf("unexpected queue state: %v", tasks)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodPost, "/api/cv", map[string]any{
		"jobTitle":        "PM",
		"company":         "Acme",
		"atsScore":        77,
		"matchedKeywords": []string{"project management"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := body["id"].(float64)

	w, body = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/cv?id=%.0f", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	matched, ok := body["matchedKeywords"].([]any)
	if !ok || len(matched) != 1 || matched[0] != "project management" {
		t.Errorf("keyword list did not round-trip: %v", body["matchedKeywords"])
	}

	w, _ = doJSON(t, s, http.MethodPatch, fmt.Sprintf("/api/cv?id=%.0f", id), map[string]string{
		"notes": "sent on Monday",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, s, http.MethodPatch, "/api/cv", map[string]string{"notes": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", w.Code)
	}

	// A patch with no recognized fields still reports unknown ids.
	w, _ = doJSON(t, s, http.MethodPatch, "/api/cv?id=9999", map[string]string{"unrecognized": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", w.Code)
	}

	w, _ = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/cv?id=%.0f", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w, _ = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/cv?id=%.0f", id), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}

	w, _ = doJSON(t, s, http.MethodPost, "/api/cv", map[string]string{"jobTitle": "PM"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without company, got %d", w.Code)
	}
}

func TestRunStatusEndpoint(t *testing.T) {
	s := newTestServer(t)

	w, _ := doJSON(t, s, http.MethodGet, "/api/runs/unknown", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTaskEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := doJSON(t, s, http.MethodPost, "/api/tasks", map[string]any{
		"title":    "Renew certification",
		"priority": "high",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := body["id"].(float64)

	w, _ = doJSON(t, s, http.MethodPatch, fmt.Sprintf("/api/tasks?id=%.0f", id), map[string]string{
		"status": "done",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w, _ = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/tasks?id=%.0f", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w, _ = doJSON(t, s, http.MethodPost, "/api/tasks", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without title, got %d", w.Code)
	}
}
