package tailoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ops-desk/mission-control/internal/ai"
	"github.com/ops-desk/mission-control/internal/ats"
	"github.com/ops-desk/mission-control/internal/delegate"
	"github.com/ops-desk/mission-control/internal/jobposting"
	"github.com/ops-desk/mission-control/internal/profile"
	"github.com/ops-desk/mission-control/internal/queue"
	"github.com/ops-desk/mission-control/internal/store"
)

const draftBudget = 180 * time.Second

const suggestionLimit = 5

// Generation outcome statuses.
const (
	StatusGenerating = "generating"
	StatusFallback   = "fallback"
)

// JobSummary is the condensed posting returned by Analyze.
type JobSummary struct {
	Title   string           `json:"title"`
	Company string           `json:"company"`
	URL     string           `json:"url,omitempty"`
	Level   jobposting.Level `json:"level"`
}

// Analysis is the scoring block of an analyze response. Keyword lists are
// bounded previews; the full sets stay internal.
type Analysis struct {
	ATSScore             int      `json:"atsScore"`
	MatchedKeywords      []string `json:"matchedKeywords"`
	MissingKeywords      []string `json:"missingKeywords"`
	TotalJobKeywords     int      `json:"totalJobKeywords"`
	TotalProfileKeywords int      `json:"totalCVKeywords"`
}

// Suggestions highlight what to lean on and what to close.
type Suggestions struct {
	KeyMatches      []string `json:"keyMatches"`
	CriticalMissing []string `json:"criticalMissing"`
	SoftSkillGaps   []string `json:"softSkillGaps"`
}

// AnalyzeResult is the full analyze response.
type AnalyzeResult struct {
	Job         JobSummary  `json:"job"`
	Analysis    Analysis    `json:"analysis"`
	Suggestions Suggestions `json:"suggestions"`
}

// GenerateRequest asks for a full tailored CV. QueueID optionally ties the
// generation to a queued task that gets completed when the draft lands.
type GenerateRequest struct {
	JobDescription string `json:"jobDescription"`
	JobURL         string `json:"jobUrl"`
	QueueID        string `json:"queueId"`
}

// GenerateResult reports either a started delegation or a finished fallback
// draft. The two shapes are mutually exclusive: RunID is set only for
// "generating", the draft fields only for "fallback".
type GenerateResult struct {
	Status          string   `json:"status"`
	RunID           string   `json:"runId,omitempty"`
	JobTitle        string   `json:"jobTitle,omitempty"`
	Company         string   `json:"company,omitempty"`
	ATSScore        int      `json:"atsScore,omitempty"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
	MissingKeywords []string `json:"missingKeywords,omitempty"`
	HTML            string   `json:"html,omitempty"`
}

// Orchestrator wires the tailoring pipeline: posting → extraction → scoring
// → drafting, with a deterministic template fallback when the drafting
// delegate cannot be dispatched.
type Orchestrator struct {
	postings *jobposting.Loader
	profiles *profile.Loader
	drafter  ai.Drafter
	runner   *delegate.Runner
	history  *store.HistoryRepo
	queue    *queue.Queue
	logger   *zap.Logger
}

func NewOrchestrator(
	postings *jobposting.Loader,
	profiles *profile.Loader,
	drafter ai.Drafter,
	runner *delegate.Runner,
	history *store.HistoryRepo,
	q *queue.Queue,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		postings: postings,
		profiles: profiles,
		drafter:  drafter,
		runner:   runner,
		history:  history,
		queue:    q,
		logger:   logger,
	}
}

// Soft skills that matter for the roles this tool targets; missing ones are
// called out separately in suggestions.
var softSkills = map[string]struct{}{
	"leadership":             {},
	"communication":          {},
	"stakeholder management": {},
	"collaboration":          {},
	"mentoring":              {},
	"coaching":               {},
	"negotiation":            {},
	"presentation":           {},
}

// Analyze scores a job posting against the master profile without
// generating anything.
func (o *Orchestrator) Analyze(ctx context.Context, url, description string) (*AnalyzeResult, error) {
	if url == "" && description == "" {
		return nil, errors.New("either url or description is required")
	}

	posting := o.postings.Load(ctx, url, description)

	jobKeywords := ats.Extract(posting.Title + "\n" + posting.RawText)
	index := o.profiles.Index()
	assessment := ats.Score(jobKeywords, index.Keywords)

	o.logger.Info("job analyzed",
		zap.String("title", posting.Title),
		zap.String("company", posting.Company),
		zap.Int("ats_score", assessment.Score),
		zap.Int("job_keywords", assessment.TotalJobKeywords),
	)

	return &AnalyzeResult{
		Job: JobSummary{
			Title:   posting.Title,
			Company: posting.Company,
			URL:     posting.URL,
			Level:   posting.Level,
		},
		Analysis: Analysis{
			ATSScore:             assessment.Score,
			MatchedKeywords:      ats.Preview(assessment.Matched, ats.PreviewLimit),
			MissingKeywords:      ats.Preview(assessment.Missing, ats.PreviewLimit),
			TotalJobKeywords:     assessment.TotalJobKeywords,
			TotalProfileKeywords: assessment.TotalProfileKeywords,
		},
		Suggestions: buildSuggestions(assessment),
	}, nil
}

func buildSuggestions(assessment *ats.Assessment) Suggestions {
	gaps := make([]string, 0, len(assessment.Missing))
	for _, keyword := range assessment.Missing {
		if _, ok := softSkills[strings.ToLower(keyword)]; ok {
			gaps = append(gaps, keyword)
		}
	}

	return Suggestions{
		KeyMatches:      ats.Preview(assessment.Matched, suggestionLimit),
		CriticalMissing: ats.Preview(assessment.Missing, suggestionLimit),
		SoftSkillGaps:   gaps,
	}
}

// Generate produces a full tailored CV. The draft is delegated with a
// bounded budget; a dispatch failure takes the deterministic template path
// instead, never both.
func (o *Orchestrator) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if req.JobDescription == "" {
		return nil, errors.New("jobDescription is required")
	}

	masterProfile, err := o.profiles.Read()
	if err != nil {
		o.logger.Warn("master profile unavailable for drafting", zap.Error(err))
	}

	runID, err := o.dispatchDraft(masterProfile, req)
	if err != nil {
		o.logger.Warn("draft delegation unavailable, using template fallback", zap.Error(err))
		return o.generateFallback(ctx, req)
	}

	return &GenerateResult{Status: StatusGenerating, RunID: runID}, nil
}

func (o *Orchestrator) dispatchDraft(masterProfile string, req *GenerateRequest) (string, error) {
	if o.drafter == nil || o.runner == nil {
		return "", errors.New("no drafter configured")
	}

	draftReq := &ai.DraftRequest{
		MasterProfile:  masterProfile,
		JobDescription: req.JobDescription,
		JobURL:         req.JobURL,
	}
	queueID := req.QueueID

	return o.runner.Dispatch("cv-draft", draftBudget, func(ctx context.Context) error {
		draft, err := o.drafter.Draft(ctx, draftReq)
		if err != nil {
			return err
		}
		return o.recordDraft(ctx, draft, draftReq.JobURL, queueID)
	})
}

// recordDraft is the completion side of a delegated generation: the history
// entry and queue completion happen here, never on the "generating" return
// path.
func (o *Orchestrator) recordDraft(ctx context.Context, draft *ai.Draft, jobURL, queueID string) error {
	entry := &store.CVHistoryEntry{
		JobTitle:        draft.JobTitle,
		Company:         draft.Company,
		JobURL:          jobURL,
		ATSScore:        draft.ATSScore,
		MatchedKeywords: store.StringList(draft.MatchedKeywords),
		MissingKeywords: store.StringList(draft.MissingKeywords),
		CVHTML:          draft.HTML,
	}
	if err := o.history.Create(ctx, entry); err != nil {
		return fmt.Errorf("recording draft: %w", err)
	}

	if queueID != "" {
		if err := o.queue.Complete(queueID, draft.HTML); err != nil {
			return fmt.Errorf("completing queue task %s: %w", queueID, err)
		}
	}

	o.logger.Info("delegated draft recorded",
		zap.String("job_title", draft.JobTitle),
		zap.String("company", draft.Company),
		zap.Int("ats_score", draft.ATSScore),
	)
	return nil
}

func (o *Orchestrator) generateFallback(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	posting := o.postings.Load(ctx, req.JobURL, req.JobDescription)

	jobKeywords := ats.Extract(posting.Title + "\n" + posting.RawText)
	index := o.profiles.Index()
	assessment := ats.Score(jobKeywords, index.Keywords)

	html := fallbackHTML(posting, assessment, index)

	entry := &store.CVHistoryEntry{
		JobTitle:        posting.Title,
		Company:         posting.Company,
		JobURL:          req.JobURL,
		ATSScore:        assessment.Score,
		MatchedKeywords: store.StringList(assessment.Matched),
		MissingKeywords: store.StringList(assessment.Missing),
		CVHTML:          html,
		Notes:           "Generated by the template fallback.",
	}
	if err := o.history.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording fallback draft: %w", err)
	}

	if req.QueueID != "" {
		if err := o.queue.Complete(req.QueueID, html); err != nil {
			return nil, fmt.Errorf("completing queue task %s: %w", req.QueueID, err)
		}
	}

	return &GenerateResult{
		Status:          StatusFallback,
		JobTitle:        posting.Title,
		Company:         posting.Company,
		ATSScore:        assessment.Score,
		MatchedKeywords: ats.Preview(assessment.Matched, ats.PreviewLimit),
		MissingKeywords: ats.Preview(assessment.Missing, ats.PreviewLimit),
		HTML:            html,
	}, nil
}

// fallbackHTML builds a minimal single-column CV body from the profile
// index and the scoring result. It is deliberately plain: the delegated
// drafter is the quality path, this one only guarantees an output exists.
func fallbackHTML(posting *jobposting.Posting, assessment *ats.Assessment, index *profile.Index) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h1>Application: %s</h1>\n", posting.Title)
	fmt.Fprintf(&b, "<p>%s &mdash; estimated ATS fit %d/100</p>\n", posting.Company, assessment.Score)

	if len(assessment.Matched) > 0 {
		b.WriteString("<h2>Relevant Skills</h2>\n<ul>\n")
		for _, keyword := range ats.Preview(assessment.Matched, ats.PreviewLimit) {
			fmt.Fprintf(&b, "<li>%s</li>\n", keyword)
		}
		b.WriteString("</ul>\n")
	}

	if len(index.Experience) > 0 {
		b.WriteString("<h2>Experience</h2>\n")
		for _, exp := range index.Experience {
			fmt.Fprintf(&b, "<h3>%s &mdash; %s (%s)</h3>\n", exp.Title, exp.Company, exp.Year)
		}
	}

	return b.String()
}
