package qa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ops-desk/mission-control/internal/ai"
	"github.com/ops-desk/mission-control/internal/delegate"
	"github.com/ops-desk/mission-control/internal/store"
)

const reviewBudget = 120 * time.Second

// Fallback verdict thresholds applied to the stored ATS score when review
// delegation cannot be started.
const (
	approveThreshold = 80
	changesThreshold = 60
)

// SubmitRequest asks for a quality review of a generated CV.
type SubmitRequest struct {
	CVID            string   `json:"cvId"`
	JobTitle        string   `json:"jobTitle"`
	Company         string   `json:"company"`
	ATSScore        int      `json:"atsScore"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	PDFURL          string   `json:"pdfUrl"`
}

// SubmitResult reports how the submission was handled. RunID is set only
// when a delegated review was started.
type SubmitResult struct {
	CVID    string `json:"cvId"`
	Status  string `json:"status"`
	Verdict string `json:"qaVerdict,omitempty"`
	Score   int    `json:"qaScore,omitempty"`
	Notes   string `json:"qaNotes,omitempty"`
	RunID   string `json:"runId,omitempty"`
}

// UpdateRequest overwrites a review outcome. It serves both manual
// overrides and the delegated reviewer's callback.
type UpdateRequest struct {
	CVID            string   `json:"cvId"`
	Status          string   `json:"status"`
	Verdict         string   `json:"qaVerdict"`
	Score           int      `json:"qaScore"`
	Notes           string   `json:"qaNotes"`
	Issues          []string `json:"qaIssues"`
	Recommendations []string `json:"qaRecommendations"`
}

// Service runs the QA review state machine: pending → spawning →
// {approved | rejected | changes_requested}, with a deterministic score
// fallback when the reviewer cannot be reached.
type Service struct {
	reviews  *store.QARepo
	runner   *delegate.Runner
	reviewer ai.Reviewer
	logger   *zap.Logger
}

func NewService(reviews *store.QARepo, runner *delegate.Runner, reviewer ai.Reviewer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reviews:  reviews,
		runner:   runner,
		reviewer: reviewer,
		logger:   logger,
	}
}

// Submit records a pending review for req.CVID and tries to start a
// delegated review. If dispatch fails synchronously it settles the verdict
// immediately from the ATS score instead; a dispatched review that later
// times out stays in spawning until its callback or abandonment.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	if req.CVID == "" || req.JobTitle == "" || req.Company == "" {
		return nil, errors.New("cvId, jobTitle and company are required")
	}

	review := &store.QAReview{
		CVID:            req.CVID,
		JobTitle:        req.JobTitle,
		Company:         req.Company,
		ATSScore:        req.ATSScore,
		MatchedKeywords: store.StringList(req.MatchedKeywords),
		MissingKeywords: store.StringList(req.MissingKeywords),
		PDFURL:          req.PDFURL,
	}
	if err := s.reviews.UpsertPending(ctx, review); err != nil {
		return nil, fmt.Errorf("recording review: %w", err)
	}

	runID, err := s.dispatchReview(req)
	if err != nil {
		s.logger.Warn("review delegation unavailable, settling from score",
			zap.String("cv_id", req.CVID),
			zap.Error(err),
		)
		return s.settleFromScore(ctx, req)
	}

	// The promotion only applies while the row is still pending, so a
	// callback that already landed a terminal verdict is never overwritten.
	if err := s.reviews.MarkSpawning(ctx, req.CVID); err != nil {
		return nil, fmt.Errorf("marking review spawning: %w", err)
	}

	return &SubmitResult{
		CVID:   req.CVID,
		Status: store.QAStatusSpawning,
		RunID:  runID,
	}, nil
}

func (s *Service) dispatchReview(req *SubmitRequest) (string, error) {
	if s.reviewer == nil || s.runner == nil {
		return "", errors.New("no reviewer configured")
	}

	cvID := req.CVID
	reviewReq := &ai.ReviewRequest{
		CVID:            req.CVID,
		JobTitle:        req.JobTitle,
		Company:         req.Company,
		ATSScore:        req.ATSScore,
		MatchedKeywords: req.MatchedKeywords,
		MissingKeywords: req.MissingKeywords,
		PDFURL:          req.PDFURL,
	}

	return s.runner.Dispatch("qa-review", reviewBudget, func(ctx context.Context) error {
		review, err := s.reviewer.Review(ctx, reviewReq)
		if err != nil {
			return err
		}
		return s.Update(ctx, &UpdateRequest{
			CVID:            cvID,
			Status:          review.Verdict,
			Verdict:         review.Verdict,
			Score:           review.Score,
			Notes:           review.Notes,
			Issues:          review.Issues,
			Recommendations: review.Recommendations,
		})
	})
}

func (s *Service) settleFromScore(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	verdict := verdictForScore(req.ATSScore)
	notes := fmt.Sprintf("Automated verdict from ATS score %d (reviewer unavailable).", req.ATSScore)

	err := s.reviews.UpdateVerdict(ctx, req.CVID, store.Verdict{
		Status:    verdict,
		QAVerdict: verdict,
		QAScore:   req.ATSScore,
		QANotes:   notes,
	})
	if err != nil {
		return nil, fmt.Errorf("recording fallback verdict: %w", err)
	}

	return &SubmitResult{
		CVID:    req.CVID,
		Status:  verdict,
		Verdict: verdict,
		Score:   req.ATSScore,
		Notes:   notes,
	}, nil
}

func verdictForScore(score int) string {
	switch {
	case score >= approveThreshold:
		return store.QAVerdictApproved
	case score >= changesThreshold:
		return store.QAVerdictChangesRequired
	default:
		return store.QAVerdictRejected
	}
}

// Update overwrites the stored outcome for req.CVID. No state checks: the
// last writer wins, whether that is the delegated callback or a manual
// override.
func (s *Service) Update(ctx context.Context, req *UpdateRequest) error {
	if req.CVID == "" {
		return errors.New("cvId is required")
	}

	status := req.Status
	if status == "" {
		status = req.Verdict
	}

	err := s.reviews.UpdateVerdict(ctx, req.CVID, store.Verdict{
		Status:          status,
		QAVerdict:       req.Verdict,
		QAScore:         req.Score,
		QANotes:         req.Notes,
		Issues:          req.Issues,
		Recommendations: req.Recommendations,
	})
	if err != nil {
		return err
	}

	s.logger.Info("review updated",
		zap.String("cv_id", req.CVID),
		zap.String("status", status),
		zap.String("verdict", req.Verdict),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, cvID string) (*store.QAReview, error) {
	return s.reviews.GetByCVID(ctx, cvID)
}

func (s *Service) List(ctx context.Context, status string) ([]store.QAReview, error) {
	return s.reviews.List(ctx, status)
}
