package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/ops-desk/mission-control/internal/ai"
	"github.com/ops-desk/mission-control/internal/logger"

	"go.uber.org/zap"
)

//go:embed review_prompt.md
var reviewPromptTemplate string

// Verdicts the reviewer is allowed to return.
var allowedVerdicts = map[string]struct{}{
	"approved":          {},
	"rejected":          {},
	"changes_requested": {},
}

// Reviewer asks Gemini for a structured quality verdict on a generated CV.
type Reviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewReviewer(generator contentGenerator, maxLogLength int, log *zap.Logger) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Reviewer{
		generator: generator,
		logger:    logger.WithDelegateFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

type reviewPayload struct {
	Verdict         string   `json:"verdict"`
	Score           int      `json:"score"`
	Notes           string   `json:"notes"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// Review implements ai.Reviewer.
func (r *Reviewer) Review(ctx context.Context, req *ai.ReviewRequest) (*ai.Review, error) {
	if req == nil {
		return nil, errors.New("review request is required")
	}
	if strings.TrimSpace(req.CVID) == "" {
		return nil, errors.New("cv id is required")
	}

	prompt, err := buildReviewPrompt(req)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini review request",
		zap.String("cv_id", req.CVID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini review response",
		zap.String("cv_id", req.CVID),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	var payload reviewPayload
	if err := decodeResponse(raw, &payload); err != nil {
		return nil, err
	}

	verdict := strings.ToLower(strings.TrimSpace(payload.Verdict))
	if _, ok := allowedVerdicts[verdict]; !ok {
		return nil, fmt.Errorf("delegate returned unknown verdict %q", payload.Verdict)
	}

	score := payload.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &ai.Review{
		Verdict:         verdict,
		Score:           score,
		Notes:           strings.TrimSpace(payload.Notes),
		Issues:          payload.Issues,
		Recommendations: payload.Recommendations,
		Raw:             raw,
	}, nil
}

func buildReviewPrompt(req *ai.ReviewRequest) (string, error) {
	payload, err := json.MarshalIndent(map[string]any{
		"cvId":            req.CVID,
		"jobTitle":        req.JobTitle,
		"company":         req.Company,
		"atsScore":        req.ATSScore,
		"matchedKeywords": req.MatchedKeywords,
		"missingKeywords": req.MissingKeywords,
		"pdfUrl":          req.PDFURL,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal review payload: %w", err)
	}

	template := reviewPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "CV:\n{{REVIEW_PAYLOAD}}\n\nJSON Response:"
	}

	return strings.ReplaceAll(template, "{{REVIEW_PAYLOAD}}", string(payload)), nil
}
