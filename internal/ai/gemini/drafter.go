package gemini

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/ops-desk/mission-control/internal/ai"
	"github.com/ops-desk/mission-control/internal/logger"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed draft_prompt.md
var draftPromptTemplate string

const defaultMaxLogLength = 200

// Drafter asks Gemini for a tailored CV in strict JSON form.
type Drafter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewDrafter(generator contentGenerator, maxLogLength int, log *zap.Logger) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Drafter{
		generator: generator,
		logger:    logger.WithDelegateFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

type draftPayload struct {
	JobTitle        string   `json:"jobTitle"`
	Company         string   `json:"company"`
	ATSScore        int      `json:"atsScore"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	HTML            string   `json:"html"`
}

// Draft implements ai.Drafter.
func (d *Drafter) Draft(ctx context.Context, req *ai.DraftRequest) (*ai.Draft, error) {
	if req == nil {
		return nil, errors.New("draft request is required")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, errors.New("job description is required")
	}

	prompt := buildDraftPrompt(req)

	d.logger.Debug("gemini draft request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, d.maxLogLen)),
	)

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("gemini draft response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, d.maxLogLen)),
	)

	var payload draftPayload
	if err := decodeResponse(raw, &payload); err != nil {
		return nil, err
	}

	if strings.TrimSpace(payload.HTML) == "" {
		return nil, errors.New("delegate returned a draft without html")
	}

	score := payload.ATSScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &ai.Draft{
		JobTitle:        strings.TrimSpace(payload.JobTitle),
		Company:         strings.TrimSpace(payload.Company),
		ATSScore:        score,
		MatchedKeywords: payload.MatchedKeywords,
		MissingKeywords: payload.MissingKeywords,
		HTML:            payload.HTML,
		Raw:             raw,
	}, nil
}

func buildDraftPrompt(req *ai.DraftRequest) string {
	template := draftPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{MASTER_PROFILE}}\n\nJob:\n{{JOB_DESCRIPTION}}\n\nJSON Response:"
	}

	description := req.JobDescription
	if req.JobURL != "" {
		description = description + "\n\nPosting URL: " + req.JobURL
	}

	prompt := strings.ReplaceAll(template, "{{MASTER_PROFILE}}", req.MasterProfile)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", description)
	return prompt
}
