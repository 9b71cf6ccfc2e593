package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ops-desk/mission-control/internal/logger"
	"github.com/ops-desk/mission-control/internal/qa"
	"github.com/ops-desk/mission-control/internal/store"
)

const (
	PromptBack           = "back"
	PromptApprove        = "Approve"
	PromptReject         = "Reject"
	PromptRequestChanges = "Request changes"
	PromptShowDetails    = "Show details"
	reviewableStatusHint = "pending, spawning and changes_requested reviews are shown"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review generated CVs from the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		review()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

// review is the manual override path: it walks open QA rows and writes
// verdicts through the same update contract the delegated reviewer uses.
func review() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st, err := store.Open(config.Storage.DatabaseFile, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}

	service := qa.NewService(st.QA(), nil, nil, logger)

	for {
		reviews, err := openReviews(ctx, service)
		if err != nil {
			logger.Fatal("listing reviews", zap.Error(err))
		}
		if len(reviews) == 0 {
			logger.Info("exiting", zap.String("reason", "no open reviews"),
				zap.String("hint", reviewableStatusHint))
			return
		}

		items := make([]string, 0, len(reviews)+1)
		for _, r := range reviews {
			items = append(items, fmt.Sprintf("%s %s / %s / %s (ats %d)",
				r.CVID, r.JobTitle, r.Company, r.Status, r.ATSScore))
		}

		picker := promptui.Select{
			Label: "Choose a review and press ENTER",
			Items: append(items, PromptBack),
		}
		_, selected, err := picker.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if selected == PromptBack {
			return
		}

		cvID := strings.Split(selected, " ")[0]
		if err := handleReview(ctx, service, reviews, cvID, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

var errExit = errors.New("exit requested")

// openReviews returns the rows that still need a human decision.
func openReviews(ctx context.Context, service *qa.Service) ([]store.QAReview, error) {
	all, err := service.List(ctx, "")
	if err != nil {
		return nil, err
	}

	open := make([]store.QAReview, 0, len(all))
	for _, r := range all {
		switch r.Status {
		case store.QAStatusPending, store.QAStatusSpawning, store.QAVerdictChangesRequired:
			open = append(open, r)
		}
	}
	return open, nil
}

func handleReview(ctx context.Context, service *qa.Service, reviews []store.QAReview, cvID string, logger *zap.Logger) error {
	var review *store.QAReview
	for i := range reviews {
		if reviews[i].CVID == cvID {
			review = &reviews[i]
			break
		}
	}
	if review == nil {
		return fmt.Errorf("there is no such review %s", cvID)
	}

	action := promptui.Select{
		Label: fmt.Sprintf("Verdict for %s / %s", review.JobTitle, review.Company),
		Items: []string{PromptApprove, PromptReject, PromptRequestChanges, PromptShowDetails, PromptBack},
	}
	_, selected, err := action.Run()
	if err != nil {
		return err
	}

	var verdict string
	switch selected {
	case PromptBack:
		return nil
	case PromptShowDetails:
		logger.Info("review details",
			zap.String("cv_id", review.CVID),
			zap.String("status", review.Status),
			zap.Int("ats_score", review.ATSScore),
			zap.String("notes", review.QANotes),
			zap.Strings("issues", review.QAIssues),
		)
		return nil
	case PromptApprove:
		verdict = store.QAVerdictApproved
	case PromptReject:
		verdict = store.QAVerdictRejected
	case PromptRequestChanges:
		verdict = store.QAVerdictChangesRequired
	default:
		return fmt.Errorf("invalid action: %s", selected)
	}

	score, notes, err := promptVerdictDetails(review.ATSScore)
	if err != nil {
		return err
	}

	err = service.Update(ctx, &qa.UpdateRequest{
		CVID:    cvID,
		Status:  verdict,
		Verdict: verdict,
		Score:   score,
		Notes:   notes,
	})
	if err != nil {
		return err
	}

	logger.Info("verdict recorded",
		zap.String("cv_id", cvID),
		zap.String("verdict", verdict),
		zap.Int("score", score),
	)
	return nil
}

func promptVerdictDetails(defaultScore int) (int, string, error) {
	scorePrompt := promptui.Prompt{
		Label:   "Score (0-100)",
		Default: strconv.Itoa(defaultScore),
		Validate: func(input string) error {
			n, err := strconv.Atoi(input)
			if err != nil || n < 0 || n > 100 {
				return errors.New("score must be an integer between 0 and 100")
			}
			return nil
		},
	}
	scoreStr, err := scorePrompt.Run()
	if err != nil {
		return 0, "", err
	}
	score, _ := strconv.Atoi(scoreStr)

	notesPrompt := promptui.Prompt{Label: "Notes (optional)"}
	notes, err := notesPrompt.Run()
	if err != nil {
		return 0, "", err
	}

	return score, notes, nil
}
