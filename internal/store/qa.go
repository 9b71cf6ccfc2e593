package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QARepo persists QA reviews, one row per cvId.
type QARepo struct {
	db *gorm.DB
}

// UpsertPending inserts (or resets) the review row for review.CVID with
// status pending. A re-submit for the same cvId overwrites the previous
// attempt.
func (r *QARepo) UpsertPending(ctx context.Context, review *QAReview) error {
	if review.CVID == "" {
		return errors.New("cvId is required")
	}
	if review.JobTitle == "" || review.Company == "" {
		return errors.New("jobTitle and company are required")
	}

	review.Status = QAStatusPending
	review.QAVerdict = ""
	review.QAScore = 0
	review.QANotes = ""
	review.QAIssues = StringList{}
	review.QARecommendations = StringList{}
	if review.MatchedKeywords == nil {
		review.MatchedKeywords = StringList{}
	}
	if review.MissingKeywords == nil {
		review.MissingKeywords = StringList{}
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cv_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"job_title", "company", "ats_score",
			"matched_keywords", "missing_keywords", "pdf_url",
			"status", "qa_verdict", "qa_score", "qa_notes",
			"qa_issues", "qa_recommendations", "updated_at",
		}),
	}).Create(review).Error
	if err != nil {
		return fmt.Errorf("upserting qa review for %s: %w", review.CVID, err)
	}
	return nil
}

// MarkSpawning promotes a pending review to spawning. Rows that already
// moved past pending are left untouched, so a delegated verdict that lands
// first cannot be rolled back.
func (r *QARepo) MarkSpawning(ctx context.Context, cvID string) error {
	result := r.db.WithContext(ctx).
		Model(&QAReview{}).
		Where("cv_id = ? AND status = ?", cvID, QAStatusPending).
		Update("status", QAStatusSpawning)
	if result.Error != nil {
		return fmt.Errorf("marking review spawning for %s: %w", cvID, result.Error)
	}
	return nil
}

// Verdict carries everything a review outcome can set.
type Verdict struct {
	Status          string
	QAVerdict       string
	QAScore         int
	QANotes         string
	Issues          []string
	Recommendations []string
}

// UpdateVerdict overwrites the review outcome for cvID unconditionally.
// Manual overrides and delegated callbacks share this path; the last write
// wins.
func (r *QARepo) UpdateVerdict(ctx context.Context, cvID string, v Verdict) error {
	result := r.db.WithContext(ctx).
		Model(&QAReview{}).
		Where("cv_id = ?", cvID).
		Updates(map[string]any{
			"status":             v.Status,
			"qa_verdict":         v.QAVerdict,
			"qa_score":           v.QAScore,
			"qa_notes":           v.QANotes,
			"qa_issues":          StringList(v.Issues),
			"qa_recommendations": StringList(v.Recommendations),
		})
	if result.Error != nil {
		return fmt.Errorf("updating qa verdict for %s: %w", cvID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *QARepo) GetByCVID(ctx context.Context, cvID string) (*QAReview, error) {
	var review QAReview
	err := r.db.WithContext(ctx).Where("cv_id = ?", cvID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching qa review for %s: %w", cvID, err)
	}
	return &review, nil
}

// List returns reviews newest-first, optionally filtered by status.
func (r *QARepo) List(ctx context.Context, status string) ([]QAReview, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reviews []QAReview
	if err := query.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("listing qa reviews: %w", err)
	}
	return reviews, nil
}
