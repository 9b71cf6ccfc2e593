package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a []string as a JSON-encoded TEXT column. Consumers
// only ever see the slice; encoding happens at the database boundary.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("encoding string list: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported string list column type %T", src)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decoding string list: %w", err)
	}
	*l = StringList(out)
	return nil
}

// CVHistoryEntry is one generated CV with its scoring snapshot.
type CVHistoryEntry struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	JobTitle        string     `gorm:"not null" json:"jobTitle"`
	Company         string     `gorm:"not null" json:"company"`
	JobURL          string     `json:"jobUrl,omitempty"`
	ATSScore        int        `json:"atsScore"`
	MatchedKeywords StringList `gorm:"type:text" json:"matchedKeywords"`
	MissingKeywords StringList `gorm:"type:text" json:"missingKeywords"`
	CVHTML          string     `gorm:"type:text" json:"cvHtml,omitempty"`
	PDFPath         string     `json:"pdfPath,omitempty"`
	Status          string     `json:"status,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (CVHistoryEntry) TableName() string { return "cv_history" }

// QA review states.
const (
	QAStatusPending          = "pending"
	QAStatusSpawning         = "spawning"
	QAVerdictApproved        = "approved"
	QAVerdictRejected        = "rejected"
	QAVerdictChangesRequired = "changes_requested"
)

// QAReview is the review projection for one CV, keyed by CVID. A re-submit
// upserts the same row; there is no per-attempt audit trail.
type QAReview struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	CVID              string     `gorm:"column:cv_id;uniqueIndex;not null" json:"cvId"`
	JobTitle          string     `gorm:"not null" json:"jobTitle"`
	Company           string     `gorm:"not null" json:"company"`
	ATSScore          int        `json:"atsScore"`
	MatchedKeywords   StringList `gorm:"type:text" json:"matchedKeywords"`
	MissingKeywords   StringList `gorm:"type:text" json:"missingKeywords"`
	PDFURL            string     `gorm:"column:pdf_url" json:"pdfUrl,omitempty"`
	Status            string     `gorm:"not null" json:"status"`
	QAVerdict         string     `json:"qaVerdict,omitempty"`
	QAScore           int        `json:"qaScore"`
	QANotes           string     `gorm:"type:text" json:"qaNotes,omitempty"`
	QAIssues          StringList `gorm:"type:text" json:"qaIssues"`
	QARecommendations StringList `gorm:"type:text" json:"qaRecommendations"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (QAReview) TableName() string { return "cv_qa_reviews" }

// Task is a personal tracker item, unrelated to the generation pipeline.
type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Assignee  string     `json:"assignee,omitempty"`
	Status    string     `json:"status,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	Category  string     `json:"category,omitempty"`
	DueDate   string     `json:"dueDate,omitempty"`
	RelatedTo StringList `gorm:"type:text" json:"relatedTo"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }
