package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("record not found")

const defaultHistoryLimit = 50

// HistoryRepo persists generated CVs.
type HistoryRepo struct {
	db *gorm.DB
}

func (r *HistoryRepo) Create(ctx context.Context, entry *CVHistoryEntry) error {
	if entry.JobTitle == "" || entry.Company == "" {
		return errors.New("jobTitle and company are required")
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("creating history entry: %w", err)
	}
	return nil
}

// List returns entries newest-first. A non-positive limit falls back to the
// default.
func (r *HistoryRepo) List(ctx context.Context, limit int) ([]CVHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var entries []CVHistoryEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

func (r *HistoryRepo) GetByID(ctx context.Context, id uint) (*CVHistoryEntry, error) {
	var entry CVHistoryEntry
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching history entry %d: %w", id, err)
	}
	return &entry, nil
}

// UpdateFields patches only the given columns. An empty patch still
// verifies the entry exists.
func (r *HistoryRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&CVHistoryEntry{}).
			Where("id = ?", id).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("checking history entry %d: %w", id, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&CVHistoryEntry{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating history entry %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *HistoryRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&CVHistoryEntry{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting history entry %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
