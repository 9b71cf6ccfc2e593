package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// TaskRepo is plain CRUD for the personal task tracker.
type TaskRepo struct {
	db *gorm.DB
}

func (r *TaskRepo) Create(ctx context.Context, task *Task) error {
	if task.Title == "" {
		return errors.New("title is required")
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

func (r *TaskRepo) List(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		var count int64
		err := r.db.WithContext(ctx).
			Model(&Task{}).
			Where("id = ?", id).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("checking task %d: %w", id, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating task %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting task %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
