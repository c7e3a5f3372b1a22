package service

import (
	"context"
	"strings"

	"github.com/mhsanaei/taskpanel/database"
	"github.com/mhsanaei/taskpanel/database/model"

	"gorm.io/gorm"
)

// TaskService stores tasks. Every operation is scoped to the owning user; a
// task owned by someone else behaves exactly like a missing one.
type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

func validateTaskText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyTask
	}
	return nil
}

// ListForUser returns the user's tasks, newest first.
func (s *TaskService) ListForUser(ctx context.Context, userId int) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("id DESC").
		Find(&tasks).
		Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userId int, text string) (*model.Task, error) {
	if err := validateTaskText(text); err != nil {
		return nil, err
	}
	task := &model.Task{UserId: userId, Text: text}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// GetByID returns one of the user's tasks.
func (s *TaskService) GetByID(ctx context.Context, userId, taskId int) (*model.Task, error) {
	task := &model.Task{}
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskId, userId).
		First(task).
		Error
	if database.IsNotFound(err) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update replaces the text of one of the user's tasks.
func (s *TaskService) Update(ctx context.Context, userId, taskId int, text string) error {
	if err := validateTaskText(text); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskId, userId).
		Update("task", text)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows for an unchanged value
		if _, err := s.GetByID(ctx, userId, taskId); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, userId, taskId int) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskId, userId).
		Delete(&model.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
