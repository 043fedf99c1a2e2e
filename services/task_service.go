package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdesk/taskdesk/broker"
	"taskdesk/taskdesk/database"
	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/metrics"
	"taskdesk/taskdesk/models"

	"gorm.io/gorm"
)

// TaskServiceInterface is the task repository. Every method takes the acting user
// explicitly and only ever touches that user's tasks.
type TaskServiceInterface interface {
	CreateTask(ctx context.Context, actor uint, fields models.TaskFields) (models.Task, error)
	ListOpen(ctx context.Context, actor uint) ([]models.Task, error)
	ListResolved(ctx context.Context, actor uint) ([]models.Task, error)
	CountOpen(ctx context.Context, actor uint) (int64, error)
	CountResolved(ctx context.Context, actor uint) (int64, error)
	GetTask(ctx context.Context, actor uint, id uint) (models.Task, error)
	UpdateTask(ctx context.Context, actor uint, id uint, update models.TaskUpdate) (models.Task, error)
	ResolveTask(ctx context.Context, actor uint, id uint) error
	DeleteTask(ctx context.Context, actor uint, id uint) error
}

// TaskService does not lock rows: two concurrent edits of one task race and the last
// commit wins.
type TaskService struct {
	db     *database.Database
	events EventPublisher
	now    func() time.Time
}

func NewTaskService(db *database.Database, events EventPublisher) *TaskService {
	return &TaskService{db: db, events: events, now: time.Now}
}

func (s *TaskService) CreateTask(ctx context.Context, actor uint, fields models.TaskFields) (models.Task, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return models.Task{}, err
	}

	ve := &ValidationError{}
	if fields.Title == "" {
		ve.add("title", "title is required")
	}
	if fields.Description == "" {
		ve.add("description", "description is required")
	}
	if _, err := models.PriorityFromString(string(fields.Priority)); err != nil {
		ve.add("priority", err.Error())
	}
	if len(ve.Fields) > 0 {
		return models.Task{}, ve
	}

	task := models.Task{
		UserID:      actor,
		Title:       fields.Title,
		Description: fields.Description,
		Priority:    fields.Priority,
		Date:        s.now().Format(models.DateLayout),
		Resolved:    false,
	}
	if err := s.db.DB.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("create").Inc()
	applog.Get().Debug().Uint("user_id", actor).Uint("task_id", task.ID).Msg("task created")
	publishEvent(ctx, s.events, broker.TaskCreated, "task", actor, taskEventData(task))
	return task, nil
}

func (s *TaskService) ListOpen(ctx context.Context, actor uint) ([]models.Task, error) {
	return s.list(ctx, actor, false)
}

func (s *TaskService) ListResolved(ctx context.Context, actor uint) ([]models.Task, error) {
	return s.list(ctx, actor, true)
}

// list returns tasks in insertion order, which is id order.
func (s *TaskService) list(ctx context.Context, actor uint, resolved bool) ([]models.Task, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	tasks := []models.Task{}
	result := s.db.DB.WithContext(ctx).
		Where("user_id = ? AND resolved = ?", actor, resolved).
		Order("id").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (s *TaskService) CountOpen(ctx context.Context, actor uint) (int64, error) {
	return s.count(ctx, actor, false)
}

func (s *TaskService) CountResolved(ctx context.Context, actor uint) (int64, error) {
	return s.count(ctx, actor, true)
}

func (s *TaskService) count(ctx context.Context, actor uint, resolved bool) (int64, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return 0, err
	}

	var n int64
	err := s.db.DB.WithContext(ctx).
		Model(&models.Task{}).
		Where("user_id = ? AND resolved = ?", actor, resolved).
		Count(&n).Error
	return n, err
}

func (s *TaskService) GetTask(ctx context.Context, actor uint, id uint) (models.Task, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return models.Task{}, err
	}
	return s.loadOwned(s.db.DB.WithContext(ctx), actor, id)
}

func (s *TaskService) UpdateTask(ctx context.Context, actor uint, id uint, update models.TaskUpdate) (models.Task, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return models.Task{}, err
	}

	tx := s.db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	task, err := s.loadOwned(tx, actor, id)
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		task.Title = *update.Title
		changes["title"] = task.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
		changes["description"] = task.Description
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
		changes["priority"] = task.Priority
	}

	if len(changes) == 0 {
		tx.Rollback()
		return task, nil
	}

	if err := tx.Model(&task).Updates(changes).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return models.Task{}, err
	}

	metrics.TaskOperationsTotal.WithLabelValues("update").Inc()
	publishEvent(ctx, s.events, broker.TaskUpdated, "task", actor, taskEventData(task))
	return task, nil
}

// ResolveTask marks a task done. Resolving a resolved task succeeds without a write.
func (s *TaskService) ResolveTask(ctx context.Context, actor uint, id uint) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}

	tx := s.db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	task, err := s.loadOwned(tx, actor, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	if task.Resolved {
		tx.Rollback()
		return nil
	}

	if err := tx.Model(&task).Update("resolved", true).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	task.Resolved = true
	metrics.TaskOperationsTotal.WithLabelValues("resolve").Inc()
	publishEvent(ctx, s.events, broker.TaskResolved, "task", actor, taskEventData(task))
	return nil
}

// DeleteTask removes a task permanently. A missing task is reported, not ignored.
func (s *TaskService) DeleteTask(ctx context.Context, actor uint, id uint) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}

	tx := s.db.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	task, err := s.loadOwned(tx, actor, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&task).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	metrics.TaskOperationsTotal.WithLabelValues("delete").Inc()
	publishEvent(ctx, s.events, broker.TaskDeleted, "task", actor, map[string]interface{}{
		"task_id": task.ID,
	})
	return nil
}

// loadOwned distinguishes a task that does not exist from one owned by someone else.
func (s *TaskService) loadOwned(db *gorm.DB, actor uint, id uint) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	if task.UserID != actor {
		metrics.AccessDeniedTotal.Inc()
		applog.Get().Info().Uint("user_id", actor).Uint("task_id", id).Msg("task access denied")
		return models.Task{}, ErrForbidden
	}
	return task, nil
}

func taskEventData(task models.Task) map[string]interface{} {
	return map[string]interface{}{
		"task_id":  task.ID,
		"title":    task.Title,
		"priority": task.Priority,
		"resolved": task.Resolved,
	}
}
