package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// ListTasks returns one page of the owner's tasks.
func (s *TaskService) ListTasks(ctx context.Context, owner string, input ports.ListTasksInput) (*ports.ListTasksResult, error) {
	q := BuildTaskQuery(owner, input)

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if items == nil {
		items = []*domain.Task{}
	}

	return &ports.ListTasksResult{
		Items: items,
		Count: len(items),
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
		Pages: TotalPages(total, q.Limit),
	}, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.ownedTask(ctx, owner, id)
}

// CreateTask stores a new task owned by owner, filling in defaults.
func (s *TaskService) CreateTask(ctx context.Context, owner string, input ports.CreateTaskInput) (*domain.Task, error) {
	now := time.Now().UTC()
	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Category:    input.Category,
		DueDate:     input.DueDate,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Category == "" {
		task.Category = domain.DefaultCategory
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Str("task_id", created.ID).Str("owner", owner).Msg("task created")
	return created, nil
}

// UpdateTask applies the provided fields. Without an explicit status the
// current status is toggled (see domain.TaskStatus.Toggled).
func (s *TaskService) UpdateTask(ctx context.Context, owner, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
	current, err := s.ownedTask(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	status := current.Status.Toggled()
	if input.Status != nil {
		status = *input.Status
	}

	changes := ports.TaskChanges{
		Title:       input.Title,
		Description: input.Description,
		Status:      &status,
		Priority:    input.Priority,
		Category:    input.Category,
		DueDate:     input.DueDate,
		UpdatedAt:   time.Now().UTC(),
	}
	if changes.Category != nil && *changes.Category == "" {
		def := domain.DefaultCategory
		changes.Category = &def
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info().
		Str("task_id", id).
		Str("from", string(current.Status)).
		Str("to", string(status)).
		Bool("toggled", input.Status == nil).
		Msg("task updated")
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, owner, id string) error {
	if _, err := s.ownedTask(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info().Str("task_id", id).Str("owner", owner).Msg("task deleted")
	return nil
}

func (s *TaskService) TaskStats(ctx context.Context, owner string) (*domain.TaskStats, error) {
	stats, err := s.repo.Stats(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	return stats, nil
}

// ownedTask loads a task and checks that owner may see it. A missing task is
// ErrTaskNotFound; a task of someone else is ErrForbidden.
func (s *TaskService) ownedTask(ctx context.Context, owner, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Owner != owner {
		return nil, domain.ErrForbidden
	}
	return task, nil
}
