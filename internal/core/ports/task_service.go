package ports

import (
	"context"
	"time"

	"github.com/taskflow/task-api/internal/core/domain"
)

// ListTasksInput carries the raw list parameters as received from the client.
// Any of them may be empty or malformed; BuildTaskQuery decides what they mean.
type ListTasksInput struct {
	Status   string
	Priority string
	Category string
	Search   string
	Page     string
	Limit    string
	Sort     string
}

// ListTasksResult is returned by ListTasks.
type ListTasksResult struct {
	Items []*domain.Task
	Count int
	Total int64
	Page  int
	Limit int
	Pages int
}

// CreateTaskInput carries validated, trimmed task fields. Empty Status,
// Priority and Category fall back to their defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	Category    string
	DueDate     *time.Time
}

// UpdateTaskInput carries validated task fields. A nil Status means the
// update toggles the current status.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	Category    *string
	DueDate     *time.Time
}

// TaskService defines use-case operations for tasks. Every call is scoped to
// the owner id passed by the caller.
type TaskService interface {
	ListTasks(ctx context.Context, owner string, input ListTasksInput) (*ListTasksResult, error)
	GetTask(ctx context.Context, owner, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, owner string, input CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, owner, id string, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, owner, id string) error
	TaskStats(ctx context.Context, owner string) (*domain.TaskStats, error)
}
