package ports

import (
	"context"
	"time"

	"github.com/taskflow/task-api/internal/core/domain"
)

// SortField is a task attribute the list endpoint can order by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortDueDate   SortField = "dueDate"
	SortTitle     SortField = "title"
	SortStatus    SortField = "status"
	SortPriority  SortField = "priority"
	SortCategory  SortField = "category"
)

// TaskQuery is the normalized form of a list request. Owner is always set by
// the service; empty filter fields mean "not specified".
type TaskQuery struct {
	Owner      string
	Status     domain.TaskStatus   // exact match
	Priority   domain.TaskPriority // exact match
	Category   string              // case-insensitive substring
	Search     string              // case-insensitive substring on title or description
	Page       int                 // 1-based
	Limit      int
	SortField  SortField
	Descending bool
}

// Skip returns the number of records before the requested page.
func (q TaskQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

// TaskChanges lists the fields an update writes. Nil pointers are left untouched.
type TaskChanges struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	Category    *string
	DueDate     *time.Time
	UpdatedAt   time.Time
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// FindByID returns the task regardless of owner; ownership is checked by the service.
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns one page of tasks matching q and the total match count.
	List(ctx context.Context, q TaskQuery) ([]*domain.Task, int64, error)
	Update(ctx context.Context, id string, changes TaskChanges) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, owner string) (*domain.TaskStats, error)
}
