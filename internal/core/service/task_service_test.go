package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubTaskRepo struct {
	tasks   map[string]*domain.Task
	nextID  int
	listErr error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.nextID++
	created := cloneTask(t)
	created.ID = fmt.Sprintf("task-%03d", r.nextID)
	r.tasks[created.ID] = cloneTask(created)
	return created, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// List applies the same filters, ordering and paging the Mongo repo uses.
func (r *stubTaskRepo) List(_ context.Context, q ports.TaskQuery) ([]*domain.Task, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}

	var matched []*domain.Task
	for _, t := range r.tasks {
		if t.Owner != q.Owner {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if q.Category != "" && !containsFold(t.Category, q.Category) {
			continue
		}
		if q.Search != "" && !containsFold(t.Title, q.Search) && !containsFold(t.Description, q.Search) {
			continue
		}
		matched = append(matched, cloneTask(t))
	}

	ascLess := func(a, b *domain.Task) bool {
		switch q.SortField {
		case ports.SortTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.Slice(matched, func(i, j int) bool {
		if q.Descending {
			return ascLess(matched[j], matched[i])
		}
		return ascLess(matched[i], matched[j])
	})

	total := int64(len(matched))
	skip := int(q.Skip())
	if skip >= len(matched) {
		return []*domain.Task{}, total, nil
	}
	end := skip + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubTaskRepo) Update(_ context.Context, id string, c ports.TaskChanges) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Category != nil {
		t.Category = *c.Category
	}
	if c.DueDate != nil {
		due := *c.DueDate
		t.DueDate = &due
	}
	t.UpdatedAt = c.UpdatedAt
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) Stats(_ context.Context, owner string) (*domain.TaskStats, error) {
	s := &domain.TaskStats{}
	for _, t := range r.tasks {
		if t.Owner != owner {
			continue
		}
		s.Total++
		switch t.Status {
		case domain.StatusPending:
			s.Pending++
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusCompleted:
			s.Completed++
		}
		switch t.Priority {
		case domain.PriorityHigh:
			s.High++
		case domain.PriorityMedium:
			s.Medium++
		case domain.PriorityLow:
			s.Low++
		}
	}
	return s, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func newTestTaskService() (*TaskService, *stubTaskRepo) {
	repo := newStubTaskRepo()
	return NewTaskService(repo, zerolog.Nop()), repo
}

func mustCreate(t *testing.T, svc *TaskService, owner string, in ports.CreateTaskInput) *domain.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	return task
}

func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }

// ---------------------------------------------------------------------------
// Create / Get
// ---------------------------------------------------------------------------

func TestTaskService_Create_Defaults(t *testing.T) {
	svc, _ := newTestTaskService()

	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Write report"})

	if task.Status != domain.StatusPending {
		t.Errorf("status = %s, want pending", task.Status)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("priority = %s, want medium", task.Priority)
	}
	if task.Category != domain.DefaultCategory {
		t.Errorf("category = %q, want General", task.Category)
	}
	if task.Owner != "alice" {
		t.Errorf("owner = %q", task.Owner)
	}
	if task.CreatedAt.IsZero() || !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Errorf("unexpected timestamps: %s / %s", task.CreatedAt, task.UpdatedAt)
	}
}

func TestTaskService_Create_KeepsProvidedFields(t *testing.T) {
	svc, _ := newTestTaskService()
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{
		Title:       "Ship",
		Description: "v2",
		Status:      domain.StatusInProgress,
		Priority:    domain.PriorityHigh,
		Category:    "Work",
		DueDate:     &due,
	})

	if task.Status != domain.StatusInProgress || task.Priority != domain.PriorityHigh || task.Category != "Work" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Fatalf("due date = %v", task.DueDate)
	}
}

func TestTaskService_Get_Ownership(t *testing.T) {
	svc, _ := newTestTaskService()
	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Private"})

	if _, err := svc.GetTask(context.Background(), "alice", task.ID); err != nil {
		t.Fatalf("owner could not read own task: %v", err)
	}
	if _, err := svc.GetTask(context.Background(), "bob", task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetTask(context.Background(), "alice", "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestTaskService_Update_ToggleSequence(t *testing.T) {
	svc, _ := newTestTaskService()
	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Toggle me"})

	want := []domain.TaskStatus{domain.StatusCompleted, domain.StatusPending, domain.StatusCompleted}
	for i, w := range want {
		updated, err := svc.UpdateTask(context.Background(), "alice", task.ID, ports.UpdateTaskInput{})
		if err != nil {
			t.Fatalf("toggle %d: %v", i+1, err)
		}
		if updated.Status != w {
			t.Fatalf("toggle %d: status = %s, want %s", i+1, updated.Status, w)
		}
	}
}

func TestTaskService_Update_ToggleFromInProgress(t *testing.T) {
	svc, _ := newTestTaskService()
	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Busy", Status: domain.StatusInProgress})

	updated, err := svc.UpdateTask(context.Background(), "alice", task.ID, ports.UpdateTaskInput{})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.Status != domain.StatusPending {
		t.Fatalf("status = %s, want pending", updated.Status)
	}

	updated, err = svc.UpdateTask(context.Background(), "alice", task.ID, ports.UpdateTaskInput{})
	if err != nil {
		t.Fatalf("second UpdateTask returned error: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}
}

func TestTaskService_Update_ExplicitStatus(t *testing.T) {
	svc, _ := newTestTaskService()
	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Explicit"})

	for _, s := range []domain.TaskStatus{domain.StatusInProgress, domain.StatusInProgress, domain.StatusPending} {
		updated, err := svc.UpdateTask(context.Background(), "alice", task.ID, ports.UpdateTaskInput{Status: statusPtr(s)})
		if err != nil {
			t.Fatalf("UpdateTask returned error: %v", err)
		}
		if updated.Status != s {
			t.Fatalf("status = %s, want %s", updated.Status, s)
		}
	}
}

func TestTaskService_Update_FieldsWithoutStatusStillToggle(t *testing.T) {
	svc, _ := newTestTaskService()
	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Old", Category: "Work"})

	title := "New"
	empty := ""
	updated, err := svc.UpdateTask(context.Background(), "alice", task.ID, ports.UpdateTaskInput{
		Title:    &title,
		Category: &empty,
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.Title != "New" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Category != domain.DefaultCategory {
		t.Errorf("category = %q, want General", updated.Category)
	}
	if updated.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}
	if updated.Owner != "alice" || updated.ID != task.ID {
		t.Errorf("identity fields changed: %+v", updated)
	}
}

func TestTaskService_Update_Forbidden(t *testing.T) {
	svc, repo := newTestTaskService()
	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Mine"})

	_, err := svc.UpdateTask(context.Background(), "bob", task.ID, ports.UpdateTaskInput{Status: statusPtr(domain.StatusCompleted)})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.tasks[task.ID].Status != domain.StatusPending {
		t.Fatal("task must not change after a forbidden update")
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestTaskService_Delete(t *testing.T) {
	svc, _ := newTestTaskService()
	task := mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Bye"})

	if err := svc.DeleteTask(context.Background(), "bob", task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteTask(context.Background(), "alice", task.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if _, err := svc.GetTask(context.Background(), "alice", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err := svc.DeleteTask(context.Background(), "alice", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List / Stats
// ---------------------------------------------------------------------------

func seedTasks(t *testing.T, svc *TaskService, repo *stubTaskRepo, owner string, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		task := mustCreate(t, svc, owner, ports.CreateTaskInput{Title: fmt.Sprintf("%s task %02d", owner, i)})
		// Spread creation times so ordering is deterministic; every third task
		// shares a timestamp with its predecessor to exercise the tiebreaker.
		repo.tasks[task.ID].CreatedAt = base.Add(time.Duration(i-i%3) * time.Minute)
	}
}

func TestTaskService_List_Isolation(t *testing.T) {
	svc, repo := newTestTaskService()
	seedTasks(t, svc, repo, "alice", 3)
	seedTasks(t, svc, repo, "bob", 2)

	res, err := svc.ListTasks(context.Background(), "bob", ports.ListTasksInput{})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if res.Total != 2 || res.Count != 2 {
		t.Fatalf("total/count = %d/%d, want 2/2", res.Total, res.Count)
	}
	for _, task := range res.Items {
		if task.Owner != "bob" {
			t.Fatalf("leaked task of %s", task.Owner)
		}
	}
}

func TestTaskService_List_PagesConcatenate(t *testing.T) {
	svc, repo := newTestTaskService()
	seedTasks(t, svc, repo, "alice", 23)

	seen := make(map[string]bool)
	var pages int
	for page := 1; ; page++ {
		res, err := svc.ListTasks(context.Background(), "alice", ports.ListTasksInput{
			Page:  fmt.Sprint(page),
			Limit: "5",
		})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		pages = res.Pages
		if res.Count == 0 {
			break
		}
		for _, task := range res.Items {
			if seen[task.ID] {
				t.Fatalf("task %s returned twice", task.ID)
			}
			seen[task.ID] = true
		}
	}

	if len(seen) != 23 {
		t.Fatalf("collected %d tasks, want 23", len(seen))
	}
	if pages != 5 {
		t.Fatalf("pages = %d, want 5", pages)
	}
}

func TestTaskService_List_EmptyHasOnePage(t *testing.T) {
	svc, _ := newTestTaskService()

	res, err := svc.ListTasks(context.Background(), "alice", ports.ListTasksInput{})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", res.Items)
	}
	if res.Pages != 1 || res.Page != 1 {
		t.Fatalf("page/pages = %d/%d, want 1/1", res.Page, res.Pages)
	}
}

func TestTaskService_List_Filters(t *testing.T) {
	svc, _ := newTestTaskService()
	mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Quarterly report", Priority: domain.PriorityHigh, Category: "Work"})
	mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Groceries", Description: "milk, eggs", Category: "Home"})
	mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "Expense REPORT", Category: "work-admin", Status: domain.StatusCompleted})

	tests := []struct {
		name string
		in   ports.ListTasksInput
		want int64
	}{
		{"search title case-insensitive", ports.ListTasksInput{Search: "report"}, 2},
		{"search description", ports.ListTasksInput{Search: "EGGS"}, 1},
		{"category substring", ports.ListTasksInput{Category: "work"}, 2},
		{"priority", ports.ListTasksInput{Priority: "high"}, 1},
		{"status", ports.ListTasksInput{Status: "completed"}, 1},
		{"unknown status ignored", ports.ListTasksInput{Status: "archived"}, 3},
		{"combined", ports.ListTasksInput{Search: "report", Status: "pending"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.ListTasks(context.Background(), "alice", tt.in)
			if err != nil {
				t.Fatalf("ListTasks returned error: %v", err)
			}
			if res.Total != tt.want {
				t.Fatalf("total = %d, want %d", res.Total, tt.want)
			}
		})
	}
}

func TestTaskService_List_RepoError(t *testing.T) {
	svc, repo := newTestTaskService()
	repo.listErr = errors.New("boom")

	if _, err := svc.ListTasks(context.Background(), "alice", ports.ListTasksInput{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestTaskService_Stats(t *testing.T) {
	svc, _ := newTestTaskService()

	empty, err := svc.TaskStats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("TaskStats returned error: %v", err)
	}
	if *empty != (domain.TaskStats{}) {
		t.Fatalf("expected zero stats, got %+v", empty)
	}

	mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "a", Priority: domain.PriorityHigh})
	mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "b", Status: domain.StatusInProgress, Priority: domain.PriorityLow})
	mustCreate(t, svc, "alice", ports.CreateTaskInput{Title: "c", Status: domain.StatusCompleted})
	mustCreate(t, svc, "bob", ports.CreateTaskInput{Title: "d"})

	s, err := svc.TaskStats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("TaskStats returned error: %v", err)
	}
	if s.Total != 3 {
		t.Fatalf("total = %d, want 3", s.Total)
	}
	if s.Pending+s.InProgress+s.Completed != s.Total {
		t.Fatalf("status counters do not sum to total: %+v", s)
	}
	if s.High+s.Medium+s.Low != s.Total {
		t.Fatalf("priority counters do not sum to total: %+v", s)
	}
	if s.Pending != 1 || s.InProgress != 1 || s.Completed != 1 || s.High != 1 || s.Medium != 1 || s.Low != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
