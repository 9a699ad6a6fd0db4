package handler

import (
	"encoding/json"
	"strings"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Category    string `json:"category"    validate:"max=50"`
	DueDate     string `json:"dueDate"     validate:"omitempty,isodate"`
}

func (r *createTaskRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Status = strings.TrimSpace(r.Status)
	r.Priority = strings.TrimSpace(r.Priority)
	r.Category = strings.TrimSpace(r.Category)
	r.DueDate = strings.TrimSpace(r.DueDate)
}

// toInput assumes the request has been validated.
func (r createTaskRequest) toInput() ports.CreateTaskInput {
	in := ports.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.TaskPriority(r.Priority),
		Category:    r.Category,
	}
	if due, ok := parseISODate(r.DueDate); ok {
		in.DueDate = &due
	}
	return in
}

// updateTaskRequest carries only the fields present in the body. A status that
// is absent, empty or not a JSON string makes the update a toggle.
type updateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	Status      *string `json:"status"      validate:"omitnil,oneof=pending in-progress completed"`
	Priority    *string `json:"priority"    validate:"omitnil,oneof=low medium high"`
	Category    *string `json:"category"    validate:"omitnil,max=50"`
	DueDate     *string `json:"dueDate"     validate:"omitnil,isodate"`
}

func (r *updateTaskRequest) UnmarshalJSON(data []byte) error {
	type plain updateTaskRequest
	aux := struct {
		*plain
		Status json.RawMessage `json:"status"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Status = jsonString(aux.Status)
	return nil
}

// jsonString returns raw as a string when it holds one, nil otherwise.
func jsonString(raw json.RawMessage) *string {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func (r *updateTaskRequest) normalize() {
	r.Title = trimmed(r.Title)
	r.Description = trimmed(r.Description)
	r.Category = trimmed(r.Category)
	r.Status = trimmedOrNil(r.Status)
	r.Priority = trimmedOrNil(r.Priority)
	r.DueDate = trimmedOrNil(r.DueDate)
}

func (r updateTaskRequest) toInput() ports.UpdateTaskInput {
	in := ports.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		in.Status = &s
	}
	if r.Priority != nil {
		p := domain.TaskPriority(*r.Priority)
		in.Priority = &p
	}
	if r.DueDate != nil {
		if due, ok := parseISODate(*r.DueDate); ok {
			in.DueDate = &due
		}
	}
	return in
}

type taskResponse struct {
	Success bool         `json:"success"`
	Data    *domain.Task `json:"data"`
}

type taskListResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
	Data    []*domain.Task `json:"data"`
}

type taskStatsResponse struct {
	Success bool              `json:"success"`
	Data    *domain.TaskStats `json:"data"`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
