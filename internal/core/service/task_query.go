package service

import (
	"strconv"
	"strings"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var sortFields = map[string]ports.SortField{
	"createdAt": ports.SortCreatedAt,
	"updatedAt": ports.SortUpdatedAt,
	"dueDate":   ports.SortDueDate,
	"title":     ports.SortTitle,
	"status":    ports.SortStatus,
	"priority":  ports.SortPriority,
	"category":  ports.SortCategory,
}

// BuildTaskQuery turns raw list parameters into a TaskQuery scoped to owner.
// Empty or unrecognised values are treated as not specified and fall back to
// their defaults: page 1, limit 10 (at most 100), newest first.
func BuildTaskQuery(owner string, in ports.ListTasksInput) ports.TaskQuery {
	q := ports.TaskQuery{
		Owner:      owner,
		Category:   strings.TrimSpace(in.Category),
		Search:     strings.TrimSpace(in.Search),
		Page:       positiveInt(in.Page, defaultPage),
		Limit:      positiveInt(in.Limit, defaultLimit),
		SortField:  ports.SortCreatedAt,
		Descending: true,
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	if status := domain.TaskStatus(strings.TrimSpace(in.Status)); status.Valid() {
		q.Status = status
	}
	if priority := domain.TaskPriority(strings.TrimSpace(in.Priority)); priority.Valid() {
		q.Priority = priority
	}

	// Only the first key of a multi-key sort string is honoured.
	if fields := strings.FieldsFunc(in.Sort, func(r rune) bool { return r == ',' || r == ' ' }); len(fields) > 0 {
		key := fields[0]
		desc := false
		switch {
		case strings.HasPrefix(key, "-"):
			desc, key = true, key[1:]
		case strings.HasPrefix(key, "+"):
			key = key[1:]
		}
		if field, ok := sortFields[key]; ok {
			q.SortField, q.Descending = field, desc
		}
	}

	return q
}

// TotalPages returns ceil(total/limit), never less than 1.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
