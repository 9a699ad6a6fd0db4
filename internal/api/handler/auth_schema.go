package handler

import (
	"strings"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`

	rawEmail string
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.rawEmail = r.Email
	r.Email = domain.NormalizeEmail(r.Email)
}

func (r *registerRequest) rawValue(field string) (any, bool) {
	return emailAsSent(field, r.rawEmail)
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`

	rawEmail string
}

func (r *loginRequest) normalize() {
	r.rawEmail = r.Email
	r.Email = domain.NormalizeEmail(r.Email)
}

func (r *loginRequest) rawValue(field string) (any, bool) {
	return emailAsSent(field, r.rawEmail)
}

// updateProfileRequest fields are all optional; empty values count as absent.
type updateProfileRequest struct {
	Name     *string `json:"name"     validate:"omitnil,min=2,max=50"`
	Email    *string `json:"email"    validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,min=6,maxbytes=72"`

	rawEmail string
}

func (r *updateProfileRequest) normalize() {
	r.Name = trimmedOrNil(r.Name)
	if r.Email != nil {
		r.rawEmail = *r.Email
	}
	r.Email = trimmedOrNil(r.Email)
	if r.Email != nil {
		email := domain.NormalizeEmail(*r.Email)
		r.Email = &email
	}
	if r.Password != nil && *r.Password == "" {
		r.Password = nil
	}
}

func (r *updateProfileRequest) rawValue(field string) (any, bool) {
	return emailAsSent(field, r.rawEmail)
}

func (r updateProfileRequest) toInput() ports.UpdateProfileInput {
	return ports.UpdateProfileInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func emailAsSent(field, raw string) (any, bool) {
	if field != "email" {
		return nil, false
	}
	return raw, raw != ""
}

// trimmedOrNil trims s and drops it when nothing is left.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ErrorResponse is the envelope of every 4xx/5xx response.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}
