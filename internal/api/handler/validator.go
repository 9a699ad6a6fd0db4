package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskflow/task-api/internal/core/domain"
)

// isoDateLayouts are the accepted ISO-8601 forms for dates sent by clients.
var isoDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// messages maps "<json field>.<tag>" to the message returned to the client.
var messages = map[string]string{
	"name.required":     "Name must be between 2 and 50 characters",
	"name.min":          "Name must be between 2 and 50 characters",
	"name.max":          "Name must be between 2 and 50 characters",
	"email.required":    "Email is required",
	"email.email":       "Please enter a valid email",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
	"password.maxbytes": "Password cannot exceed 72 bytes",

	"title.required":  "Title must be between 1 and 100 characters",
	"title.min":       "Title must be between 1 and 100 characters",
	"title.max":       "Title must be between 1 and 100 characters",
	"description.max": "Description cannot exceed 500 characters",
	"status.oneof":    "Status must be pending, in-progress, or completed",
	"priority.oneof":  "Priority must be low, medium, or high",
	"category.max":    "Category cannot exceed 50 characters",
	"dueDate.isodate": "Due date must be a valid date",
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in errors are the JSON names.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseISODate(fl.Field().String())
		return ok
	})
	// maxbytes limits the encoded length, unlike max which counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Every failing field is
// reported in one *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	raw, _ := i.(rawInput)
	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(ve))}
	for _, fe := range ve {
		value := fieldValue(fe)
		if raw != nil {
			if v, ok := raw.rawValue(fe.Field()); ok {
				value = v
			}
		}
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Value:   value,
		})
	}
	return out
}

// rawInput is implemented by requests whose normalize step rewrites a field,
// so errors can echo what the client actually sent.
type rawInput interface {
	rawValue(field string) (any, bool)
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// fieldValue echoes the rejected value back, except for passwords.
func fieldValue(fe validator.FieldError) any {
	if fe.Field() == "password" {
		return ""
	}
	v := reflect.ValueOf(fe.Value())
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return fe.Value()
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
