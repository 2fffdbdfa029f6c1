package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(recordingStructLevel, Recording{})
	return v
}

// recordingStructLevel enforces the cross-field recording invariants:
// error_message iff failed, completed_at iff terminal.
func recordingStructLevel(sl validator.StructLevel) {
	r := sl.Current().Interface().(Recording)
	failed := r.Status == RecordingStatusFailed
	if (r.ErrorMessage != nil) != failed {
		sl.ReportError(r.ErrorMessage, "error_message", "ErrorMessage", "iffailed", "")
	}
	if (r.CompletedAt != nil) != r.Status.Terminal() {
		sl.ReportError(r.CompletedAt, "completed_at", "CompletedAt", "iffterminal", "")
	}
}

// FieldError is a single failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

// ValidationError is returned when an entity breaks an application-level rule.
// It is never produced by the database.
type ValidationError struct {
	Entity string       `json:"entity"`
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

// NewValidationError builds a *ValidationError for rules checked outside struct tags.
func NewValidationError(entity string, fields ...FieldError) *ValidationError {
	return &ValidationError{Entity: entity, Fields: fields}
}

// Validate checks v (a pointer to one of the entity types) against its rules.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Entity: entityName(v)}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return ve
}

func entityName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.Map {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gtfield":
		return "must be after " + toSnake(fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "iffailed":
		return "must be set if and only if status is failed"
	case "iffterminal":
		return "must be set if and only if status is completed or failed"
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
	}
	return fe.Tag()
}

// toSnake turns a Go field name like StartTime into start_time.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
