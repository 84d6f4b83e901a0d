package planner

import (
	"errors"

	"github.com/example/calendar-planner/internal/calendar"
	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/recurrence"
	"github.com/example/calendar-planner/internal/registry"
	"github.com/example/calendar-planner/internal/timezone"
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, calendar.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, calendar.ErrNotFound), errors.Is(err, registry.ErrCalendarNotFound):
		return "not_found"
	case errors.Is(err, registry.ErrAmbiguousMatch):
		return "ambiguous_match"
	case errors.Is(err, registry.ErrNoActiveCalendar):
		return "no_active_calendar"
	case errors.Is(err, registry.ErrCalendarExists):
		return "calendar_exists"
	case errors.Is(err, timezone.ErrUnrecognized):
		return "unrecognized_timezone"
	case errors.Is(err, event.ErrStartAfterEnd),
		errors.Is(err, event.ErrUnknownProperty),
		errors.Is(err, event.ErrInvalidValue),
		errors.Is(err, recurrence.ErrBadWeekday),
		errors.Is(err, recurrence.ErrBadCount),
		errors.Is(err, recurrence.ErrUntilBeforeStart):
		return "validation"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	return "internal"
}
