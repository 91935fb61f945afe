package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")

	// ErrStateConflict covers transitions attempted from a state that
	// no longer permits them (double-confirm, double-pay, completing a
	// pending rental). Callers treat it as a warning no-op.
	ErrStateConflict = errors.New("action is not allowed in the current state")

	ErrPaymentRequired = errors.New("confirmation is possible only after the client has paid")
	ErrNoCounterparty  = errors.New("message receiver is not determined")
)

// ValidationError reports bad user input (date ranges, payload fields).
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// DateRange is a half-open [Start, End) booking window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s – %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// Overlaps uses the half-open interval test: a shared boundary day is
// not a conflict.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// DateConflictError lists every booking window that blocks a requested
// range. The message names all of them so the client can pick around
// the occupied days.
type DateConflictError struct {
	Ranges []DateRange
}

func (e *DateConflictError) Error() string {
	parts := make([]string, len(e.Ranges))
	for i, r := range e.Ranges {
		parts[i] = r.String()
	}
	return "inventory is already booked for these dates: " + strings.Join(parts, ", ")
}
