package importer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingUser     = errors.New("missing user id")
	ErrNoRows          = errors.New("no rows to import")
	ErrNoMapping       = errors.New("no column mapping provided")
	ErrStartImport     = errors.New("failed to start import")
	ErrQueueFull       = errors.New("import queue is full")
	ErrRunNotFound     = errors.New("no import run in progress")
	ErrRunCancelled    = errors.New("import run cancelled")
	ErrRunSuperseded   = errors.New("import run superseded by a newer run")
	ErrProgressMissing = errors.New("import progress not found")
	ErrGetProgress     = errors.New("failed to get import progress")
	ErrDismissProgress = errors.New("failed to dismiss import progress")
	ErrListRuns        = errors.New("failed to list import runs")
)

// ReasonAmbiguousMatch is recorded when more than one existing client shares a row's name.
const ReasonAmbiguousMatch = "multiple clients with same name; manual resolution required"

// StructuralError aborts a whole run before any row is processed.
type StructuralError struct {
	Err error
}

func (e *StructuralError) Error() string {
	return e.Err.Error()
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// RequiredFieldError reports missing first or last names.
type RequiredFieldError struct {
	Fields []string
}

func (e *RequiredFieldError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// ValidationError carries every rule a row violated, in field order.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// StatusNormalizationError reports free text that matches no canonical status.
type StatusNormalizationError struct {
	Field string
	Value string
}

func (e *StatusNormalizationError) Error() string {
	return fmt.Sprintf("Unrecognized %s: %q", e.Field, e.Value)
}
