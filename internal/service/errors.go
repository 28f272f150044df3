package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stemsi/dictant-backend/internal/ticket"
)

// Admission errors. A failed start never touches presence state.
var (
	ErrInvalidCode      = errors.New("no exam session has this join code")
	ErrSessionClosed    = errors.New("exam session is closed")
	ErrNotOnRoster      = errors.New("student is not on the session roster")
	ErrAlreadyAttempted = errors.New("student has already submitted this session")
)

// Lookup and configuration errors.
var (
	ErrExamSessionNotFound = errors.New("exam session not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrNotConfigured       = errors.New("dictation is not configured")
	ErrMasterNotLoaded     = errors.New("master table is not loaded")
	ErrNothingToExport     = errors.New("no submissions to export")
	ErrSessionNameTaken    = errors.New("exam session name is already used")
	ErrJoinCodeExhausted   = errors.New("could not generate a unique join code")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAdminNotConfigured  = errors.New("admin password is not configured")
)

// IsAdmissionError reports whether err rejects a start request.
func IsAdmissionError(err error) bool {
	return errors.Is(err, ErrInvalidCode) || errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, ErrNotOnRoster) || errors.Is(err, ErrAlreadyAttempted)
}

// ValidationError reports malformed input per field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ResolutionError carries every dictation term that failed to resolve.
type ResolutionError struct {
	Problems []ticket.Problem
}

func (e *ResolutionError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return "dictation terms did not resolve: " + strings.Join(parts, "; ")
}

// Fields keys each problem by its "drugs[i]" position.
func (e *ResolutionError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Problems))
	for _, p := range e.Problems {
		fields[fmt.Sprintf("drugs[%d]", p.Index)] = p.String()
	}
	return fields
}
