package service

import (
	"errors"
	"fmt"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrOAuthDisabled      = errors.New("google sign-in is not configured")
	ErrInvalidOAuthState  = errors.New("invalid oauth state")
	ErrInvalidFileType    = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
)

// Violation is one failed constraint on an input field
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every constraint an input violated
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	v := e.Violations[0]
	if len(e.Violations) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", v.Field, v.Rule)
	}
	return fmt.Sprintf("validation failed: %s: %s (and %d more)", v.Field, v.Rule, len(e.Violations)-1)
}

// GenerationError means the model call failed or returned unusable output.
// Callers may retry the same request.
type GenerationError struct {
	// Empty is set when the model answered but produced no plan entries
	Empty bool
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Empty {
		return "generation returned no entries"
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
