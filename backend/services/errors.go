package services

import (
	"errors"
	"fmt"
)

// Base kinds, matched with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
)

// EngineError carries the failing operation and its kind.
type EngineError struct {
	Op      string // e.g. "progress.Update"
	Kind    error
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *EngineError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

func (e *EngineError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

func newError(op string, kind error, message string) *EngineError {
	return &EngineError{Op: op, Kind: kind, Message: message}
}

var (
	ErrProgressNotFound     = newError("progress.Find", ErrNotFound, "progress not found")
	ErrLearnerNotFound      = newError("learner.Find", ErrNotFound, "learner not found")
	ErrNotificationNotFound = newError("notification.Find", ErrNotFound, "notification not found")
	// A missing module at creation time is an invalid request, not a missing resource.
	ErrModuleNotFound = newError("progress.Create", ErrInvalidOperation, "module not found")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation) || errors.Is(err, ErrConflict)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
