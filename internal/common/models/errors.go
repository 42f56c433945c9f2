package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every ValidationError through errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports a malformed value object or request parameter
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrModelNotFound is matched by every ModelNotFoundError through errors.Is
var ErrModelNotFound = errors.New("required model not found")

// ModelNotFoundError signals that a model required to perform an action is missing
type ModelNotFoundError struct {
	Model string
	IDs   []string
}

func NewModelNotFoundError(model string, ids ...string) *ModelNotFoundError {
	return &ModelNotFoundError{Model: model, IDs: ids}
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("no query results for model [%s] %s", e.Model, strings.Join(e.IDs, ", "))
}

func (e *ModelNotFoundError) Is(target error) bool {
	return target == ErrModelNotFound
}
