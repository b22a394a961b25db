package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrUnableToProcess is wrapped by every failure that happens after an
// activity has been persisted.
var ErrUnableToProcess = errors.New("unable to process request")

// ValidationError reports a malformed activity. Nothing has been written
// when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// newValidationError converts validator errors into field messages keyed by
// the json field name.
func newValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}

// ProcessingError is a failure of one pipeline phase after the activity was saved.
type ProcessingError struct {
	Phase string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUnableToProcess, e.Phase, e.Err)
}

func (e *ProcessingError) Unwrap() []error {
	return []error{ErrUnableToProcess, e.Err}
}

// ConfigurationError reports an activity type missing from the registry
// after the activity was already accepted.
type ConfigurationError struct {
	ActivityType string
	Err          error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no configuration for activity type %s: %v", e.ActivityType, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
