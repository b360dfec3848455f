package app

import (
	"errors"
	"fmt"
)

// Empty-result reason codes. A run that fetched nothing and a run whose every
// point was dropped by the ground filter show the same symptom (zero rows)
// but must stay distinguishable for callers.
const (
	ReasonNoData         = "no-data"
	ReasonGroundFiltered = "ground-filtered"
)

// ConfigurationError - invalid or missing construction parameters.
// Fatal to the pipeline invocation, never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// EmptyResultError - the pipeline produced zero rows. Not a crash: callers
// are expected to short-circuit cleanly on it.
type EmptyResultError struct {
	Reason string
}

func (e *EmptyResultError) Error() string {
	return "empty result: " + e.Reason
}

// MissingColumnError - a required field was absent from the input of a
// processing step. Indicates a caller contract violation, not bad data.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// IsEmptyResult reports whether err is an EmptyResultError and returns its
// reason code.
func IsEmptyResult(err error) (string, bool) {
	var empty *EmptyResultError
	if errors.As(err, &empty) {
		return empty.Reason, true
	}
	return "", false
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var conf *ConfigurationError
	return errors.As(err, &conf)
}
