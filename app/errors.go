package app

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal failure modes. Everything else is contained inside the loop as
// feedback and never reaches a job's terminal state.
var (
	// ErrEngineUnavailable marks an objective evaluation that could not be
	// produced; the whole analyzePosition call fails with it.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrIterationLimit marks an agent run that hit its iteration ceiling
	// without a valid final payload.
	ErrIterationLimit = errors.New("iteration limit exceeded")

	// ErrModelCommunication marks an upstream model call that kept failing
	// after the retry budget was spent.
	ErrModelCommunication = errors.New("model communication failed")
)

// ValidationError carries one or more problems with user- or model-supplied
// data. Raised from a final-payload check it becomes corrective feedback;
// raised from request input it is fatal for the request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0]
	}
	return fmt.Sprintf("%d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Problems: []string{fmt.Sprintf(format, args...)}}
}
