package intake

import (
	"errors"
	"strings"

	"StructFlow/internal/validate"
)

var (
	ErrNoJSON = errors.New("no JSON object found in text")
	// ErrExtractionFailed means the document carried a reason instead of parameters.
	ErrExtractionFailed = errors.New("parameter extraction failed")
)

// ValidationFailure is returned when the merged schema violates parameter ranges.
type ValidationFailure struct {
	Outcome validate.Outcome
}

func (e *ValidationFailure) Error() string {
	return "validation failed: " + strings.Join(e.Outcome.Errors, ", ")
}
