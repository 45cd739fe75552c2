package analyzer

import (
	"errors"

	"github.com/imyousuf/codegauge/internal/parser"
)

// ValidationError reports input that fails a structural precondition.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// ParseError reports source text that is not valid under the grammar.
type ParseError = parser.ParseError

// IsInputError reports whether err is caused by bad caller input
// (a *ValidationError or a *ParseError anywhere in its chain).
func IsInputError(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}
	var perr *ParseError
	return errors.As(err, &perr)
}
