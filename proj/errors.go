package proj

import (
	"fmt"

	"github.com/pkg/errors"
)

// ArgumentError is returned when a function that requires finite numbers
// receives NaN or ±Inf.
type ArgumentError struct {
	Func   string
	Values []float64
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("illegal argument to %s: %v", e.Func, e.Values)
}

func newArgumentError(fn string, values ...float64) error {
	return errors.WithStack(&ArgumentError{Func: fn, Values: values})
}

// CheckFinite returns an ArgumentError for fn if any of values is NaN or ±Inf.
func CheckFinite(fn string, values ...float64) error {
	if isFinite(values...) {
		return nil
	}
	return newArgumentError(fn, values...)
}

// IsArgumentError reports whether err was caused by an ArgumentError.
func IsArgumentError(err error) bool {
	_, ok := errors.Cause(err).(*ArgumentError)
	return ok
}
