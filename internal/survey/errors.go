package survey

import (
	"errors"
	"fmt"
)

// ErrAbsent reports that a table family genuinely does not exist for a
// cycle. Absence is an expected outcome, never retried and never fatal.
var ErrAbsent = errors.New("table absent for cycle")

// TransientError wraps a retryable failure such as a network error or
// timeout. The fetch loop retries these up to its bound; anything else
// passes through untouched.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient %s failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
