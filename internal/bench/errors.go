package bench

import (
	"errors"
	"fmt"
)

var (
	ErrBusy      = errors.New("a benchmark is already running")
	ErrRunFailed = errors.New("benchmark run aborted")
)

// StepError names the battery step whose measurement failed.
type StepError struct {
	Operation string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
