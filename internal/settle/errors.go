package settle

import (
	"errors"
	"fmt"
)

var (
	ErrMeasurement         = errors.New("measurement failed")
	ErrPlatformUnsupported = errors.New("no frame source available")
	ErrFramesStopped       = errors.New("frame clock stopped")
)

// MeasurementError wraps a failure of the measured mutation itself.
type MeasurementError struct {
	Err error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("mutation failed: %v", e.Err)
}

func (e *MeasurementError) Unwrap() []error {
	return []error{ErrMeasurement, e.Err}
}
