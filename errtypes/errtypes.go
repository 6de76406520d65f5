// Package errtypes defines the failure classes of a training run.
//
// Every class is fatal: callers propagate the error and abort the run. Use
// errors.Is with the sentinels to classify a returned error.
package errtypes

import "github.com/pkg/errors"

var (
	// ErrConfiguration marks invalid hyperparameters or a structurally inconsistent model.
	ErrConfiguration = errors.New("configuration error")

	// ErrShape marks tensor dimensions that do not match what a layer expects.
	ErrShape = errors.New("shape error")

	// ErrDataRange marks a label outside the valid class range.
	ErrDataRange = errors.New("data range error")

	// ErrResource marks a compute device failure or exhaustion.
	ErrResource = errors.New("resource error")

	// ErrConsumed marks a gradient set that was already applied by an optimizer step.
	ErrConsumed = errors.New("gradients already consumed")
)

// Configuration returns a configuration error with a formatted message.
func Configuration(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// Shape returns a shape error with a formatted message.
func Shape(format string, args ...interface{}) error {
	return errors.Wrapf(ErrShape, format, args...)
}

// DataRange returns a data range error with a formatted message.
func DataRange(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDataRange, format, args...)
}

// Resource wraps a device level failure cause into a resource error.
func Resource(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return errors.Wrapf(ErrResource, format, args...)
	}
	return errors.Wrapf(&resourceError{cause: cause}, format, args...)
}

type resourceError struct {
	cause error
}

func (e *resourceError) Error() string {
	return ErrResource.Error() + ": " + e.cause.Error()
}

func (e *resourceError) Is(target error) bool {
	return target == ErrResource
}

func (e *resourceError) Unwrap() error {
	return e.cause
}
