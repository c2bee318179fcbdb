package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is wrapped when the backend refuses a start because a
	// task is already in flight.
	ErrAlreadyRunning = errors.New("analysis already running")
	// ErrNotFound is wrapped when the backend answers 404.
	ErrNotFound = errors.New("not found")
)

// NetworkError reports a transport failure or a non-success response.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a response whose shape was not recognized.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid payload: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
