package orchestrator

import "errors"

var (
	// ErrConflict is returned by Start while an analysis is already running.
	ErrConflict = errors.New("analysis already running")
	// ErrRemoteBusy accompanies ErrConflict when the backend refused the start
	// because it is busy with another analysis. No job is tracked locally.
	ErrRemoteBusy = errors.New("backend busy with another analysis")
	// ErrTimeout is the reason recorded when polling gives up.
	ErrTimeout = errors.New("timeout")
	// ErrCancelled is the reason recorded by Stop.
	ErrCancelled = errors.New("cancelled")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("orchestrator closed")
)
