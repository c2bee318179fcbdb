package analyses

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyRunning = errors.New("analysis is already running")
	ErrPending        = errors.New("analysis has not completed")
	ErrFailed         = errors.New("analysis failed")
	ErrNoArtifact     = errors.New("analysis has no stored result")
)

const (
	ErrorCodeRunning  = "analysis_running"
	ErrorCodePending  = "analysis_pending"
	ErrorCodeFailed   = "analysis_failed"
	ErrorCodeNotFound = "not_found"
	ErrorCodeInternal = "internal_error"
)
