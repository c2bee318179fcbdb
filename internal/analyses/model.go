package analyses

import (
	"context"
	"encoding/json"
	"time"
)

const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Run is one execution of the analysis pipeline.
type Run struct {
	ID          string     `json:"id"`
	Skills      []string   `json:"skills"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Message     string     `json:"message"`
	Error       string     `json:"error,omitempty"`
	ResultKey   string     `json:"resultKey,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ProgressFunc reports a pipeline stage.
type ProgressFunc func(progress int, message string)

// Pipeline produces the analysis payload for a set of skills. How the payload
// is computed is opaque to the runner.
type Pipeline interface {
	Run(ctx context.Context, skills []string, report ProgressFunc) (json.RawMessage, error)
}

// PipelineFunc adapts a function to Pipeline.
type PipelineFunc func(ctx context.Context, skills []string, report ProgressFunc) (json.RawMessage, error)

func (f PipelineFunc) Run(ctx context.Context, skills []string, report ProgressFunc) (json.RawMessage, error) {
	return f(ctx, skills, report)
}
