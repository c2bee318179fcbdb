package remote

import (
	"encoding/json"
	"io"
)

// Job status values reported by the analysis backend.
const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// StartResponse acknowledges a start_analysis call.
type StartResponse struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// Status is the polled analysis state.
type Status struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
}

// Result is the final analysis payload.
type Result struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	FilePath string          `json:"file_path"`
}

// ChatResponse is the backend reply to a chat message.
type ChatResponse struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Action      string   `json:"action,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

// Artifact is a downloaded result file. Callers must close Body.
type Artifact struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
