// Package cascade evaluates an ordered list of fallible steps and keeps the
// first success together with a record of every attempt made.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrExhausted is returned when every step failed.
var ErrExhausted = errors.New("all steps failed")

// Outcome of a single attempt.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// Attempt records which step ran and how it ended.
type Attempt struct {
	SourceID string  `json:"sourceId"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

// Step is one named strategy. A nil Run counts as a failed, unconfigured step.
type Step[T any] struct {
	ID  string
	Run func(ctx context.Context) (T, error)
}

// First runs steps in order and returns the value of the first one that
// succeeds. Later steps are not evaluated once a step succeeds. A failed step is
// never retried.
func First[T any](ctx context.Context, steps ...Step[T]) (T, []Attempt, error) {
	var zero T
	attempts := make([]Attempt, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return zero, attempts, err
		}
		if step.Run == nil {
			attempts = append(attempts, Attempt{SourceID: step.ID, Outcome: Failure, Reason: "not configured"})
			continue
		}
		value, err := step.Run(ctx)
		if err != nil {
			attempts = append(attempts, Attempt{SourceID: step.ID, Outcome: Failure, Reason: err.Error()})
			continue
		}
		attempts = append(attempts, Attempt{SourceID: step.ID, Outcome: Success})
		return value, attempts, nil
	}
	return zero, attempts, ErrExhausted
}

// Winner returns the source of the successful attempt, or "" if none succeeded.
func Winner(attempts []Attempt) string {
	for _, a := range attempts {
		if a.Outcome == Success {
			return a.SourceID
		}
	}
	return ""
}

// Describe renders attempts as "id: reason" pairs for error messages.
func Describe(attempts []Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.Outcome == Success {
			parts = append(parts, fmt.Sprintf("%s: ok", a.SourceID))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", a.SourceID, a.Reason))
	}
	return strings.Join(parts, "; ")
}
