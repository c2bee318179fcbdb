package roles

import (
	"errors"
	"fmt"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/cascade"
)

var (
	// ErrNotFound matches a NotFoundError.
	ErrNotFound = errors.New("role not found")
	// ErrNoRecord is returned by a source that has nothing for the slug.
	ErrNoRecord = errors.New("no record for slug")
)

// NotFoundError is returned when no tier could supply the role.
type NotFoundError struct {
	Slug     string
	Attempts []cascade.Attempt
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("role %q not found (%s)", e.Slug, cascade.Describe(e.Attempts))
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SchemaError reports a record that does not have a recognizable role shape.
type SchemaError struct {
	Source string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: malformed role record: %v", e.Source, e.Issues)
}
