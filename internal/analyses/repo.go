package analyses

import "context"

// Repo defines persistence operations for analysis runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	Update(ctx context.Context, run Run) error
	GetByID(ctx context.Context, id string) (Run, error)
	// Latest returns the most recently created run or ErrNotFound.
	Latest(ctx context.Context) (Run, error)
}
