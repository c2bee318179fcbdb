package roles

import (
	"context"
	"errors"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/remote"
)

// RoleFetcher is the remote role API.
type RoleFetcher interface {
	RoleBySlug(ctx context.Context, slug string) (map[string]any, error)
}

// RemoteSource adapts a RoleFetcher to a Source.
type RemoteSource struct {
	Fetcher RoleFetcher
}

func (s *RemoteSource) Name() string { return TierRemote }

func (s *RemoteSource) Lookup(ctx context.Context, slug string) (Record, error) {
	rec, err := s.Fetcher.RoleBySlug(ctx, slug)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
