package roles

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// CachedSource keeps successful lookups of Inner in Redis for TTL. Redis
// failures fall through to Inner.
type CachedSource struct {
	Inner  Source
	Redis  *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s *CachedSource) Name() string { return s.Inner.Name() }

func (s *CachedSource) Lookup(ctx context.Context, slug string) (Record, error) {
	key := s.key(slug)
	raw, err := s.Redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rec Record
		if jsonErr := json.Unmarshal(raw, &rec); jsonErr == nil && rec != nil {
			return rec, nil
		}
		telemetry.Warn("roles.cache_corrupt", map[string]any{"key": key})
	case !errors.Is(err, redis.Nil):
		telemetry.Warn("roles.cache_get_failed", map[string]any{"key": key, "error": err})
	}

	rec, err := s.Inner.Lookup(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := Validate(s.Inner.Name(), rec); err != nil {
		return rec, nil
	}
	if payload, err := json.Marshal(rec); err == nil {
		if err := s.Redis.Set(ctx, key, payload, s.ttl()).Err(); err != nil {
			telemetry.Warn("roles.cache_set_failed", map[string]any{"key": key, "error": err})
		}
	}
	return rec, nil
}

func (s *CachedSource) key(slug string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "roles"
	}
	return prefix + ":" + s.Inner.Name() + ":" + slug
}

func (s *CachedSource) ttl() time.Duration {
	if s.TTL <= 0 {
		return 10 * time.Minute
	}
	return s.TTL
}
