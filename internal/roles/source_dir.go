package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/util"
)

// DirSource reads role records from <Dir>/*.json. A file's slug comes from
// its role name, or from the file name when the record has none.
type DirSource struct {
	Dir string
}

func (s *DirSource) Name() string { return TierLocal }

// Lookup returns the record whose slug matches.
func (s *DirSource) Lookup(ctx context.Context, slug string) (Record, error) {
	docs, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.slug == slug {
			return d.record, nil
		}
	}
	return nil, ErrNoRecord
}

// List enumerates every readable record, sorted by file name.
func (s *DirSource) List(ctx context.Context) ([]Entry, error) {
	docs, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, Entry{Slug: d.slug, Role: RoleName(d.record)})
	}
	return out, nil
}

type dirDoc struct {
	slug   string
	record Record
}

func (s *DirSource) scan(ctx context.Context) ([]dirDoc, error) {
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob roles dir: %w", err)
	}
	if _, err := os.Stat(s.Dir); err != nil {
		return nil, fmt.Errorf("roles dir: %w", err)
	}
	sort.Strings(paths)

	docs := make([]dirDoc, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			telemetry.Warn("roles.dir_read_failed", map[string]any{"path": path, "error": err})
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
			telemetry.Warn("roles.dir_parse_failed", map[string]any{"path": path, "error": err})
			continue
		}
		name := RoleName(rec)
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			rec["role"] = name
		}
		docs = append(docs, dirDoc{slug: util.Slugify(name), record: rec})
	}
	return docs, nil
}

// Records returns every readable record keyed by slug.
func (s *DirSource) Records(ctx context.Context) (map[string]Record, error) {
	docs, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(docs))
	for _, d := range docs {
		out[d.slug] = d.record
	}
	return out, nil
}
