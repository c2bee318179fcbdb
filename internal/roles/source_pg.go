package roles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/util"
)

// PGSource serves role records stored as JSONB in the roles table.
type PGSource struct {
	DB *sql.DB
}

func (s *PGSource) Name() string { return TierLocal }

// Lookup loads the document stored under slug.
func (s *PGSource) Lookup(ctx context.Context, slug string) (Record, error) {
	const query = `SELECT document FROM roles WHERE slug = $1`
	var raw []byte
	if err := s.DB.QueryRowContext(ctx, query, slug).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("select role: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &SchemaError{Source: TierLocal, Issues: []string{err.Error()}}
	}
	return rec, nil
}

// List enumerates stored roles ordered by slug.
func (s *PGSource) List(ctx context.Context) ([]Entry, error) {
	const query = `SELECT slug, role FROM roles ORDER BY slug`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Slug, &e.Role); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Upsert stores rec under the slug derived from its role name and returns it.
func (s *PGSource) Upsert(ctx context.Context, rec Record) (string, error) {
	name := RoleName(rec)
	if name == "" {
		return "", &SchemaError{Source: TierLocal, Issues: []string{"record has no role name"}}
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	slug := util.Slugify(name)
	const query = `
INSERT INTO roles (slug, role, document, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (slug) DO UPDATE SET role = EXCLUDED.role, document = EXCLUDED.document, updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, slug, name, doc); err != nil {
		return "", fmt.Errorf("upsert role: %w", err)
	}
	return slug, nil
}
