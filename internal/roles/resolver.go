// Package roles resolves role pages from an ordered chain of sources.
package roles

import (
	"context"
	"errors"
	"sort"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/cascade"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/imagery"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/metrics"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// Resolver tries Local, then Remote, then Static. A nil tier is skipped. The
// first tier that returns a valid record supplies the whole result.
type Resolver struct {
	Local  Source
	Remote Source
	Static Source
	Assets AssetIndex
}

// Resolve returns the role page for slug. When every tier fails the error is
// a *NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, slug string) (RoleContent, Provenance, error) {
	content, attempts, err := cascade.First(ctx,
		r.step(TierLocal, r.Local, slug),
		r.step(TierRemote, r.Remote, slug),
		r.step(TierStatic, r.Static, slug),
	)
	for _, a := range attempts {
		metrics.IncRoleResolution(a.SourceID, string(a.Outcome))
	}
	prov := Provenance{Source: cascade.Winner(attempts), Attempts: attempts}

	if err != nil {
		if errors.Is(err, cascade.ErrExhausted) {
			telemetry.Info("roles.not_found", map[string]any{"slug": slug, "attempts": cascade.Describe(attempts)})
			return RoleContent{}, prov, &NotFoundError{Slug: slug, Attempts: attempts}
		}
		return RoleContent{}, prov, err
	}

	if r.Assets != nil {
		if asset, ok := r.Assets.Asset(ctx, slug); ok {
			if asset.PDFURL != "" {
				content.PDFURL = asset.PDFURL
			}
			if asset.ImageQuery != "" {
				content.ImageQuery = asset.ImageQuery
			}
			if asset.ImageRef != "" {
				content.ImageRef = asset.ImageRef
			}
		}
	}
	content.ImageURL = imagery.NewView().Resolve(content.ImageRef, content.ImageQuery)

	telemetry.Info("roles.resolved", map[string]any{"slug": slug, "source": prov.Source})
	return content, prov, nil
}

func (r *Resolver) step(id string, src Source, slug string) cascade.Step[RoleContent] {
	if src == nil {
		return cascade.Step[RoleContent]{ID: id}
	}
	return cascade.Step[RoleContent]{ID: id, Run: func(ctx context.Context) (RoleContent, error) {
		rec, err := src.Lookup(ctx, slug)
		if err != nil {
			return RoleContent{}, err
		}
		if err := Validate(id, rec); err != nil {
			return RoleContent{}, err
		}
		return Normalize(rec), nil
	}}
}

// Catalog lists roles from the first Lister among the tiers.
func (r *Resolver) Catalog(ctx context.Context) ([]Entry, error) {
	for _, src := range []Source{r.Local, r.Static} {
		if l, ok := src.(Lister); ok {
			entries, err := l.List(ctx)
			if err != nil {
				telemetry.Warn("roles.catalog_failed", map[string]any{"source": src.Name(), "error": err})
				continue
			}
			if len(entries) > 0 {
				return entries, nil
			}
		}
	}
	return []Entry{}, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
}
