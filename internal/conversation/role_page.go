package conversation

import (
	"context"
	"errors"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/imagery"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/roles"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// PageState is the render state of a role page.
type PageState string

const (
	PageReady    PageState = "ready"
	PageNotFound PageState = "not_found"
	PageError    PageState = "error"
)

// RolePage is what a role detail view renders. Image load failures are
// remembered for the life of the page.
type RolePage struct {
	State   PageState
	Slug    string
	Content roles.RoleContent
	Source  string
	Message string

	images *imagery.View
}

// ImageFailed records that the displayed local image could not be loaded and
// returns the reference to show instead. An empty result means placeholder.
func (p *RolePage) ImageFailed() string {
	if p.images == nil {
		p.images = imagery.NewView()
	}
	p.images.MarkFailed(p.Content.ImageRef)
	p.Content.ImageURL = p.images.Resolve(p.Content.ImageRef, p.Content.ImageQuery)
	return p.Content.ImageURL
}

// ViewRole resolves slug into a page. A role missing from every tier renders
// the not-found state; anything else that fails renders the error state.
func (s *Session) ViewRole(ctx context.Context, slug string) RolePage {
	page := RolePage{Slug: slug, images: imagery.NewView()}
	if s.Roles == nil {
		page.State = PageError
		page.Message = roleErrorMessage
		return page
	}
	content, prov, err := s.Roles.Resolve(ctx, slug)
	switch {
	case err == nil:
		page.State = PageReady
		page.Content = content.Present()
		page.Content.ImageURL = page.images.Resolve(page.Content.ImageRef, page.Content.ImageQuery)
		page.Source = prov.Source
	case errors.Is(err, roles.ErrNotFound):
		page.State = PageNotFound
		page.Message = roleNotFoundMessage
	default:
		telemetry.Warn("conversation.role_view_failed", map[string]any{"slug": slug, "error": err})
		page.State = PageError
		page.Message = roleErrorMessage
	}
	return page
}
