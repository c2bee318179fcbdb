package roles

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/server/respond"
)

// Handler serves the role browser endpoints.
type Handler struct {
	Resolver *Resolver
	Assets   *DirAssets
}

// NewHandler constructs a Handler.
func NewHandler(resolver *Resolver, assets *DirAssets) *Handler {
	return &Handler{Resolver: resolver, Assets: assets}
}

// RegisterRoutes attaches role routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/roles", h.listRoles)
	rg.GET("/roles/:slug", h.getRole)
	rg.GET("/roles/:slug/pdf", h.getPDF)
}

type roleSummary struct {
	Slug   string `json:"slug"`
	Role   string `json:"role"`
	HasPDF bool   `json:"has_pdf"`
}

func (h *Handler) listRoles(c *gin.Context) {
	ctx := c.Request.Context()
	entries, err := h.Resolver.Catalog(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list roles", nil)
		return
	}
	out := make([]roleSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, roleSummary{
			Slug:   e.Slug,
			Role:   e.Role,
			HasPDF: h.Assets != nil && h.Assets.HasPDF(ctx, e.Slug),
		})
	}
	respond.OK(c, gin.H{"roles": out})
}

func (h *Handler) getRole(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "slug is required", nil)
		return
	}

	content, prov, err := h.Resolver.Resolve(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "role_not_found", "Role not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve role", nil)
		return
	}

	c.Header("X-Role-Source", prov.Source)
	respond.OK(c, content.Present())
}

func (h *Handler) getPDF(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if h.Assets == nil {
		respond.Error(c, http.StatusNotFound, "pdf_not_found", "PDF not found", nil)
		return
	}
	asset, ok := h.Assets.Asset(c.Request.Context(), slug)
	if !ok || asset.PDFPath == "" {
		respond.Error(c, http.StatusNotFound, "pdf_not_found", "PDF not found", nil)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(asset.PDFPath, slug+".pdf")
}
