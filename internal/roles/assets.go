package roles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// Asset is the locally hosted material for a role.
type Asset struct {
	PDFPath    string
	PDFURL     string
	ImageRef   string
	ImageQuery string
}

// AssetIndex finds local assets by slug.
type AssetIndex interface {
	Asset(ctx context.Context, slug string) (Asset, bool)
}

// MapAssets is a fixed in-memory AssetIndex.
type MapAssets map[string]Asset

func (m MapAssets) Asset(ctx context.Context, slug string) (Asset, bool) {
	a, ok := m[slug]
	return a, ok
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".webp"}

// DirAssets looks for <slug>.pdf and <slug>.{jpg,jpeg,png,webp} in Dir. PDFs
// are only advertised when they parse and have at least one page.
type DirAssets struct {
	Dir string
	// PDFURLPrefix is joined with "/<slug>/pdf"; defaults to "/api/roles".
	PDFURLPrefix string
	// ImageURLPrefix is joined with the image file name; defaults to "/assets".
	ImageURLPrefix string
}

func (d *DirAssets) Asset(ctx context.Context, slug string) (Asset, bool) {
	if strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		return Asset{}, false
	}
	var a Asset
	pdfPath := filepath.Join(d.Dir, slug+".pdf")
	if err := validatePDF(pdfPath); err == nil {
		a.PDFPath = pdfPath
		a.PDFURL = strings.TrimRight(orDefault(d.PDFURLPrefix, "/api/roles"), "/") + "/" + slug + "/pdf"
	} else if !os.IsNotExist(err) {
		telemetry.Warn("roles.asset_pdf_invalid", map[string]any{"slug": slug, "error": err})
	}
	for _, ext := range imageExts {
		name := slug + ext
		if info, err := os.Stat(filepath.Join(d.Dir, name)); err == nil && !info.IsDir() {
			a.ImageRef = strings.TrimRight(orDefault(d.ImageURLPrefix, "/assets"), "/") + "/" + name
			break
		}
	}
	if a.PDFPath == "" && a.ImageRef == "" {
		return Asset{}, false
	}
	a.ImageQuery = strings.ReplaceAll(slug, "-", " ")
	return a, true
}

// HasPDF reports whether a valid PDF exists for slug.
func (d *DirAssets) HasPDF(ctx context.Context, slug string) bool {
	a, ok := d.Asset(ctx, slug)
	return ok && a.PDFPath != ""
}

func validatePDF(path string) (err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return statErr
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	f, reader, openErr := pdf.Open(path)
	if openErr != nil {
		return fmt.Errorf("open pdf: %w", openErr)
	}
	defer f.Close()
	if reader.NumPage() < 1 {
		return fmt.Errorf("pdf has no pages")
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
