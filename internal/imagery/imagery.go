// Package imagery picks the image reference a role page should display.
package imagery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/cascade"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/util"
)

const (
	// ExternalBase is the stock image endpoint used when no local asset loads.
	ExternalBase = "https://source.unsplash.com/featured/800x450"
	signatureMod = 10_000_000

	SourceLocal    = "local"
	SourceExternal = "external"
)

var (
	errNoLocal    = errors.New("no local reference")
	errLocalBroke = errors.New("local reference failed to load")
	errNoQuery    = errors.New("no image query")
)

// Signature is the stable cache-busting number for a query.
func Signature(query string) int64 {
	return util.StableSignature(query, signatureMod)
}

// ExternalURL builds the external reference for query, or "" for an empty query.
func ExternalURL(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	return fmt.Sprintf("%s?%s&sig=%d", ExternalBase, url.QueryEscape(q), Signature(q))
}

// View tracks load failures for one rendered page. Failures are never
// forgotten for the life of the view.
type View struct {
	mu     sync.RWMutex
	failed map[string]struct{}
}

// NewView returns a view with no recorded failures.
func NewView() *View {
	return &View{failed: make(map[string]struct{})}
}

// MarkFailed records that localRef could not be loaded.
func (v *View) MarkFailed(localRef string) {
	if localRef == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failed[localRef] = struct{}{}
}

// Failed reports whether localRef has been marked failed in this view.
func (v *View) Failed(localRef string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.failed[localRef]
	return ok
}

// Resolve returns the reference to render. An empty result means the caller
// should show a placeholder.
func (v *View) Resolve(localRef, query string) string {
	ref, _ := v.ResolveWithSource(localRef, query)
	return ref
}

// ResolveWithSource is Resolve plus the name of the strategy that produced the
// reference ("" when none did).
func (v *View) ResolveWithSource(localRef, query string) (string, string) {
	ref, attempts, err := cascade.First(context.Background(),
		cascade.Step[string]{ID: SourceLocal, Run: func(context.Context) (string, error) {
			switch {
			case strings.TrimSpace(localRef) == "":
				return "", errNoLocal
			case v.Failed(localRef):
				return "", errLocalBroke
			}
			return localRef, nil
		}},
		cascade.Step[string]{ID: SourceExternal, Run: func(context.Context) (string, error) {
			u := ExternalURL(query)
			if u == "" {
				return "", errNoQuery
			}
			return u, nil
		}},
	)
	if err != nil {
		return "", ""
	}
	return ref, cascade.Winner(attempts)
}
