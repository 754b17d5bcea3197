// Package modelsheet renders property sheets for namespaced metamodels and
// applies edited property drafts back to a model store.
//
// The root package is a thin entry point over the pkg/ packages: load model
// files, put them in a store, point the selection at an entity and render.
//
//	st, err := modelsheet.OpenStore("models/hr.json")
//	if err != nil { ... }
//	_ = st.Select(store.SelectionKey{Namespace: "org.acme.hr@1.0.0", Declaration: "Employee"})
//	html, err := modelsheet.RenderHTML(ctx, st)
package modelsheet

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelsheet/pkg/orchestrator"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// SelectionKey addresses a namespace, declaration or property by name.
type SelectionKey = store.SelectionKey

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// RenderHTML renders the sheet for the reader's current selection with the
// vanilla renderer.
func RenderHTML(ctx context.Context, reader store.Reader, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(append([]orchestrator.Option{orchestrator.WithReader(reader)}, options...)...)
	return gen.Generate(ctx, orchestrator.Request{})
}

// RenderSelection renders the entity addressed by key without moving the
// store selection.
func RenderSelection(ctx context.Context, st *store.Memory, key SelectionKey, options ...orchestrator.Option) ([]byte, error) {
	scratch := store.NewMemory(st.Models()...)
	if err := scratch.Select(key); err != nil {
		return nil, err
	}
	return RenderHTML(ctx, scratch, options...)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemes registers manifests with a ManifestSelector and selects the
// named theme and variant by default.
func WithThemes(name, variant string, manifests ...*theme.Manifest) (orchestrator.Option, error) {
	selector, err := orchestrator.NewManifestSelector(manifests...)
	if err != nil {
		return nil, err
	}
	return orchestrator.WithThemeProvider(selector, name, variant), nil
}
