package render

import (
	"context"

	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/sheet"
)

// Renderer turns a property sheet page into bytes (HTML, terminal prompts,
// JSON and so on).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}

// Page is one rendered property sheet. Form is set only for editable views
// (a concept property); every other view renders read-only.
type Page struct {
	View   sheet.View
	Form   *model.FormModel
	Action string
	Method string
}

// Editable reports whether the page carries a form.
func (p Page) Editable() bool {
	return p.Form != nil && p.View.Kind == sheet.ViewConceptProperty
}
