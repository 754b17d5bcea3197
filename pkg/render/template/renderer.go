package template

import (
	"io"
)

// TemplateRenderer is the seam HTML renderers execute templates through.
// Render accepts either a template name or inline template content; the
// output is returned and, when writers are supplied, written to each.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
