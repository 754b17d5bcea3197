package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data renderers use to customise output
// without changing the page.
type RenderOptions struct {
	// Values overrides the field defaults of the form model, keyed by field
	// name. The HTTP editor uses it to re-render a rejected draft.
	Values map[string]any
	// Errors holds inline validation messages keyed by field name.
	Errors map[string][]string
	// FormErrors are messages not tied to a field (store conflicts and the
	// like).
	FormErrors []string
	// HiddenFields are emitted as hidden inputs inside the form (revision,
	// CSRF token).
	HiddenFields map[string]string
	// Theme carries the resolved theme tokens, partials and asset resolver.
	Theme *theme.RendererConfig
	// Locale and Translator localise labels; see LocalizeFormModel.
	Locale     string
	Translator Translator
}
