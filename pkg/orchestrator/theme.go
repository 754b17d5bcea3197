package orchestrator

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelsheet/pkg/renderers/vanilla"
)

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// renderers receive a resolved RendererConfig.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeProvider sets the selector together with the theme and variant used
// when a request names none.
func WithThemeProvider(selector theme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.defaultTheme = strings.TrimSpace(name)
		o.defaultThemeVariant = strings.TrimSpace(variant)
	}
}

// WithThemeFallbacks replaces the partials used when a theme does not
// override them.
func WithThemeFallbacks(partials map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = cloneStrings(partials)
	}
}

func defaultThemeFallbacks() map[string]string {
	return map[string]string{
		vanilla.PagePartial: vanilla.PageTemplate,
	}
}

func (o *Orchestrator) resolveTheme(req Request) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	name := strings.TrimSpace(req.ThemeName)
	if name == "" {
		name = o.defaultTheme
	}
	variant := strings.TrimSpace(req.ThemeVariant)
	if variant == "" {
		variant = o.defaultThemeVariant
	}

	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, nil
	}
	cfg := rendererConfig(selection, o.themeFallbacks)
	return &cfg, nil
}

// rendererConfig flattens a manifest and its selected variant. Variant
// tokens, templates and asset files override the base ones; tokens are also
// exposed as CSS custom properties.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) theme.RendererConfig {
	manifest := selection.Manifest

	tokens := cloneStrings(manifest.Tokens)
	partials := cloneStrings(fallbacks)
	files := cloneStrings(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	for key, value := range manifest.Templates {
		partials = setString(partials, key, value)
	}
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens = setString(tokens, key, value)
		}
		for key, value := range variant.Templates {
			partials = setString(partials, key, value)
		}
		for key, value := range variant.Assets.Files {
			files = setString(files, key, value)
		}
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}
}

// assetResolver maps logical asset keys to URLs. Unknown keys resolve under
// the prefix as-is, or to "" when there is no prefix.
func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(prefix, "/")
	return func(key string) string {
		file, ok := files[key]
		if !ok {
			if prefix == "" {
				return ""
			}
			file = key
		}
		if prefix == "" || strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}
}

func cloneStrings(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func setString(dst map[string]string, key, value string) map[string]string {
	if dst == nil {
		dst = make(map[string]string)
	}
	dst[key] = value
	return dst
}
