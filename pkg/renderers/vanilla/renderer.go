// Package vanilla renders property sheets as server-side HTML with no client
// script. Every view kind shares one pongo2 template; navigation between
// entities happens through small forms posting to the selection endpoint.
package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-modelsheet/pkg/render"
	rendertemplate "github.com/goliatone/go-modelsheet/pkg/render/template"
	gotemplate "github.com/goliatone/go-modelsheet/pkg/render/template/gotemplate"
)

const (
	// PageTemplate is the template every view renders through.
	PageTemplate = "sheet"
	// PagePartial lets a theme swap the page template.
	PagePartial = "sheet.page"
	// DefaultSelectionAction is where navigation forms post.
	DefaultSelectionAction = "/selection"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheets      []string
	inlineStyles     []string
	defaultStyles    bool
	policy           *bluemonday.Policy
	classes          map[string]string
	selectionAction  string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet links an external stylesheet from the page head.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(href); trimmed != "" {
			cfg.stylesheets = append(cfg.stylesheets, trimmed)
		}
	}
}

// WithInlineStyles embeds CSS in a style element.
func WithInlineStyles(css string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(css) != "" {
			cfg.inlineStyles = append(cfg.inlineStyles, css)
		}
	}
}

// WithDefaultStyles inlines the bundled stylesheet.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.defaultStyles = true
	}
}

// WithSanitizer replaces the policy applied to model descriptions.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithClasses overrides chrome classes by slot name.
func WithClasses(classes map[string]string) Option {
	return func(cfg *config) {
		for slot, class := range classes {
			cfg.classes[slot] = class
		}
	}
}

// WithSelectionAction changes where navigation forms post.
func WithSelectionAction(action string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(action); trimmed != "" {
			cfg.selectionAction = trimmed
		}
	}
}

type Renderer struct {
	templates       rendertemplate.TemplateRenderer
	stylesheets     []string
	inlineStyles    []string
	policy          *bluemonday.Policy
	classes         map[string]string
	selectionAction string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:      TemplatesFS(),
		classes:         DefaultClasses(),
		selectionAction: DefaultSelectionAction,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	inline := cfg.inlineStyles
	if cfg.defaultStyles {
		if css := defaultStylesheet(); css != "" {
			inline = append([]string{css}, inline...)
		}
	}

	return &Renderer{
		templates:       renderer,
		stylesheets:     cfg.stylesheets,
		inlineStyles:    inline,
		policy:          cfg.policy,
		classes:         cfg.classes,
		selectionAction: cfg.selectionAction,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := buildPage(page, opts, r.policy, r.classes, r.selectionAction)
	data.Stylesheets = append(data.Stylesheets, r.stylesheets...)
	data.InlineStyles = append(data.InlineStyles, r.inlineStyles...)

	templateName := PageTemplate
	if cfg := opts.Theme; cfg != nil {
		data.CSSVars = sortedCSSVars(cfg.CSSVars)
		if len(r.stylesheets) == 0 && cfg.AssetURL != nil {
			if href := cfg.AssetURL(StylesheetName); href != "" {
				data.Stylesheets = append(data.Stylesheets, href)
			}
		}
		if partial := strings.TrimSpace(cfg.Partials[PagePartial]); partial != "" {
			templateName = partial
		}
	}

	result, err := r.templates.RenderTemplate(templateName, map[string]any{
		"page": data,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
