package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/renderers/vanilla"
	"github.com/goliatone/go-modelsheet/pkg/sheet"
	"github.com/goliatone/go-modelsheet/pkg/store"
	"github.com/goliatone/go-modelsheet/pkg/widgets"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithReader supplies the store the selection is read from when a request
// carries none.
func WithReader(reader store.Reader) Option {
	return func(o *Orchestrator) {
		o.reader = reader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithWidgetRegistry replaces the built-in widget registry. Pass nil to skip
// widget resolution.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgets = registry
		o.widgetsSpecified = true
	}
}

// WithTransformer registers a Transformer that mutates form models after
// building but before decorators run.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the form model after
// widget resolution.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from store selection to rendered
// output.
type Orchestrator struct {
	reader           store.Reader
	registry         *render.Registry
	defaultRenderer  string
	widgets          *widgets.Registry
	widgetsSpecified bool
	transformer      Transformer
	decorators       []model.Decorator
	logger           *zap.Logger

	themeSelector       theme.ThemeSelector
	defaultTheme        string
	defaultThemeVariant string
	themeFallbacks      map[string]string

	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Selection overrides the store selection when set.
	Selection *metamodel.Selection

	// Draft seeds the form instead of the stored property. The HTTP editor
	// passes the rejected draft back so the user keeps their input.
	Draft *propertyform.Draft

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// ThemeName and ThemeVariant pick the theme; empty values use the
	// orchestrator defaults.
	ThemeName    string
	ThemeVariant string

	// Action and Method override where the form posts.
	Action string
	Method string

	// RenderOptions carries per-request values, errors and hidden fields.
	RenderOptions render.RenderOptions
}

// Result is the rendered output with the page it was produced from.
type Result struct {
	Page        render.Page
	ContentType string
	Body        []byte
}

// Generate resolves the view, builds the form for editable views and renders
// through the selected renderer.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	result, err := o.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

// Render is Generate returning the page and content type alongside the body.
func (o *Orchestrator) Render(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := o.initialiseErr; err != nil {
		return Result{}, err
	}

	page, err := o.BuildPage(ctx, req)
	if err != nil {
		return Result{}, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Result{}, err
	}

	opts := req.RenderOptions
	cfg, err := o.resolveTheme(req)
	if err != nil {
		return Result{}, err
	}
	if cfg != nil {
		opts.Theme = cfg
	}

	output, err := renderer.Render(ctx, page, opts)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: render output: %w", err)
	}
	o.logger.Debug("rendered property sheet",
		zap.String("renderer", renderer.Name()),
		zap.String("view", string(page.View.Kind)),
		zap.String("namespace", page.View.NamespaceID()),
		zap.String("declaration", page.View.DeclarationName()),
		zap.String("property", page.View.PropertyName()),
		zap.Int("bytes", len(output)),
	)
	return Result{Page: page, ContentType: renderer.ContentType(), Body: output}, nil
}

// BuildPage selects the view and, for concept properties, lays out the
// decorated edit form.
func (o *Orchestrator) BuildPage(ctx context.Context, req Request) (render.Page, error) {
	var sel metamodel.Selection
	switch {
	case req.Selection != nil:
		sel = *req.Selection
	case o.reader != nil:
		sel = o.reader.Selection()
	}

	view := sheet.Select(sel)
	page := render.Page{View: view, Action: req.Action, Method: req.Method}
	if view.Kind != sheet.ViewConceptProperty {
		return page, nil
	}

	draft := propertyform.DraftFrom(view.Property)
	if req.Draft != nil {
		draft = *req.Draft
	}
	form := propertyform.BuildFormModel(view.NamespaceID(), view.DeclarationName(), view.Property, draft)

	if err := o.applyTransformer(ctx, &form); err != nil {
		return render.Page{}, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return render.Page{}, err
	}
	page.Form = &form
	return page, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	if form == nil {
		return nil
	}
	decorators := o.decorators
	if o.widgets != nil {
		decorators = append([]model.Decorator{o.widgets}, decorators...)
	}
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if !o.widgetsSpecified && o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}

	o.defaultsApplied = true
}
