// Package tui edits a property from the terminal. Prompts are driven through
// a PromptDriver (survey by default) and the collected draft is checked with
// the same rules the HTTP editor applies before it is serialized.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/sheet"
	"github.com/goliatone/go-modelsheet/pkg/widgets"
)

const defaultMaxRounds = 5

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxRounds         int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxRounds:    defaultMaxRounds,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prints read-only views and returns ErrReadOnly for them. Editable
// pages prompt for every writable field, re-prompting only the fields that
// were rejected, and return the accepted draft.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if !page.Editable() {
		if err := r.info(ctx, Describe(page.View)); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, page.View.Kind)
	}

	form := *page.Form
	form.Fields = append([]model.Field(nil), page.Form.Fields...)
	render.LocalizeFormModel(&form, opts.Locale, opts.Translator, nil)
	fields := editableFields(form.Fields, page.View.Property)

	if err := r.info(ctx, form.Summary+": "+page.View.DeclarationName()+"."+page.View.PropertyName()); err != nil {
		return nil, err
	}
	for _, field := range form.Fields {
		if field.ReadOnly {
			if err := r.info(ctx, fmt.Sprintf("%s: %v", label(field), field.Default)); err != nil {
				return nil, err
			}
		}
	}

	state := NewState(form, opts.Values, opts.Errors)
	if page.View.Property.Kind().IsReference() {
		delete(state.values, propertyform.FieldDefaultValue)
	}
	pending := fields
	for round := 0; round < r.maxRounds; round++ {
		for _, field := range pending {
			if err := r.promptField(ctx, field, state); err != nil {
				return nil, err
			}
		}

		draft := state.Draft()
		if r.submitTransformer != nil {
			var err error
			draft, err = r.submitTransformer(draft)
			if err != nil {
				return nil, fmt.Errorf("tui: submit transformer: %w", err)
			}
		}

		_, err := propertyform.MergeSubmission(page.View.Property, draft)
		if err == nil {
			return r.serialize(draft)
		}
		var fieldErrs propertyform.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		state.SetErrors(fieldErrs)
		pending = rejected(fields, fieldErrs)
		if len(pending) == 0 {
			return nil, err
		}
	}
	return nil, fmt.Errorf("tui: draft still invalid after %d rounds: %w", r.maxRounds, propertyform.FieldErrors(state.errors))
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	for _, message := range state.ErrorsFor(field.Name) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	if field.Type == model.FieldTypeBoolean {
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: label(field),
			Default: state.Bool(field.Name),
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		state.Set(field.Name, fmt.Sprint(answer))
		return nil
	}

	cfg := InputConfig{
		Message: label(field),
		Default: state.Value(field.Name),
		Help:    inputHelp(field),
	}
	if field.Required {
		cfg.Validator = func(value string) error {
			if strings.TrimSpace(value) == "" {
				return errors.New("required")
			}
			return nil
		}
	}
	answer, err := r.driver.Input(ctx, cfg)
	if err != nil {
		return err
	}
	state.Set(field.Name, answer)
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) serialize(draft propertyform.Draft) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(url.Values(draft.Values()).Encode()), nil
	case OutputFormatPrettyText:
		isArray := "false"
		if draft.IsArray != nil && *draft.IsArray {
			isArray = "true"
		}
		return []byte(fmt.Sprintf("name=%s\ndefaultValue=%s\nisArray=%s\n", draft.Name, draft.DefaultValue, isArray)), nil
	default:
		return json.Marshal(draft)
	}
}

// editableFields drops read-only fields and, for reference properties, any
// default field.
func editableFields(fields []model.Field, prop metamodel.Property) []model.Field {
	out := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		if field.ReadOnly {
			continue
		}
		if field.Name == propertyform.FieldDefaultValue && prop != nil && prop.Kind().IsReference() {
			continue
		}
		out = append(out, field)
	}
	return out
}

func rejected(fields []model.Field, errs propertyform.FieldErrors) []model.Field {
	var out []model.Field
	for _, field := range fields {
		if errs.Has(field.Name) {
			out = append(out, field)
		}
	}
	return out
}

func label(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func inputHelp(field model.Field) string {
	var hints []string
	if kind := field.Metadata[widgets.ValueKindKey]; kind != "" && kind != string(model.FieldTypeString) {
		hints = append(hints, "a "+kind+" value")
	}
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRulePattern:
			hints = append(hints, "matching "+rule.Params["pattern"])
		case model.ValidationRuleMin:
			hints = append(hints, "at least "+rule.Params["value"])
		case model.ValidationRuleMax:
			hints = append(hints, "at most "+rule.Params["value"])
		}
	}
	if field.Format == "date-time" {
		hints = append(hints, "an ISO 8601 timestamp")
	}
	if len(hints) == 0 {
		return field.Description
	}
	return "Enter " + strings.Join(hints, ", ") + "; leave empty to clear."
}

// Describe renders a plain-text summary of a view.
func Describe(view sheet.View) string {
	var b strings.Builder
	switch view.Kind {
	case sheet.ViewNamespace:
		fmt.Fprintf(&b, "namespace %s\n", view.NamespaceID())
		for _, decl := range view.Namespace.Declarations {
			fmt.Fprintf(&b, "  %s (%d properties)\n", decl.DeclarationName(), len(decl.PropertyList()))
		}
	case sheet.ViewConcept, sheet.ViewEnum:
		fmt.Fprintf(&b, "%s %s\n", metamodel.DeclarationClass(view.Declaration), view.DeclarationName())
		for _, prop := range view.Declaration.PropertyList() {
			b.WriteString("  " + describeProperty(prop) + "\n")
		}
	case sheet.ViewConceptProperty, sheet.ViewEnumProperty:
		fmt.Fprintf(&b, "%s.%s\n  %s\n", view.DeclarationName(), view.PropertyName(), describeProperty(view.Property))
	default:
		if view.Invalid() {
			b.WriteString("the selected property has no declaration\n")
		} else {
			b.WriteString("nothing selected\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeProperty(prop metamodel.Property) string {
	if prop == nil {
		return ""
	}
	typ := string(prop.Kind())
	if target, ok := metamodel.TargetType(prop); ok {
		typ = target.Qualified()
	}
	if prop.Base().IsArray {
		typ += "[]"
	}
	line := prop.Base().Name + " " + typ
	if prop.Base().IsOptional {
		line += " optional"
	}
	if def := metamodel.Default(prop); def != nil {
		line += " default=" + def.Text()
	}
	return line
}
