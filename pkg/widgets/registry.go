package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-modelsheet/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetToggle       = "toggle"
	WidgetReadonlyType = "readonly-type"
	WidgetNumber       = "number"
	WidgetDateTime     = "datetime"
	WidgetText         = "text"
)

// ValueKindKey is the field metadata key carrying the scalar kind a text
// field is coerced to on submit.
const ValueKindKey = "valueKind"

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
}

// Registry picks a widget for each form field. An explicit widget hint always
// wins; otherwise matchers are tried from the highest priority down, and
// equal priorities keep registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns a registry preloaded with the sheet's widgets.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher. Blank names and nil matchers are ignored.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	name = strings.TrimSpace(name)
	if r == nil || matcher == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{name: name, priority: priority, match: matcher})
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].priority > r.rules[j].priority
	})
}

// Resolve returns the widget for field.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if widget := hintedWidget(field); widget != "" {
		return widget, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, candidate := range r.rules {
		if candidate.match(field) {
			return candidate.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator. The resolved widget is written to the
// field's "widget" metadata and UI hint unless one is already set.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	fields := make([]model.Field, len(form.Fields))
	for i, field := range form.Fields {
		if widget, ok := r.Resolve(field); ok {
			field.Metadata = withDefault(field.Metadata, "widget", widget)
			field.UIHints = withDefault(field.UIHints, "widget", widget)
		}
		fields[i] = field
	}
	form.Fields = fields
	return nil
}

func withDefault(values map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	if out[key] == "" {
		out[key] = value
	}
	return out
}

func hintedWidget(field model.Field) string {
	if widget := strings.TrimSpace(field.Metadata["widget"]); widget != "" {
		return widget
	}
	return strings.TrimSpace(field.UIHints["widget"])
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetToggle, 90, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean && !field.ReadOnly
	})

	r.Register(WidgetReadonlyType, 80, func(field model.Field) bool {
		return field.ReadOnly
	})

	r.Register(WidgetNumber, 70, func(field model.Field) bool {
		switch field.Type {
		case model.FieldTypeNumber, model.FieldTypeInteger:
			return true
		case model.FieldTypeString:
			kind := strings.TrimSpace(field.Metadata[ValueKindKey])
			return kind == string(model.FieldTypeNumber) || kind == string(model.FieldTypeInteger)
		}
		return false
	})

	r.Register(WidgetDateTime, 60, func(field model.Field) bool {
		return field.Type == model.FieldTypeString && strings.EqualFold(strings.TrimSpace(field.Format), "date-time")
	})

	r.Register(WidgetText, 10, func(field model.Field) bool {
		return field.Type == model.FieldTypeString
	})
}
