package vanilla

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/sheet"
	"github.com/goliatone/go-modelsheet/pkg/widgets"
)

// Selection form field names posted by the navigation buttons.
const (
	SelectNamespaceField   = "namespace"
	SelectDeclarationField = "declaration"
	SelectPropertyField    = "property"
)

// Template data. Structs carry json tags because the template engine reads
// them through their JSON form.

type pageData struct {
	Kind            string               `json:"kind"`
	Title           string               `json:"title"`
	Invalid         bool                 `json:"invalid"`
	Namespace       string               `json:"namespace"`
	Description     string               `json:"description"`
	Class           string               `json:"class"`
	SelectionAction string               `json:"selectionAction"`
	Declarations    []declarationSummary `json:"declarations"`
	Properties      []propertySummary    `json:"properties"`
	Property        *propertySummary     `json:"property"`
	Form            *formData            `json:"form"`
	Stylesheets     []string             `json:"stylesheets"`
	InlineStyles    []string             `json:"inlineStyles"`
	CSSVars         []cssVar             `json:"cssVars"`
	Classes         map[string]string    `json:"classes"`
}

type declarationSummary struct {
	Name          string `json:"name"`
	Class         string `json:"class"`
	Description   string `json:"description"`
	PropertyCount int    `json:"propertyCount"`
	Namespace     string `json:"namespace"`
}

type propertySummary struct {
	Name        string `json:"name"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	Default     string `json:"default"`
	IsArray     bool   `json:"isArray"`
	IsOptional  bool   `json:"isOptional"`
	Namespace   string `json:"namespace"`
	Declaration string `json:"declaration"`
}

type formData struct {
	Action  string        `json:"action"`
	Method  string        `json:"method"`
	Summary string        `json:"summary"`
	Submit  string        `json:"submit"`
	Fields  []fieldData   `json:"fields"`
	Hidden  []hiddenField `json:"hidden"`
	Errors  []string      `json:"errors"`
}

type fieldData struct {
	Name      string   `json:"name"`
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Widget    string   `json:"widget"`
	InputMode string   `json:"inputMode"`
	Value     string   `json:"value"`
	Checked   bool     `json:"checked"`
	ReadOnly  bool     `json:"readOnly"`
	Required  bool     `json:"required"`
	Pattern   string   `json:"pattern"`
	Min       string   `json:"min"`
	Max       string   `json:"max"`
	Errors    []string `json:"errors"`
}

type hiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type cssVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func buildPage(page render.Page, opts render.RenderOptions, policy *bluemonday.Policy, classes map[string]string, selectionAction string) pageData {
	view := page.View
	data := pageData{
		Kind:            string(view.Kind),
		Invalid:         view.Invalid(),
		Namespace:       view.NamespaceID(),
		SelectionAction: selectionAction,
		Classes:         classes,
	}

	switch view.Kind {
	case sheet.ViewNamespace:
		data.Title = view.NamespaceID()
		data.Description = sanitizeDescription(policy, view.Namespace.Description)
		for _, decl := range view.Namespace.Declarations {
			data.Declarations = append(data.Declarations, summarizeDeclaration(data.Namespace, decl, policy))
		}
	case sheet.ViewConcept, sheet.ViewEnum:
		data.Title = view.DeclarationName()
		data.Class = metamodel.DeclarationClass(view.Declaration)
		data.Description = sanitizeDescription(policy, declarationDescription(view.Declaration))
		for _, prop := range view.Declaration.PropertyList() {
			data.Properties = append(data.Properties, summarizeProperty(data.Namespace, view.DeclarationName(), prop))
		}
	case sheet.ViewConceptProperty, sheet.ViewEnumProperty:
		data.Title = view.DeclarationName() + "." + view.PropertyName()
		data.Class = metamodel.Class(view.Property)
		summary := summarizeProperty(data.Namespace, view.DeclarationName(), view.Property)
		data.Property = &summary
		if page.Editable() {
			data.Form = buildForm(page, opts)
		}
	default:
		data.Title = "Nothing selected"
	}
	return data
}

func declarationDescription(decl metamodel.Declaration) string {
	switch d := decl.(type) {
	case metamodel.ConceptDeclaration:
		return d.Description
	case metamodel.EnumDeclaration:
		return d.Description
	}
	return ""
}

func summarizeDeclaration(namespace string, decl metamodel.Declaration, policy *bluemonday.Policy) declarationSummary {
	return declarationSummary{
		Name:          decl.DeclarationName(),
		Class:         shortClass(metamodel.DeclarationClass(decl)),
		Description:   sanitizeDescription(policy, declarationDescription(decl)),
		PropertyCount: len(decl.PropertyList()),
		Namespace:     namespace,
	}
}

func summarizeProperty(namespace, declaration string, prop metamodel.Property) propertySummary {
	summary := propertySummary{
		Name:        metamodel.PropertyName(prop),
		Namespace:   namespace,
		Declaration: declaration,
	}
	if prop == nil {
		return summary
	}
	base := prop.Base()
	summary.Class = prop.Kind().ClassName()
	summary.Type = string(prop.Kind())
	summary.IsArray = base.IsArray
	summary.IsOptional = base.IsOptional
	if target, ok := metamodel.TargetType(prop); ok {
		summary.Type = target.Qualified()
	}
	if def := metamodel.Default(prop); def != nil {
		summary.Default = def.Text()
	}
	return summary
}

func shortClass(class string) string {
	if idx := strings.LastIndex(class, "."); idx >= 0 {
		return class[idx+1:]
	}
	return class
}

func buildForm(page render.Page, opts render.RenderOptions) *formData {
	form := *page.Form
	form.Fields = append([]model.Field(nil), page.Form.Fields...)
	render.LocalizeFormModel(&form, opts.Locale, opts.Translator, nil)

	action := page.Action
	if action == "" {
		action = form.Endpoint
	}
	method := page.Method
	if method == "" {
		method = form.Method
	}

	data := &formData{
		Action:  action,
		Method:  strings.ToLower(method),
		Summary: form.Summary,
		Submit:  render.Translate(opts.Translator, opts.Locale, render.SubmitKey, "Save", nil),
		Errors:  render.MergeFormErrors(opts.FormErrors),
	}
	for _, hidden := range render.SortedHiddenFields(opts.HiddenFields) {
		data.Hidden = append(data.Hidden, hiddenField{Name: hidden.Name, Value: hidden.Value})
	}

	for _, field := range form.Fields {
		// References never expose a default, whatever the caller passed in.
		if field.Name == propertyform.FieldDefaultValue && page.View.Property != nil && page.View.Property.Kind().IsReference() {
			continue
		}
		data.Fields = append(data.Fields, buildField(field, opts))
	}
	return data
}

func buildField(field model.Field, opts render.RenderOptions) fieldData {
	widget := strings.TrimSpace(field.Metadata["widget"])
	if widget == "" {
		widget = strings.TrimSpace(field.UIHints["widget"])
	}
	if widget == "" {
		widget = fallbackWidget(field)
	}

	out := fieldData{
		Name:     field.Name,
		ID:       fieldID(field.Name),
		Label:    field.Label,
		Widget:   widget,
		ReadOnly: field.ReadOnly,
		Required: field.Required && !field.ReadOnly && field.Type != model.FieldTypeBoolean,
		Errors:   opts.Errors[field.Name],
	}
	if out.Label == "" {
		out.Label = field.Name
	}

	value := field.Default
	if override, ok := opts.Values[field.Name]; ok {
		value = override
	}
	if field.Type == model.FieldTypeBoolean {
		out.Checked = truthy(value)
		out.Value = "true"
	} else if value != nil {
		out.Value = fmt.Sprint(value)
	}

	switch field.Metadata[widgets.ValueKindKey] {
	case string(model.FieldTypeNumber):
		out.InputMode = "decimal"
	case string(model.FieldTypeInteger):
		out.InputMode = "numeric"
	}

	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRulePattern:
			out.Pattern = rule.Params["pattern"]
		case model.ValidationRuleMin:
			out.Min = rule.Params["value"]
		case model.ValidationRuleMax:
			out.Max = rule.Params["value"]
		}
	}
	return out
}

func fallbackWidget(field model.Field) string {
	switch {
	case field.ReadOnly:
		return widgets.WidgetReadonlyType
	case field.Type == model.FieldTypeBoolean:
		return widgets.WidgetToggle
	default:
		return widgets.WidgetText
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1":
			return true
		}
	}
	return false
}

func fieldID(name string) string {
	return "sheet-" + strings.TrimPrefix(name, "$")
}

func sortedCSSVars(vars map[string]string) []cssVar {
	if len(vars) == 0 {
		return nil
	}
	out := make([]cssVar, 0, len(vars))
	for name, value := range vars {
		out = append(out, cssVar{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
