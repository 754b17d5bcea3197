package propertyform

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/widgets"
)

// OperationID names the property update operation in form models.
const OperationID = "updateProperty"

// Metadata keys attached to the form model and its fields.
const (
	MetaNamespace   = "namespace"
	MetaDeclaration = "declaration"
	MetaProperty    = "property"
	MetaClass       = "class"
	MetaKind        = "kind"
	MetaValueKind   = widgets.ValueKindKey
)

// Endpoint returns the path the form posts to for a property.
func Endpoint(namespace, declaration, property string) string {
	return "/namespaces/" + url.PathEscape(namespace) +
		"/declarations/" + url.PathEscape(declaration) +
		"/properties/" + url.PathEscape(property)
}

// FormModel describes the form for renderers, seeded from the current draft.
func (f *Form) FormModel() model.FormModel {
	return BuildFormModel(f.namespace, f.concept.Name, f.property, f.draft)
}

// BuildFormModel lays out the property edit form: name, the read-only class,
// the target type for references, defaultValue unless the variant is a
// reference, and isArray.
func BuildFormModel(namespace, declaration string, prop metamodel.Property, draft Draft) model.FormModel {
	name := metamodel.PropertyName(prop)
	class := metamodel.Class(prop)

	form := model.FormModel{
		OperationID: OperationID,
		Endpoint:    Endpoint(namespace, declaration, name),
		Method:      http.MethodPost,
		Summary:     "Edit Property",
		Description: class,
		Metadata: map[string]string{
			MetaNamespace:   namespace,
			MetaDeclaration: declaration,
			MetaProperty:    name,
			MetaClass:       class,
		},
	}
	if prop == nil {
		return form
	}
	kind := prop.Kind()
	form.Metadata[MetaKind] = string(kind)

	form.Fields = append(form.Fields, model.Field{
		Name:        FieldName,
		Type:        model.FieldTypeString,
		Required:    true,
		Label:       "Name",
		Default:     draft.Name,
		Validations: []model.ValidationRule{{Kind: model.ValidationRuleRequired}},
	})
	form.Fields = append(form.Fields, model.Field{
		Name:     FieldClass,
		Type:     model.FieldTypeString,
		ReadOnly: true,
		Label:    "Class",
		Default:  class,
		Metadata: map[string]string{"widget": widgets.WidgetReadonlyType},
	})

	if target, ok := metamodel.TargetType(prop); ok {
		form.Fields = append(form.Fields, model.Field{
			Name:     FieldType,
			Type:     model.FieldTypeString,
			ReadOnly: true,
			Label:    "Type",
			Default:  target.Qualified(),
			Metadata: map[string]string{"widget": widgets.WidgetReadonlyType},
		})
	}

	if kind.CarriesDefault() {
		form.Fields = append(form.Fields, defaultValueField(prop, draft))
	}

	isArray := false
	if draft.IsArray != nil {
		isArray = *draft.IsArray
	}
	form.Fields = append(form.Fields, model.Field{
		Name:        FieldIsArray,
		Type:        model.FieldTypeBoolean,
		Required:    true,
		Label:       "Array (can store multiple values)",
		Default:     isArray,
		Validations: []model.ValidationRule{{Kind: model.ValidationRuleOneOf, Params: map[string]string{"values": "true,false"}}},
	})
	return form
}

// defaultValueField is always a text input: coercion happens on submit, so
// the field accepts free text whatever the variant.
func defaultValueField(prop metamodel.Property, draft Draft) model.Field {
	field := model.Field{
		Name:     FieldDefaultValue,
		Type:     model.FieldTypeString,
		Label:    "defaultValue",
		Default:  draft.DefaultValue,
		Metadata: map[string]string{MetaValueKind: valueKind(prop.Kind())},
	}

	switch p := prop.(type) {
	case metamodel.StringProperty:
		if p.Validator != nil && p.Validator.Pattern != "" {
			field.Validations = append(field.Validations, model.ValidationRule{
				Kind:   model.ValidationRulePattern,
				Params: map[string]string{"pattern": p.Validator.Pattern},
			})
		}
	case metamodel.DoubleProperty:
		if p.Validator != nil {
			field.Validations = appendBounds(field.Validations, formatFloat(p.Validator.Lower), formatFloat(p.Validator.Upper))
		}
	case metamodel.IntegerProperty:
		if p.Validator != nil {
			field.Validations = appendBounds(field.Validations, formatInt(p.Validator.Lower), formatInt(p.Validator.Upper))
		}
	case metamodel.LongProperty:
		if p.Validator != nil {
			field.Validations = appendBounds(field.Validations, formatInt(p.Validator.Lower), formatInt(p.Validator.Upper))
		}
	case metamodel.DateTimeProperty:
		field.Format = "date-time"
	}
	return field
}

func valueKind(kind metamodel.PropertyKind) string {
	switch {
	case kind == metamodel.KindDouble:
		return string(model.FieldTypeNumber)
	case kind.IsIntegral():
		return string(model.FieldTypeInteger)
	case kind.IsBoolean():
		return string(model.FieldTypeBoolean)
	default:
		return string(model.FieldTypeString)
	}
}

func appendBounds(rules []model.ValidationRule, lower, upper string) []model.ValidationRule {
	if lower != "" {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationRuleMin, Params: map[string]string{"value": lower}})
	}
	if upper != "" {
		rules = append(rules, model.ValidationRule{Kind: model.ValidationRuleMax, Params: map[string]string{"value": upper}})
	}
	return rules
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}
