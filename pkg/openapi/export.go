// Package openapi exports a model as an OpenAPI 3 document: every
// declaration becomes a component schema and the property edit endpoint is
// described as an operation, so API clients can be generated against the
// editor.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
)

// OpenAPIVersion is the document version emitted by Export.
const OpenAPIVersion = "3.0.3"

// Extension keys carried on exported schemas.
const (
	ExtClass        = "x-concerto-class"
	ExtTarget       = "x-concerto-type"
	ExtRelationship = "x-concerto-relationship"
)

// DraftSchemaName is the component describing the edit payload.
const DraftSchemaName = "PropertyDraft"

// Option tweaks the exported document.
type Option func(*options)

type options struct {
	withEditor bool
	title      string
}

// WithoutEditorPaths leaves the property edit operation out.
func WithoutEditorPaths() Option {
	return func(o *options) {
		o.withEditor = false
	}
}

// WithTitle overrides the info title (the namespace by default).
func WithTitle(title string) Option {
	return func(o *options) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			o.title = trimmed
		}
	}
}

// Export builds the document for one model.
func Export(m metamodel.Model, opts ...Option) (*openapi3.T, error) {
	if strings.TrimSpace(m.Namespace) == "" {
		return nil, errors.New("openapi: model namespace is required")
	}
	cfg := options{withEditor: true, title: m.Namespace}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       cfg.title,
			Version:     namespaceVersion(m.Namespace),
			Description: m.Description,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(m.Declarations)+1),
		},
	}

	// Allocate every component first so object properties can point at
	// declarations listed later in the model.
	for _, decl := range m.Declarations {
		doc.Components.Schemas[decl.DeclarationName()] = openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
	for _, decl := range m.Declarations {
		target := doc.Components.Schemas[decl.DeclarationName()].Value
		*target = *declarationSchema(m.Namespace, decl, doc.Components.Schemas)
	}

	if cfg.withEditor {
		doc.Components.Schemas[DraftSchemaName] = openapi3.NewSchemaRef("", draftSchema())
		addEditorPath(doc)
	}
	return doc, nil
}

// Validate runs the kin-openapi document checks. Example and default values
// are not validated: defaults are checked by the property form instead.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if doc == nil {
		return errors.New("openapi: document is nil")
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation(), openapi3.DisableSchemaDefaultsValidation()); err != nil {
		return fmt.Errorf("openapi: validate: %w", err)
	}
	return nil
}

// MarshalJSON encodes the document with indentation.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode json: %w", err)
	}
	return append(encoded, '\n'), nil
}

// MarshalYAML encodes the document as YAML through its JSON form.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode: %w", err)
	}
	var tree any
	if err := yaml.Unmarshal(encoded, &tree); err != nil {
		return nil, fmt.Errorf("openapi: encode: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func namespaceVersion(namespace string) string {
	if idx := strings.LastIndex(namespace, "@"); idx >= 0 && idx < len(namespace)-1 {
		return namespace[idx+1:]
	}
	return "0.0.0"
}

func declarationSchema(namespace string, decl metamodel.Declaration, components openapi3.Schemas) *openapi3.Schema {
	var schema *openapi3.Schema
	var description string

	switch d := decl.(type) {
	case metamodel.EnumDeclaration:
		description = d.Description
		values := make([]any, 0, len(d.Properties))
		for _, prop := range d.Properties {
			values = append(values, metamodel.PropertyName(prop))
		}
		schema = openapi3.NewStringSchema().WithEnum(values...)
	case metamodel.ConceptDeclaration:
		description = d.Description
		schema = openapi3.NewObjectSchema()
		var required []string
		for _, prop := range d.Properties {
			name := metamodel.PropertyName(prop)
			schema.Properties[name] = propertySchema(namespace, prop, components)
			if !prop.Base().IsOptional {
				required = append(required, name)
			}
		}
		schema.Required = required
		if d.SuperType != nil {
			schema.Extensions = map[string]any{"x-concerto-super-type": d.SuperType.Qualified()}
		}
	default:
		schema = openapi3.NewSchema()
	}

	schema.Description = description
	if schema.Extensions == nil {
		schema.Extensions = make(map[string]any, 1)
	}
	schema.Extensions[ExtClass] = metamodel.DeclarationClass(decl)
	return schema
}

func propertySchema(namespace string, prop metamodel.Property, components openapi3.Schemas) *openapi3.SchemaRef {
	item := scalarSchema(namespace, prop, components)
	if !prop.Base().IsArray {
		return item
	}
	return openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(itemValue(item)))
}

func itemValue(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref.Ref == "" {
		return ref.Value
	}
	// Arrays of references keep the $ref on their items.
	return &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}}
}

func scalarSchema(namespace string, prop metamodel.Property, components openapi3.Schemas) *openapi3.SchemaRef {
	var schema *openapi3.Schema

	switch p := prop.(type) {
	case metamodel.StringProperty:
		schema = openapi3.NewStringSchema()
		if p.Validator != nil && p.Validator.Pattern != "" {
			schema.WithPattern(p.Validator.Pattern)
		}
	case metamodel.BooleanProperty:
		schema = openapi3.NewBoolSchema()
	case metamodel.DoubleProperty:
		schema = openapi3.NewFloat64Schema()
		if p.Validator != nil {
			applyBounds(schema, p.Validator.Lower, p.Validator.Upper)
		}
	case metamodel.IntegerProperty:
		schema = openapi3.NewInt32Schema()
		if p.Validator != nil {
			applyBounds(schema, intBound(p.Validator.Lower), intBound(p.Validator.Upper))
		}
	case metamodel.LongProperty:
		schema = openapi3.NewInt64Schema()
		if p.Validator != nil {
			applyBounds(schema, intBound(p.Validator.Lower), intBound(p.Validator.Upper))
		}
	case metamodel.DateTimeProperty:
		schema = openapi3.NewDateTimeSchema()
	case metamodel.ObjectProperty:
		if ref, ok := localRef(namespace, p.Type, components); ok {
			return ref
		}
		schema = openapi3.NewObjectSchema()
		schema.Extensions = map[string]any{ExtTarget: p.Type.Qualified()}
	case metamodel.RelationshipProperty:
		// Relationships serialise as the identifier of the target instance.
		schema = openapi3.NewStringSchema()
		schema.Extensions = map[string]any{ExtRelationship: p.Type.Qualified()}
	case metamodel.EnumProperty:
		schema = openapi3.NewStringSchema()
	default:
		schema = openapi3.NewSchema()
	}

	if def := metamodel.Default(prop); def != nil {
		schema.Default = def.Interface()
	}
	return openapi3.NewSchemaRef("", schema)
}

func localRef(namespace string, target metamodel.TypeIdentifier, components openapi3.Schemas) (*openapi3.SchemaRef, bool) {
	if target.Namespace != "" && target.Namespace != namespace {
		return nil, false
	}
	component, ok := components[target.Name]
	if !ok {
		return nil, false
	}
	return openapi3.NewSchemaRef("#/components/schemas/"+target.Name, component.Value), true
}

func applyBounds(schema *openapi3.Schema, lower, upper *float64) {
	if lower != nil {
		schema.WithMin(*lower)
	}
	if upper != nil {
		schema.WithMax(*upper)
	}
}

func intBound(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func draftSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Description = "Unsaved edit of a property. defaultValue is text and is coerced to the property's scalar type."
	schema.Properties[propertyform.FieldName] = openapi3.NewSchemaRef("", openapi3.NewStringSchema().WithMinLength(1))
	schema.Properties[propertyform.FieldDefaultValue] = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	schema.Properties[propertyform.FieldIsArray] = openapi3.NewSchemaRef("", openapi3.NewBoolSchema())
	schema.Required = []string{propertyform.FieldName, propertyform.FieldIsArray}
	return schema
}

func addEditorPath(doc *openapi3.T) {
	draftRef := openapi3.NewSchemaRef("#/components/schemas/"+DraftSchemaName, doc.Components.Schemas[DraftSchemaName].Value)

	op := openapi3.NewOperation()
	op.OperationID = propertyform.OperationID
	op.Summary = "Edit Property"
	op.AddParameter(openapi3.NewPathParameter("namespace").WithSchema(openapi3.NewStringSchema()))
	op.AddParameter(openapi3.NewPathParameter("declaration").WithSchema(openapi3.NewStringSchema()))
	op.AddParameter(openapi3.NewPathParameter("property").WithSchema(openapi3.NewStringSchema()))
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithContent(openapi3.Content{
			"application/json":                  openapi3.NewMediaType().WithSchemaRef(draftRef),
			"application/x-www-form-urlencoded": openapi3.NewMediaType().WithSchemaRef(draftRef),
		}),
	}
	op.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Property updated"))
	op.AddResponse(http.StatusConflict, openapi3.NewResponse().WithDescription("Stale revision or duplicate name"))
	op.AddResponse(http.StatusUnprocessableEntity, openapi3.NewResponse().WithDescription("Draft rejected"))

	path := "/namespaces/{namespace}/declarations/{declaration}/properties/{property}"
	doc.AddOperation(path, http.MethodPost, op)
}
