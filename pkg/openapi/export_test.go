package openapi_test

import (
	"context"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/openapi"
	"github.com/goliatone/go-modelsheet/pkg/testsupport"
)

func TestExport_DocumentValidates(t *testing.T) {
	doc, err := openapi.Export(testsupport.HRModel())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := openapi.Validate(context.Background(), doc); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if doc.Info.Title != testsupport.Namespace || doc.Info.Version != "1.0.0" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	if doc.Paths.Find("/namespaces/{namespace}/declarations/{declaration}/properties/{property}") == nil {
		t.Fatal("expected the property edit path")
	}
	if _, ok := doc.Components.Schemas[openapi.DraftSchemaName]; !ok {
		t.Fatal("expected the draft component")
	}
}

func TestExport_ConceptSchema(t *testing.T) {
	doc, err := openapi.Export(testsupport.HRModel())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	employee := doc.Components.Schemas["Employee"].Value

	if diff := cmp.Diff([]string{"email", "active", "salary", "address"}, employee.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if got := employee.Extensions[openapi.ExtClass]; got != "concerto.metamodel@1.0.0.ParticipantDeclaration" {
		t.Fatalf("unexpected class extension %v", got)
	}

	tests := []struct {
		name   string
		typ    string
		format string
		def    any
	}{
		{"email", openapi3.TypeString, "", "someone@example.com"},
		{"active", openapi3.TypeBoolean, "", true},
		{"salary", openapi3.TypeNumber, "double", 3.14},
		{"grade", openapi3.TypeInteger, "int32", int64(3)},
		{"badge", openapi3.TypeInteger, "int64", nil},
		{"hiredAt", openapi3.TypeString, "date-time", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := employee.Properties[tt.name].Value
			if !schema.Type.Is(tt.typ) || schema.Format != tt.format {
				t.Fatalf("unexpected type %v/%q", schema.Type, schema.Format)
			}
			if diff := cmp.Diff(tt.def, schema.Default); diff != "" {
				t.Fatalf("default mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExport_ReferencesAndArrays(t *testing.T) {
	doc, err := openapi.Export(testsupport.HRModel())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	employee := doc.Components.Schemas["Employee"].Value

	if ref := employee.Properties["address"].Ref; ref != "#/components/schemas/Address" {
		t.Fatalf("expected address to reference the component, got %q", ref)
	}
	manager := employee.Properties["manager"].Value
	if !manager.Type.Is(openapi3.TypeString) || manager.Extensions[openapi.ExtRelationship] != testsupport.Namespace+".Employee" {
		t.Fatalf("unexpected relationship schema %+v", manager)
	}
	nicknames := employee.Properties["nicknames"].Value
	if !nicknames.Type.Is(openapi3.TypeArray) || !nicknames.Items.Value.Type.Is(openapi3.TypeString) {
		t.Fatalf("expected an array of strings, got %+v", nicknames)
	}

	postCode := doc.Components.Schemas["Address"].Value.Properties["postCode"].Value
	if postCode.Pattern != "^[0-9]{5}$" {
		t.Fatalf("expected pattern, got %q", postCode.Pattern)
	}

	dept := doc.Components.Schemas["Department"].Value
	if diff := cmp.Diff([]any{"ENGINEERING", "SALES"}, dept.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_Bounds(t *testing.T) {
	lower, upper := 0.0, 10.0
	minGrade, maxGrade := int64(1), int64(9)
	m := metamodel.Model{
		Namespace: "org.acme.bounds",
		Declarations: []metamodel.Declaration{
			metamodel.ConceptDeclaration{
				Name: "Rating",
				Properties: []metamodel.Property{
					metamodel.DoubleProperty{PropertyBase: metamodel.PropertyBase{Name: "score"}, Validator: &metamodel.DoubleDomain{Lower: &lower, Upper: &upper}},
					metamodel.IntegerProperty{PropertyBase: metamodel.PropertyBase{Name: "grade"}, Validator: &metamodel.IntegerDomain{Lower: &minGrade, Upper: &maxGrade}},
					metamodel.ObjectProperty{PropertyBase: metamodel.PropertyBase{Name: "origin"}, Type: metamodel.TypeIdentifier{Name: "Place", Namespace: "org.other"}},
				},
			},
		},
	}

	doc, err := openapi.Export(m, openapi.WithoutEditorPaths(), openapi.WithTitle("Ratings"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Info.Title != "Ratings" || doc.Info.Version != "0.0.0" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	if doc.Paths.Len() != 0 {
		t.Fatal("expected no paths")
	}

	rating := doc.Components.Schemas["Rating"].Value
	score := rating.Properties["score"].Value
	if *score.Min != 0 || *score.Max != 10 {
		t.Fatalf("unexpected score bounds %v %v", *score.Min, *score.Max)
	}
	grade := rating.Properties["grade"].Value
	if *grade.Min != 1 || *grade.Max != 9 {
		t.Fatalf("unexpected grade bounds %v %v", *grade.Min, *grade.Max)
	}
	origin := rating.Properties["origin"]
	if origin.Ref != "" || origin.Value.Extensions[openapi.ExtTarget] != "org.other.Place" {
		t.Fatalf("foreign object should stay inline, got %+v", origin)
	}
	if err := openapi.Validate(context.Background(), doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestExport_RequiresNamespace(t *testing.T) {
	if _, err := openapi.Export(metamodel.Model{}); err == nil {
		t.Fatal("expected an error for a model without namespace")
	}
}

func TestMarshal(t *testing.T) {
	doc, err := openapi.Export(testsupport.HRModel())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := openapi.MarshalJSON(doc)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	loaded, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Components.Schemas["Employee"] == nil {
		t.Fatal("expected Employee in the reloaded document")
	}

	out, err := openapi.MarshalYAML(doc)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	if !strings.HasPrefix(string(out), "components:") {
		t.Fatalf("expected sorted yaml keys, got %s", out[:40])
	}
	var tree map[string]any
	if err := yaml.Unmarshal(out, &tree); err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if tree["openapi"] != openapi.OpenAPIVersion {
		t.Fatalf("unexpected openapi version %v", tree["openapi"])
	}
}
