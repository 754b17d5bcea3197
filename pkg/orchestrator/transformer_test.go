package orchestrator_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/orchestrator"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/testsupport"
)

const preset = `
summary: Property
metadata:
  layout: compact
fields:
  defaultValue:
    label: Default
    placeholder: leave empty to clear
    metadata:
      widget: text
  isArray:
    uiHints:
      help: Store a list
`

func TestPresetTransformer(t *testing.T) {
	transformer, err := orchestrator.NewPresetTransformerFromFS(fstest.MapFS{
		"preset.yaml": &fstest.MapFile{Data: []byte(preset)},
	}, "preset.yaml")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}

	prop := testsupport.EmployeeProperty(t, "salary")
	form := propertyform.BuildFormModel(testsupport.Namespace, "Employee", prop, propertyform.DraftFrom(prop))
	if err := transformer.Transform(context.Background(), &form); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if form.Summary != "Property" || form.Metadata["layout"] != "compact" {
		t.Fatalf("form-level patch missing: %q %v", form.Summary, form.Metadata)
	}
	field, _ := form.Field("defaultValue")
	want := model.Field{
		Name:        "defaultValue",
		Type:        model.FieldTypeString,
		Label:       "Default",
		Placeholder: "leave empty to clear",
		Default:     "3.14",
		Metadata:    map[string]string{"valueKind": "number", "widget": "text"},
	}
	if diff := cmp.Diff(want, field); diff != "" {
		t.Fatalf("field patch mismatch (-want +got):\n%s", diff)
	}
	isArray, _ := form.Field("isArray")
	if isArray.UIHints["help"] != "Store a list" {
		t.Fatalf("ui hints not applied: %v", isArray.UIHints)
	}
}

func TestPresetTransformer_SkipsMissingFields(t *testing.T) {
	transformer, err := orchestrator.NewPresetTransformer([]byte(`{"fields": {"defaultValue": {"label": "Default"}}}`))
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}
	prop := testsupport.EmployeeProperty(t, "manager")
	form := propertyform.BuildFormModel(testsupport.Namespace, "Employee", prop, propertyform.DraftFrom(prop))
	if err := transformer.Transform(context.Background(), &form); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if _, ok := form.Field("defaultValue"); ok {
		t.Fatal("preset must not add fields")
	}
}

func TestPresetTransformer_Errors(t *testing.T) {
	if _, err := orchestrator.NewPresetTransformer([]byte("  ")); err == nil {
		t.Fatal("expected error for empty document")
	}
	if _, err := orchestrator.NewPresetTransformer([]byte("fields: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := orchestrator.NewPresetTransformerFromFS(nil, "x"); err == nil {
		t.Fatal("expected error for nil fs")
	}
	transformer, _ := orchestrator.NewPresetTransformer([]byte("summary: x"))
	if err := transformer.Transform(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil form")
	}
}
