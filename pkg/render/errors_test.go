package render_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

func TestMapErrorPayload_NormalisesPaths(t *testing.T) {
	form := model.FormModel{
		Fields: []model.Field{
			{Name: "name", Type: model.FieldTypeString},
			{Name: "defaultValue", Type: model.FieldTypeString},
			{Name: "isArray", Type: model.FieldTypeBoolean},
		},
	}

	payload := map[string][]string{
		"name":                   {"Name is required", " Name is required "},
		"/body/defaultValue":     {"Default value must be a number"},
		"$.draft.isArray":        {"Array is required"},
		"non_field_errors":       {"Form level error"},
		"request/body/nickname":  {"Should fall back to form errors"},
		"":                       {"Unscoped form error"},
		"data/0/defaultValue[1]": {"Indexed"},
	}

	mapped := render.MapErrorPayload(form, payload)

	wantFields := map[string][]string{
		"name":         {"Name is required"},
		"defaultValue": {"Default value must be a number", "Indexed"},
		"isArray":      {"Array is required"},
	}
	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(wantFields, mapped.Fields, sortStrings); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, sortStrings); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapStoreError(t *testing.T) {
	dup := render.MapStoreError(fmt.Errorf("propertyform: update: %w", store.ErrDuplicateProperty))
	if diff := cmp.Diff(map[string][]string{"name": {render.MessageDuplicateProperty}}, dup.Fields); diff != "" {
		t.Fatalf("duplicate mapping mismatch (-want +got):\n%s", diff)
	}

	gone := render.MapStoreError(store.ErrPropertyNotFound)
	if diff := cmp.Diff([]string{render.MessageStaleRevision}, gone.Form); diff != "" {
		t.Fatalf("not found mapping mismatch (-want +got):\n%s", diff)
	}

	other := render.MapStoreError(errors.New("boom"))
	if diff := cmp.Diff([]string{"boom"}, other.Form); diff != "" {
		t.Fatalf("generic mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
