package propertyform_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/testsupport"
)

func fieldNames(form model.FormModel) []string {
	names := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		names = append(names, field.Name)
	}
	return names
}

func TestFormModel_FieldLayoutPerVariant(t *testing.T) {
	cases := []struct {
		property string
		want     []string
	}{
		{"email", []string{"name", "$class", "defaultValue", "isArray"}},
		{"active", []string{"name", "$class", "defaultValue", "isArray"}},
		{"salary", []string{"name", "$class", "defaultValue", "isArray"}},
		{"address", []string{"name", "$class", "type", "isArray"}},
		{"manager", []string{"name", "$class", "type", "isArray"}},
	}
	for _, tc := range cases {
		t.Run(tc.property, func(t *testing.T) {
			form := newForm(t, &recordingUpdater{}, tc.property).FormModel()
			if diff := cmp.Diff(tc.want, fieldNames(form)); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormModel_SeedsFromDraft(t *testing.T) {
	form := newForm(t, &recordingUpdater{}, "salary")
	if err := form.Set(propertyform.FieldIsArray, "on"); err != nil {
		t.Fatalf("set: %v", err)
	}
	fm := form.FormModel()

	if fm.Endpoint != "/namespaces/org.acme.hr@1.0.0/declarations/Employee/properties/salary" {
		t.Fatalf("endpoint: %s", fm.Endpoint)
	}
	if fm.Method != "POST" || fm.OperationID != propertyform.OperationID {
		t.Fatalf("method/operation: %s %s", fm.Method, fm.OperationID)
	}
	if fm.Metadata[propertyform.MetaClass] != "concerto.metamodel@1.0.0.DoubleProperty" {
		t.Fatalf("class metadata: %v", fm.Metadata)
	}

	def, _ := fm.Field(propertyform.FieldDefaultValue)
	if def.Default != "3.14" || def.Type != model.FieldTypeString || def.Metadata[propertyform.MetaValueKind] != "number" {
		t.Fatalf("defaultValue field: %+v", def)
	}
	isArray, _ := fm.Field(propertyform.FieldIsArray)
	if isArray.Default != true || isArray.Type != model.FieldTypeBoolean {
		t.Fatalf("isArray field: %+v", isArray)
	}
	name, _ := fm.Field(propertyform.FieldName)
	if !name.Required || !name.HasRule(model.ValidationRuleRequired) {
		t.Fatalf("name field: %+v", name)
	}
}

func TestBuildFormModel_DomainBecomesRules(t *testing.T) {
	prop := withDomain(testsupport.EmployeeProperty(t, "salary"))
	fm := propertyform.BuildFormModel(testsupport.Namespace, "Employee", prop, propertyform.DraftFrom(prop))

	def, _ := fm.Field(propertyform.FieldDefaultValue)
	want := []model.ValidationRule{{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "0"}}}
	if diff := cmp.Diff(want, def.Validations); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeValues(t *testing.T) {
	cases := []struct {
		name   string
		values map[string][]string
		want   propertyform.Draft
	}{
		{
			name:   "checked box",
			values: map[string][]string{"name": {"email"}, "defaultValue": {"x"}, "isArray": {"on"}},
			want:   propertyform.Draft{Name: "email", DefaultValue: "x", IsArray: propertyform.Bool(true)},
		},
		{
			name:   "hidden false then checkbox",
			values: map[string][]string{"name": {"email"}, "isArray": {"false", "true"}},
			want:   propertyform.Draft{Name: "email", IsArray: propertyform.Bool(true)},
		},
		{
			name:   "absent checkbox",
			values: map[string][]string{"name": {"email"}},
			want:   propertyform.Draft{Name: "email", IsArray: propertyform.Bool(false)},
		},
		{
			name:   "garbage is indeterminate",
			values: map[string][]string{"name": {"email"}, "isArray": {"maybe"}},
			want:   propertyform.Draft{Name: "email"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, propertyform.DecodeValues(tc.values)); diff != "" {
				t.Fatalf("draft mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDraft_ValuesFeedDecode(t *testing.T) {
	draft := propertyform.DraftFrom(testsupport.EmployeeProperty(t, "grade"))
	if diff := cmp.Diff(draft, propertyform.DecodeValues(draft.Values())); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := propertyform.FieldErrors{
		"name":    {"Name is required"},
		"isArray": {"Array is required"},
	}
	want := "propertyform: invalid draft: isArray: Array is required; name: Name is required"
	if errs.Error() != want {
		t.Fatalf("error text: %q", errs.Error())
	}
}
