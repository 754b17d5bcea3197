package metamodel_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
)

func loadFixture(t *testing.T) metamodel.Model {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "model.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var model metamodel.Model
	if err := json.Unmarshal(data, &model); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return model
}

func TestModel_DecodeFixture(t *testing.T) {
	model := loadFixture(t)

	if model.Namespace != "org.acme.hr@1.0.0" {
		t.Fatalf("namespace: got %q", model.Namespace)
	}
	if len(model.Declarations) != 3 {
		t.Fatalf("declarations: want 3, got %d", len(model.Declarations))
	}

	dept, _, ok := model.Declaration("Department")
	if !ok || !metamodel.IsEnum(dept) {
		t.Fatalf("expected Department enum, got %#v", dept)
	}

	decl, _, ok := model.Declaration("Employee")
	if !ok {
		t.Fatalf("expected Employee declaration")
	}
	employee, ok := decl.(metamodel.ConceptDeclaration)
	if !ok {
		t.Fatalf("expected concept declaration, got %T", decl)
	}
	if employee.Kind != metamodel.ConceptParticipant {
		t.Fatalf("concept kind: want participant, got %s", employee.Kind)
	}

	salary, _, ok := metamodel.FindProperty(employee, "salary")
	if !ok {
		t.Fatalf("expected salary property")
	}
	want := metamodel.DoubleProperty{
		PropertyBase: metamodel.PropertyBase{Name: "salary"},
		Default:      metamodel.Ptr(metamodel.NumberValue(3.14)),
		Validator:    &metamodel.DoubleDomain{Lower: floatPtr(0), Upper: floatPtr(1000000)},
	}
	if diff := cmp.Diff(metamodel.Property(want), salary); diff != "" {
		t.Fatalf("salary mismatch (-want +got):\n%s", diff)
	}

	grade, _, _ := metamodel.FindProperty(employee, "grade")
	if got := metamodel.Default(grade); got == nil || !got.Equal(metamodel.IntegerValue(3)) {
		t.Fatalf("grade default: want integer 3, got %v", got)
	}

	manager, _, _ := metamodel.FindProperty(employee, "manager")
	target, ok := metamodel.TargetType(manager)
	if !ok || target.Qualified() != "org.acme.hr@1.0.0.Employee" {
		t.Fatalf("manager target: got %+v", target)
	}
	if err := model.Validate(); err != nil {
		t.Fatalf("fixture should validate: %v", err)
	}
}

func TestModel_RoundTrip(t *testing.T) {
	model := loadFixture(t)

	encoded, err := json.Marshal(model)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded metamodel.Model
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(model, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalProperty_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "unknown class",
			raw:  `{"$class":"concerto.metamodel@1.0.0.BlobProperty","name":"x"}`,
			want: "unknown property class",
		},
		{
			name: "reference with default",
			raw:  `{"$class":"concerto.metamodel@1.0.0.ObjectProperty","name":"x","defaultValue":"a","type":{"name":"A"}}`,
			want: "cannot carry a default value",
		},
		{
			name: "reference without type",
			raw:  `{"$class":"concerto.metamodel@1.0.0.RelationshipProperty","name":"x"}`,
			want: "requires a type",
		},
		{
			name: "fractional integer default",
			raw:  `{"$class":"concerto.metamodel@1.0.0.IntegerProperty","name":"x","defaultValue":1.5}`,
			want: "integer value",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := metamodel.UnmarshalProperty([]byte(tc.raw))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestMarshalProperty_ReferenceOmitsDefault(t *testing.T) {
	prop := metamodel.ObjectProperty{
		PropertyBase: metamodel.PropertyBase{Name: "address"},
		Type:         metamodel.TypeIdentifier{Name: "Address"},
	}
	raw, err := metamodel.MarshalProperty(prop)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "defaultValue") {
		t.Fatalf("object property must not encode defaultValue: %s", raw)
	}
	if !strings.Contains(string(raw), `"$class":"concerto.metamodel@1.0.0.ObjectProperty"`) {
		t.Fatalf("missing class discriminator: %s", raw)
	}
}

func floatPtr(f float64) *float64 { return &f }
