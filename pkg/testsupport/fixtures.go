package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/modelfile"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

// Namespace is the namespace of the HR fixture model.
const Namespace = "org.acme.hr@1.0.0"

// HRModel builds the fixture model used across package tests: an enum
// (Department), a plain concept (Address) and a participant (Employee)
// covering every property variant.
func HRModel() metamodel.Model {
	return metamodel.Model{
		Namespace:   Namespace,
		Description: "Human resources <em>sample</em> model.",
		Declarations: []metamodel.Declaration{
			metamodel.EnumDeclaration{
				Name: "Department",
				Properties: []metamodel.Property{
					metamodel.EnumProperty{PropertyBase: metamodel.PropertyBase{Name: "ENGINEERING"}},
					metamodel.EnumProperty{PropertyBase: metamodel.PropertyBase{Name: "SALES"}},
				},
			},
			metamodel.ConceptDeclaration{
				Name: "Address",
				Kind: metamodel.ConceptPlain,
				Properties: []metamodel.Property{
					metamodel.StringProperty{PropertyBase: metamodel.PropertyBase{Name: "street"}},
					metamodel.StringProperty{
						PropertyBase: metamodel.PropertyBase{Name: "postCode", IsOptional: true},
						Validator:    &metamodel.StringValidator{Pattern: "^[0-9]{5}$"},
					},
				},
			},
			metamodel.ConceptDeclaration{
				Name: "Employee",
				Kind: metamodel.ConceptParticipant,
				Properties: []metamodel.Property{
					metamodel.StringProperty{
						PropertyBase: metamodel.PropertyBase{Name: "email"},
						Default:      metamodel.Ptr(metamodel.StringValue("someone@example.com")),
					},
					metamodel.BooleanProperty{
						PropertyBase: metamodel.PropertyBase{Name: "active"},
						Default:      metamodel.Ptr(metamodel.BoolValue(true)),
					},
					metamodel.DoubleProperty{
						PropertyBase: metamodel.PropertyBase{Name: "salary"},
						Default:      metamodel.Ptr(metamodel.NumberValue(3.14)),
					},
					metamodel.IntegerProperty{
						PropertyBase: metamodel.PropertyBase{Name: "grade", IsOptional: true},
						Default:      metamodel.Ptr(metamodel.IntegerValue(3)),
					},
					metamodel.LongProperty{PropertyBase: metamodel.PropertyBase{Name: "badge", IsOptional: true}},
					metamodel.DateTimeProperty{PropertyBase: metamodel.PropertyBase{Name: "hiredAt", IsOptional: true}},
					metamodel.ObjectProperty{
						PropertyBase: metamodel.PropertyBase{Name: "address"},
						Type:         metamodel.TypeIdentifier{Name: "Address"},
					},
					metamodel.RelationshipProperty{
						PropertyBase: metamodel.PropertyBase{Name: "manager", IsOptional: true},
						Type:         metamodel.TypeIdentifier{Name: "Employee", Namespace: Namespace},
					},
					metamodel.StringProperty{PropertyBase: metamodel.PropertyBase{Name: "nicknames", IsArray: true, IsOptional: true}},
				},
			},
		},
	}
}

// Employee returns the Employee concept of the fixture model.
func Employee() metamodel.ConceptDeclaration {
	decl, _, _ := HRModel().Declaration("Employee")
	return decl.(metamodel.ConceptDeclaration)
}

// EmployeeProperty returns the named Employee property or fails the test.
func EmployeeProperty(t testing.TB, name string) metamodel.Property {
	t.Helper()

	prop, _, ok := metamodel.FindProperty(Employee(), name)
	if !ok {
		t.Fatalf("testsupport: Employee has no property %q", name)
	}
	return prop
}

// NewStore returns a memory store loaded with the fixture model.
func NewStore(t testing.TB) *store.Memory {
	t.Helper()

	mem := &store.Memory{}
	if err := mem.Load(HRModel()); err != nil {
		t.Fatalf("testsupport: load store: %v", err)
	}
	return mem
}

// MustLoadModels reads a model document from disk.
func MustLoadModels(t testing.TB, path string) []metamodel.Model {
	t.Helper()

	models, err := modelfile.Load(path)
	if err != nil {
		t.Fatalf("testsupport: load models: %v", err)
	}
	return models
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t testing.TB, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
