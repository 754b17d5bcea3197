package propertyform_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/testsupport"
)

func TestMergeSubmission_IdenticalDraftIsIdempotent(t *testing.T) {
	for _, prop := range testsupport.Employee().Properties {
		prop := prop
		t.Run(metamodel.PropertyName(prop), func(t *testing.T) {
			merged, err := propertyform.MergeSubmission(prop, propertyform.DraftFrom(prop))
			if err != nil {
				t.Fatalf("merge: %v", err)
			}
			if diff := cmp.Diff(prop, merged); diff != "" {
				t.Fatalf("merged differs from original (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeSubmission_Coercion(t *testing.T) {
	cases := []struct {
		name     string
		property string
		text     string
		want     *metamodel.Value
	}{
		{"double parses float", "salary", "3.14", metamodel.Ptr(metamodel.NumberValue(3.14))},
		{"double parses integer literal", "salary", "42", metamodel.Ptr(metamodel.NumberValue(42))},
		{"boolean true", "active", "true", metamodel.Ptr(metamodel.BoolValue(true))},
		{"boolean false", "active", "false", metamodel.Ptr(metamodel.BoolValue(false))},
		{"boolean keeps other text", "active", "yes", metamodel.Ptr(metamodel.StringValue("yes"))},
		{"boolean is case sensitive", "active", "TRUE", metamodel.Ptr(metamodel.StringValue("TRUE"))},
		{"integer parses", "grade", "7", metamodel.Ptr(metamodel.IntegerValue(7))},
		{"long parses", "badge", "9000000000", metamodel.Ptr(metamodel.IntegerValue(9000000000))},
		{"string stays text", "email", "a@b.c", metamodel.Ptr(metamodel.StringValue("a@b.c"))},
		{"datetime stays text", "hiredAt", "2024-01-01T00:00:00Z", metamodel.Ptr(metamodel.StringValue("2024-01-01T00:00:00Z"))},
		{"empty clears default", "salary", "", nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			original := testsupport.EmployeeProperty(t, tc.property)
			draft := propertyform.DraftFrom(original)
			draft.DefaultValue = tc.text

			merged, err := propertyform.MergeSubmission(original, draft)
			if err != nil {
				t.Fatalf("merge: %v", err)
			}
			if diff := cmp.Diff(tc.want, metamodel.Default(merged)); diff != "" {
				t.Fatalf("default mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeSubmission_RoundTripsNumericDefault(t *testing.T) {
	original := testsupport.EmployeeProperty(t, "salary")
	merged, err := propertyform.MergeSubmission(original, propertyform.Draft{
		Name:         "salary",
		DefaultValue: "3.14",
		IsArray:      propertyform.Bool(false),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	got, ok := metamodel.Default(merged).Number()
	if !ok || got != 3.14 {
		t.Fatalf("want number 3.14, got %v", metamodel.Default(merged))
	}
}

func TestMergeSubmission_OverlaysDraftFields(t *testing.T) {
	original := testsupport.EmployeeProperty(t, "email")
	merged, err := propertyform.MergeSubmission(original, propertyform.Draft{
		Name:         "workEmail",
		DefaultValue: "team@example.com",
		IsArray:      propertyform.Bool(true),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	want := metamodel.StringProperty{
		PropertyBase: metamodel.PropertyBase{Name: "workEmail", IsArray: true},
		Default:      metamodel.Ptr(metamodel.StringValue("team@example.com")),
	}
	if diff := cmp.Diff(metamodel.Property(want), merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
	if metamodel.PropertyName(original) != "email" {
		t.Fatalf("original was mutated: %v", original)
	}
}

func TestMergeSubmission_ReferencesNeverGetDefault(t *testing.T) {
	for _, name := range []string{"address", "manager"} {
		original := testsupport.EmployeeProperty(t, name)
		merged, err := propertyform.MergeSubmission(original, propertyform.Draft{
			Name:         name,
			DefaultValue: "should be ignored",
			IsArray:      propertyform.Bool(false),
		})
		if err != nil {
			t.Fatalf("%s: merge: %v", name, err)
		}
		if metamodel.Default(merged) != nil {
			t.Fatalf("%s: reference received a default", name)
		}
		raw, err := metamodel.MarshalProperty(merged)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		if containsKey(t, raw, "defaultValue") {
			t.Fatalf("%s: encoded reference carries defaultValue: %s", name, raw)
		}
	}
}

func TestMergeSubmission_ValidationErrors(t *testing.T) {
	original := testsupport.EmployeeProperty(t, "salary")

	cases := []struct {
		name  string
		draft propertyform.Draft
		want  propertyform.FieldErrors
	}{
		{
			name:  "empty name",
			draft: propertyform.Draft{Name: "", IsArray: propertyform.Bool(false)},
			want:  propertyform.FieldErrors{propertyform.FieldName: {propertyform.MessageNameRequired}},
		},
		{
			name:  "whitespace-only name",
			draft: propertyform.Draft{Name: "  ", IsArray: propertyform.Bool(false)},
			want:  propertyform.FieldErrors{propertyform.FieldName: {propertyform.MessageNameRequired}},
		},
		{
			name:  "indeterminate isArray",
			draft: propertyform.Draft{Name: "salary"},
			want:  propertyform.FieldErrors{propertyform.FieldIsArray: {propertyform.MessageIsArrayRequired}},
		},
		{
			name:  "unparsable number",
			draft: propertyform.Draft{Name: "salary", DefaultValue: "lots", IsArray: propertyform.Bool(false)},
			want:  propertyform.FieldErrors{propertyform.FieldDefaultValue: {"Default value must be a number"}},
		},
		{
			name:  "everything at once",
			draft: propertyform.Draft{DefaultValue: "NaN"},
			want: propertyform.FieldErrors{
				propertyform.FieldName:         {propertyform.MessageNameRequired},
				propertyform.FieldIsArray:      {propertyform.MessageIsArrayRequired},
				propertyform.FieldDefaultValue: {"Default value must be a number"},
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			merged, err := propertyform.MergeSubmission(original, tc.draft)
			if merged != nil {
				t.Fatalf("expected no merged property, got %v", merged)
			}
			var fieldErrs propertyform.FieldErrors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if diff := cmp.Diff(tc.want, fieldErrs); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeSubmission_IntegerRules(t *testing.T) {
	grade := testsupport.EmployeeProperty(t, "grade")
	draft := propertyform.DraftFrom(grade)

	draft.DefaultValue = "2.5"
	if _, err := propertyform.MergeSubmission(grade, draft); err == nil {
		t.Fatalf("fractional text should not coerce to an integer")
	}

	draft.DefaultValue = "9000000000"
	if _, err := propertyform.MergeSubmission(grade, draft); err == nil {
		t.Fatalf("integer defaults are 32 bit")
	}
}

func TestMergeSubmission_ValidatorsDoNotConstrainDefault(t *testing.T) {
	decl, _, _ := testsupport.HRModel().Declaration("Address")
	postCode, _, _ := metamodel.FindProperty(decl, "postCode")

	cases := []struct {
		name     string
		original metamodel.Property
		text     string
		want     metamodel.Value
	}{
		{name: "string outside pattern", original: postCode, text: "SW1A 1AA", want: metamodel.StringValue("SW1A 1AA")},
		{name: "string inside pattern", original: postCode, text: "12345", want: metamodel.StringValue("12345")},
		{name: "double below lower bound", original: withDomain(testsupport.EmployeeProperty(t, "salary")), text: "-1", want: metamodel.NumberValue(-1)},
		{name: "integer above upper bound", original: withIntegerDomain(testsupport.EmployeeProperty(t, "grade")), text: "99", want: metamodel.IntegerValue(99)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			draft := propertyform.DraftFrom(tc.original)
			draft.DefaultValue = tc.text
			merged, err := propertyform.MergeSubmission(tc.original, draft)
			if err != nil {
				t.Fatalf("default %q rejected: %v", tc.text, err)
			}
			if diff := cmp.Diff(tc.want, *metamodel.Default(merged)); diff != "" {
				t.Fatalf("default mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeSubmission_NilOriginal(t *testing.T) {
	_, err := propertyform.MergeSubmission(nil, propertyform.Draft{Name: "x", IsArray: propertyform.Bool(false)})
	if !errors.Is(err, propertyform.ErrNoProperty) {
		t.Fatalf("want ErrNoProperty, got %v", err)
	}
}

func withIntegerDomain(p metamodel.Property) metamodel.Property {
	integer := p.(metamodel.IntegerProperty)
	upper := int64(10)
	integer.Validator = &metamodel.IntegerDomain{Upper: &upper}
	return integer
}

func withDomain(p metamodel.Property) metamodel.Property {
	double := p.(metamodel.DoubleProperty)
	lower := 0.0
	double.Validator = &metamodel.DoubleDomain{Lower: &lower}
	return double
}
