package sheet_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/sheet"
)

var (
	namespace = &metamodel.Model{Namespace: "org.acme@1.0.0"}
	concept   = metamodel.ConceptDeclaration{
		Name: "Person",
		Properties: []metamodel.Property{
			metamodel.StringProperty{PropertyBase: metamodel.PropertyBase{Name: "name"}},
		},
	}
	enum = metamodel.EnumDeclaration{
		Name: "Colour",
		Properties: []metamodel.Property{
			metamodel.EnumProperty{PropertyBase: metamodel.PropertyBase{Name: "RED"}},
		},
	}
	stringProp = concept.Properties[0]
	enumProp   = enum.Properties[0]
)

func TestSelect_DecisionTable(t *testing.T) {
	cases := []struct {
		name    string
		sel     metamodel.Selection
		want    sheet.View
		invalid bool
	}{
		{
			name: "enum property",
			sel:  metamodel.Selection{Namespace: namespace, Declaration: enum, Property: enumProp},
			want: sheet.View{Kind: sheet.ViewEnumProperty, Namespace: namespace, Declaration: enum, Property: enumProp},
		},
		{
			name: "concept property",
			sel:  metamodel.Selection{Namespace: namespace, Declaration: concept, Property: stringProp},
			want: sheet.View{Kind: sheet.ViewConceptProperty, Namespace: namespace, Declaration: concept, Property: stringProp},
		},
		{
			name:    "property without declaration",
			sel:     metamodel.Selection{Namespace: namespace, Property: stringProp},
			want:    sheet.View{Kind: sheet.ViewNone},
			invalid: true,
		},
		{
			name: "enum",
			sel:  metamodel.Selection{Namespace: namespace, Declaration: enum},
			want: sheet.View{Kind: sheet.ViewEnum, Namespace: namespace, Declaration: enum},
		},
		{
			name: "concept",
			sel:  metamodel.Selection{Namespace: namespace, Declaration: concept},
			want: sheet.View{Kind: sheet.ViewConcept, Namespace: namespace, Declaration: concept},
		},
		{
			name: "namespace only",
			sel:  metamodel.Selection{Namespace: namespace},
			want: sheet.View{Kind: sheet.ViewNamespace, Namespace: namespace},
		},
		{
			name: "nothing selected",
			sel:  metamodel.Selection{},
			want: sheet.View{Kind: sheet.ViewNone},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := sheet.Select(tc.sel)
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(sheet.View{})); diff != "" && !tc.invalid {
				t.Fatalf("view mismatch (-want +got):\n%s", diff)
			}
			if got.Kind != tc.want.Kind {
				t.Fatalf("kind: want %s, got %s", tc.want.Kind, got.Kind)
			}
			if got.Invalid() != tc.invalid {
				t.Fatalf("invalid: want %v, got %v", tc.invalid, got.Invalid())
			}
		})
	}
}

func TestSelect_EveryConceptKindDispatchesAsConcept(t *testing.T) {
	kinds := []metamodel.ConceptKind{
		metamodel.ConceptPlain,
		metamodel.ConceptAsset,
		metamodel.ConceptParticipant,
		metamodel.ConceptTransaction,
		metamodel.ConceptEvent,
	}
	for _, kind := range kinds {
		decl := concept
		decl.Kind = kind

		view := sheet.Select(metamodel.Selection{Namespace: namespace, Declaration: decl, Property: stringProp})
		if view.Kind != sheet.ViewConceptProperty {
			t.Fatalf("%s with property: want concept-property, got %s", kind, view.Kind)
		}
		got, ok := view.Concept()
		if !ok || got.Name != decl.Name || got.Kind != kind {
			t.Fatalf("%s: concept not passed through: %+v", kind, got)
		}
		if view.Property == nil || view.PropertyName() != "name" {
			t.Fatalf("%s: property not passed through", kind)
		}

		if view := sheet.Select(metamodel.Selection{Namespace: namespace, Declaration: decl}); view.Kind != sheet.ViewConcept {
			t.Fatalf("%s without property: want concept, got %s", kind, view.Kind)
		}
	}
}

func TestSelect_EnumPropertyPassesTripleThrough(t *testing.T) {
	view := sheet.Select(metamodel.Selection{Namespace: namespace, Declaration: enum, Property: enumProp})

	if view.Namespace != namespace {
		t.Fatalf("namespace pointer not passed through")
	}
	got, ok := view.Enum()
	if !ok {
		t.Fatalf("expected enum declaration, got %T", view.Declaration)
	}
	if diff := cmp.Diff(enum, got); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(enumProp, view.Property); diff != "" {
		t.Fatalf("property mismatch (-want +got):\n%s", diff)
	}
	if view.NamespaceID() != "org.acme@1.0.0" || view.DeclarationName() != "Colour" || view.PropertyName() != "RED" {
		t.Fatalf("accessors disagree with view: %s/%s/%s", view.NamespaceID(), view.DeclarationName(), view.PropertyName())
	}
}

func TestSelect_EmptyViews(t *testing.T) {
	if !sheet.Select(metamodel.Selection{}).Empty() {
		t.Fatalf("empty selection should render nothing")
	}
	if !sheet.Select(metamodel.Selection{Property: stringProp}).Empty() {
		t.Fatalf("property-only selection should render nothing")
	}
	if sheet.Select(metamodel.Selection{Namespace: namespace}).Empty() {
		t.Fatalf("namespace selection should render the namespace view")
	}
}
