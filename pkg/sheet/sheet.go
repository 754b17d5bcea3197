// Package sheet decides which property-sheet view to render for the current
// selection. Selection is a pure, total function: every selection maps to
// exactly one view, and selections that describe no editable entity map to
// ViewNone.
package sheet

import "github.com/goliatone/go-modelsheet/pkg/metamodel"

// ViewKind enumerates the mutually exclusive sheet variants.
type ViewKind string

const (
	ViewNone            ViewKind = "none"
	ViewNamespace       ViewKind = "namespace"
	ViewConcept         ViewKind = "concept"
	ViewEnum            ViewKind = "enum"
	ViewConceptProperty ViewKind = "concept-property"
	ViewEnumProperty    ViewKind = "enum-property"
)

// View is the chosen variant plus the entities it was selected for. Fields
// the variant does not use are left nil.
type View struct {
	Kind        ViewKind
	Namespace   *metamodel.Model
	Declaration metamodel.Declaration
	Property    metamodel.Property

	invalid bool
}

// Select maps a selection onto a view. Rules are evaluated in priority order
// and the first match wins.
func Select(sel metamodel.Selection) View {
	switch {
	case sel.HasProperty() && sel.HasDeclaration() && metamodel.IsEnum(sel.Declaration):
		return View{Kind: ViewEnumProperty, Namespace: sel.Namespace, Declaration: sel.Declaration, Property: sel.Property}
	case sel.HasProperty() && sel.HasDeclaration():
		return View{Kind: ViewConceptProperty, Namespace: sel.Namespace, Declaration: sel.Declaration, Property: sel.Property}
	case sel.HasProperty():
		// A property without its owning declaration has nothing to edit.
		return View{Kind: ViewNone, invalid: true}
	case sel.HasDeclaration() && metamodel.IsEnum(sel.Declaration):
		return View{Kind: ViewEnum, Namespace: sel.Namespace, Declaration: sel.Declaration}
	case sel.HasDeclaration():
		return View{Kind: ViewConcept, Namespace: sel.Namespace, Declaration: sel.Declaration}
	case sel.HasNamespace():
		return View{Kind: ViewNamespace, Namespace: sel.Namespace}
	default:
		return View{Kind: ViewNone}
	}
}

// Invalid reports whether the view came from a selection that cannot be
// rendered (a property selected without a declaration).
func (v View) Invalid() bool { return v.invalid }

// Empty reports whether nothing should be rendered.
func (v View) Empty() bool { return v.Kind == ViewNone }

// Concept returns the declaration as a concept for concept and
// concept-property views.
func (v View) Concept() (metamodel.ConceptDeclaration, bool) {
	concept, ok := v.Declaration.(metamodel.ConceptDeclaration)
	return concept, ok
}

// Enum returns the declaration as an enum for enum and enum-property views.
func (v View) Enum() (metamodel.EnumDeclaration, bool) {
	enum, ok := v.Declaration.(metamodel.EnumDeclaration)
	return enum, ok
}

// NamespaceID returns the namespace identifier or "".
func (v View) NamespaceID() string {
	if v.Namespace == nil {
		return ""
	}
	return v.Namespace.Namespace
}

// DeclarationName returns the declaration name or "".
func (v View) DeclarationName() string {
	if v.Declaration == nil {
		return ""
	}
	return v.Declaration.DeclarationName()
}

// PropertyName returns the property name or "".
func (v View) PropertyName() string {
	return metamodel.PropertyName(v.Property)
}
