package metamodel

// DeclarationKind is the variant tag of a Declaration.
type DeclarationKind string

const (
	DeclarationConcept DeclarationKind = "Concept"
	DeclarationEnum    DeclarationKind = "Enum"
)

// ConceptKind refines concept declarations. Every kind is dispatched as a
// concept by the property sheet.
type ConceptKind string

const (
	ConceptPlain       ConceptKind = "Concept"
	ConceptAsset       ConceptKind = "Asset"
	ConceptParticipant ConceptKind = "Participant"
	ConceptTransaction ConceptKind = "Transaction"
	ConceptEvent       ConceptKind = "Event"
)

// Declaration is implemented by ConceptDeclaration and EnumDeclaration.
type Declaration interface {
	DeclarationName() string
	DeclarationKind() DeclarationKind
	PropertyList() []Property
	isDeclaration()
}

type ConceptDeclaration struct {
	Name        string
	Kind        ConceptKind
	IsAbstract  bool
	SuperType   *TypeIdentifier
	Description string
	Properties  []Property
}

type EnumDeclaration struct {
	Name        string
	Description string
	Properties  []Property
}

func (d ConceptDeclaration) DeclarationName() string          { return d.Name }
func (d ConceptDeclaration) DeclarationKind() DeclarationKind { return DeclarationConcept }
func (d ConceptDeclaration) PropertyList() []Property         { return d.Properties }
func (ConceptDeclaration) isDeclaration()                     {}

func (d EnumDeclaration) DeclarationName() string          { return d.Name }
func (d EnumDeclaration) DeclarationKind() DeclarationKind { return DeclarationEnum }
func (d EnumDeclaration) PropertyList() []Property         { return d.Properties }
func (EnumDeclaration) isDeclaration()                     {}

// ConceptClass returns the metamodel class short name for the concept kind.
func (k ConceptKind) ConceptClass() string {
	if k == "" {
		k = ConceptPlain
	}
	return string(k) + "Declaration"
}

// IsEnum reports whether d is an enum declaration.
func IsEnum(d Declaration) bool {
	_, ok := d.(EnumDeclaration)
	return ok
}

// DeclarationClass returns the fully qualified metamodel class of d.
func DeclarationClass(d Declaration) string {
	switch v := d.(type) {
	case ConceptDeclaration:
		return ClassPrefix + v.Kind.ConceptClass()
	case EnumDeclaration:
		return ClassPrefix + "EnumDeclaration"
	default:
		return ""
	}
}

// FindProperty returns the property named name and its index.
func FindProperty(d Declaration, name string) (Property, int, bool) {
	if d == nil {
		return nil, -1, false
	}
	for idx, prop := range d.PropertyList() {
		if PropertyName(prop) == name {
			return prop, idx, true
		}
	}
	return nil, -1, false
}

// WithProperties returns a copy of d owning props.
func WithProperties(d Declaration, props []Property) Declaration {
	switch v := d.(type) {
	case ConceptDeclaration:
		v.Properties = props
		return v
	case EnumDeclaration:
		v.Properties = props
		return v
	default:
		return d
	}
}

// ReplaceProperty returns a copy of d with the property at idx replaced. The
// original property slice is left untouched.
func ReplaceProperty(d Declaration, idx int, prop Property) Declaration {
	src := d.PropertyList()
	props := make([]Property, len(src))
	copy(props, src)
	props[idx] = prop
	return WithProperties(d, props)
}
