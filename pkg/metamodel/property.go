package metamodel

// PropertyKind is the variant tag of a Property.
type PropertyKind string

const (
	KindString       PropertyKind = "String"
	KindBoolean      PropertyKind = "Boolean"
	KindDouble       PropertyKind = "Double"
	KindInteger      PropertyKind = "Integer"
	KindLong         PropertyKind = "Long"
	KindDateTime     PropertyKind = "DateTime"
	KindObject       PropertyKind = "Object"
	KindRelationship PropertyKind = "Relationship"
	KindEnum         PropertyKind = "Enum"
)

// PropertyKinds lists every variant in declaration order.
var PropertyKinds = []PropertyKind{
	KindString, KindBoolean, KindDouble, KindInteger, KindLong,
	KindDateTime, KindObject, KindRelationship, KindEnum,
}

// ClassName returns the metamodel class short name, e.g. "StringProperty".
func (k PropertyKind) ClassName() string {
	return string(k) + "Property"
}

// IsNumeric reports whether defaults of this kind are numbers.
func (k PropertyKind) IsNumeric() bool {
	switch k {
	case KindDouble, KindInteger, KindLong:
		return true
	}
	return false
}

// IsIntegral reports whether numeric defaults of this kind are whole numbers.
func (k PropertyKind) IsIntegral() bool {
	return k == KindInteger || k == KindLong
}

// IsBoolean reports whether defaults of this kind are booleans.
func (k PropertyKind) IsBoolean() bool { return k == KindBoolean }

// IsReference reports whether the kind points at another declaration
// (object or relationship). Reference kinds never carry a default.
func (k PropertyKind) IsReference() bool {
	return k == KindObject || k == KindRelationship
}

// CarriesDefault reports whether the variant has a defaultValue slot.
func (k PropertyKind) CarriesDefault() bool {
	switch k {
	case KindString, KindBoolean, KindDouble, KindInteger, KindLong, KindDateTime:
		return true
	}
	return false
}

// PropertyBase holds the attributes shared by every property variant.
type PropertyBase struct {
	Name       string
	IsArray    bool
	IsOptional bool
}

// TypeIdentifier references a declaration, optionally in another namespace.
type TypeIdentifier struct {
	Name      string
	Namespace string
}

// Qualified returns namespace.Name, or Name when no namespace is set.
func (t TypeIdentifier) Qualified() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// StringValidator constrains string values with a regular expression.
type StringValidator struct {
	Pattern string
	Flags   string
}

// DoubleDomain bounds double values; nil bounds are open.
type DoubleDomain struct {
	Lower *float64
	Upper *float64
}

// IntegerDomain bounds integer and long values; nil bounds are open.
type IntegerDomain struct {
	Lower *int64
	Upper *int64
}

// Property is implemented by every property variant. The set of variants is
// closed; use a type switch over the concrete types.
type Property interface {
	Kind() PropertyKind
	Base() PropertyBase
	isProperty()
}

type StringProperty struct {
	PropertyBase
	Default   *Value
	Validator *StringValidator
}

type BooleanProperty struct {
	PropertyBase
	Default *Value
}

type DoubleProperty struct {
	PropertyBase
	Default   *Value
	Validator *DoubleDomain
}

type IntegerProperty struct {
	PropertyBase
	Default   *Value
	Validator *IntegerDomain
}

type LongProperty struct {
	PropertyBase
	Default   *Value
	Validator *IntegerDomain
}

type DateTimeProperty struct {
	PropertyBase
	Default *Value
}

// ObjectProperty embeds another concept (or enum) by type.
type ObjectProperty struct {
	PropertyBase
	Type TypeIdentifier
}

// RelationshipProperty references an identified concept by type.
type RelationshipProperty struct {
	PropertyBase
	Type TypeIdentifier
}

// EnumProperty is a member of an EnumDeclaration.
type EnumProperty struct {
	PropertyBase
}

func (StringProperty) Kind() PropertyKind       { return KindString }
func (BooleanProperty) Kind() PropertyKind      { return KindBoolean }
func (DoubleProperty) Kind() PropertyKind       { return KindDouble }
func (IntegerProperty) Kind() PropertyKind      { return KindInteger }
func (LongProperty) Kind() PropertyKind         { return KindLong }
func (DateTimeProperty) Kind() PropertyKind     { return KindDateTime }
func (ObjectProperty) Kind() PropertyKind       { return KindObject }
func (RelationshipProperty) Kind() PropertyKind { return KindRelationship }
func (EnumProperty) Kind() PropertyKind         { return KindEnum }

func (p StringProperty) Base() PropertyBase       { return p.PropertyBase }
func (p BooleanProperty) Base() PropertyBase      { return p.PropertyBase }
func (p DoubleProperty) Base() PropertyBase       { return p.PropertyBase }
func (p IntegerProperty) Base() PropertyBase      { return p.PropertyBase }
func (p LongProperty) Base() PropertyBase         { return p.PropertyBase }
func (p DateTimeProperty) Base() PropertyBase     { return p.PropertyBase }
func (p ObjectProperty) Base() PropertyBase       { return p.PropertyBase }
func (p RelationshipProperty) Base() PropertyBase { return p.PropertyBase }
func (p EnumProperty) Base() PropertyBase         { return p.PropertyBase }

func (StringProperty) isProperty()       {}
func (BooleanProperty) isProperty()      {}
func (DoubleProperty) isProperty()       {}
func (IntegerProperty) isProperty()      {}
func (LongProperty) isProperty()         {}
func (DateTimeProperty) isProperty()     {}
func (ObjectProperty) isProperty()       {}
func (RelationshipProperty) isProperty() {}
func (EnumProperty) isProperty()         {}

// PropertyName returns the property's name, or "" for a nil property.
func PropertyName(p Property) string {
	if p == nil {
		return ""
	}
	return p.Base().Name
}

// Class returns the fully qualified metamodel class of the property.
func Class(p Property) string {
	if p == nil {
		return ""
	}
	return ClassPrefix + p.Kind().ClassName()
}

// Default returns the property's default value, or nil when the variant has
// none or none is set.
func Default(p Property) *Value {
	switch v := p.(type) {
	case StringProperty:
		return v.Default
	case BooleanProperty:
		return v.Default
	case DoubleProperty:
		return v.Default
	case IntegerProperty:
		return v.Default
	case LongProperty:
		return v.Default
	case DateTimeProperty:
		return v.Default
	default:
		return nil
	}
}

// WithDefault returns a copy of p whose default is def. Variants without a
// default slot are returned unchanged.
func WithDefault(p Property, def *Value) Property {
	switch v := p.(type) {
	case StringProperty:
		v.Default = def
		return v
	case BooleanProperty:
		v.Default = def
		return v
	case DoubleProperty:
		v.Default = def
		return v
	case IntegerProperty:
		v.Default = def
		return v
	case LongProperty:
		v.Default = def
		return v
	case DateTimeProperty:
		v.Default = def
		return v
	default:
		return p
	}
}

// WithBase returns a copy of p with its shared attributes replaced.
func WithBase(p Property, base PropertyBase) Property {
	switch v := p.(type) {
	case StringProperty:
		v.PropertyBase = base
		return v
	case BooleanProperty:
		v.PropertyBase = base
		return v
	case DoubleProperty:
		v.PropertyBase = base
		return v
	case IntegerProperty:
		v.PropertyBase = base
		return v
	case LongProperty:
		v.PropertyBase = base
		return v
	case DateTimeProperty:
		v.PropertyBase = base
		return v
	case ObjectProperty:
		v.PropertyBase = base
		return v
	case RelationshipProperty:
		v.PropertyBase = base
		return v
	case EnumProperty:
		v.PropertyBase = base
		return v
	default:
		return p
	}
}

// TargetType returns the referenced type for object and relationship
// properties.
func TargetType(p Property) (TypeIdentifier, bool) {
	switch v := p.(type) {
	case ObjectProperty:
		return v.Type, true
	case RelationshipProperty:
		return v.Type, true
	default:
		return TypeIdentifier{}, false
	}
}
