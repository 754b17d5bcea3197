package metamodel

import (
	"encoding/json"
	"fmt"
	"strings"
)

type wireModel struct {
	Class        string            `json:"$class"`
	Namespace    string            `json:"namespace"`
	Description  string            `json:"description,omitempty"`
	Declarations []json.RawMessage `json:"declarations"`
}

type wireDeclaration struct {
	Class       string              `json:"$class"`
	Name        string              `json:"name"`
	IsAbstract  bool                `json:"isAbstract,omitempty"`
	SuperType   *wireTypeIdentifier `json:"superType,omitempty"`
	Description string              `json:"description,omitempty"`
	Properties  []json.RawMessage   `json:"properties"`
}

type wireTypeIdentifier struct {
	Class     string `json:"$class"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

type wireProperty struct {
	Class        string              `json:"$class"`
	Name         string              `json:"name"`
	IsArray      bool                `json:"isArray"`
	IsOptional   bool                `json:"isOptional"`
	DefaultValue json.RawMessage     `json:"defaultValue,omitempty"`
	Type         *wireTypeIdentifier `json:"type,omitempty"`
	Validator    *wireValidator      `json:"validator,omitempty"`
}

type wireValidator struct {
	Class   string       `json:"$class"`
	Pattern string       `json:"pattern,omitempty"`
	Flags   string       `json:"flags,omitempty"`
	Lower   *json.Number `json:"lower,omitempty"`
	Upper   *json.Number `json:"upper,omitempty"`
}

var conceptKindsByClass = map[string]ConceptKind{
	"ConceptDeclaration":     ConceptPlain,
	"AssetDeclaration":       ConceptAsset,
	"ParticipantDeclaration": ConceptParticipant,
	"TransactionDeclaration": ConceptTransaction,
	"EventDeclaration":       ConceptEvent,
}

// MarshalJSON encodes the model in metamodel JSON form.
func (m Model) MarshalJSON() ([]byte, error) {
	out := wireModel{
		Class:        ClassPrefix + "Model",
		Namespace:    m.Namespace,
		Description:  m.Description,
		Declarations: make([]json.RawMessage, 0, len(m.Declarations)),
	}
	for _, decl := range m.Declarations {
		raw, err := MarshalDeclaration(decl)
		if err != nil {
			return nil, err
		}
		out.Declarations = append(out.Declarations, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes metamodel JSON into m.
func (m *Model) UnmarshalJSON(data []byte) error {
	var in wireModel
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("metamodel: decode model: %w", err)
	}
	decoded := Model{
		Namespace:    in.Namespace,
		Description:  in.Description,
		Declarations: make([]Declaration, 0, len(in.Declarations)),
	}
	for idx, raw := range in.Declarations {
		decl, err := UnmarshalDeclaration(raw)
		if err != nil {
			return fmt.Errorf("metamodel: model %q declaration %d: %w", in.Namespace, idx, err)
		}
		decoded.Declarations = append(decoded.Declarations, decl)
	}
	*m = decoded
	return nil
}

// MarshalDeclaration encodes a declaration with its $class discriminator.
func MarshalDeclaration(d Declaration) ([]byte, error) {
	var out wireDeclaration
	switch v := d.(type) {
	case ConceptDeclaration:
		out = wireDeclaration{
			Class:       ClassPrefix + v.Kind.ConceptClass(),
			Name:        v.Name,
			IsAbstract:  v.IsAbstract,
			SuperType:   toWireType(v.SuperType),
			Description: v.Description,
		}
	case EnumDeclaration:
		out = wireDeclaration{
			Class:       ClassPrefix + "EnumDeclaration",
			Name:        v.Name,
			Description: v.Description,
		}
	default:
		return nil, fmt.Errorf("metamodel: unsupported declaration %T", d)
	}

	out.Properties = make([]json.RawMessage, 0, len(d.PropertyList()))
	for _, prop := range d.PropertyList() {
		raw, err := MarshalProperty(prop)
		if err != nil {
			return nil, fmt.Errorf("metamodel: declaration %q: %w", out.Name, err)
		}
		out.Properties = append(out.Properties, raw)
	}
	return json.Marshal(out)
}

// UnmarshalDeclaration decodes a declaration, dispatching on $class.
func UnmarshalDeclaration(data []byte) (Declaration, error) {
	var in wireDeclaration
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode declaration: %w", err)
	}
	props := make([]Property, 0, len(in.Properties))
	for idx, raw := range in.Properties {
		prop, err := UnmarshalProperty(raw)
		if err != nil {
			return nil, fmt.Errorf("declaration %q property %d: %w", in.Name, idx, err)
		}
		props = append(props, prop)
	}

	class := shortClass(in.Class)
	if class == "EnumDeclaration" {
		return EnumDeclaration{Name: in.Name, Description: in.Description, Properties: props}, nil
	}
	kind, ok := conceptKindsByClass[class]
	if !ok {
		return nil, fmt.Errorf("unknown declaration class %q", in.Class)
	}
	return ConceptDeclaration{
		Name:        in.Name,
		Kind:        kind,
		IsAbstract:  in.IsAbstract,
		SuperType:   fromWireType(in.SuperType),
		Description: in.Description,
		Properties:  props,
	}, nil
}

// MarshalProperty encodes a property with its $class discriminator.
func MarshalProperty(p Property) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("metamodel: property is nil")
	}
	base := p.Base()
	out := wireProperty{
		Class:      Class(p),
		Name:       base.Name,
		IsArray:    base.IsArray,
		IsOptional: base.IsOptional,
	}
	if def := Default(p); def != nil && def.IsValid() {
		raw, err := def.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("metamodel: property %q default: %w", base.Name, err)
		}
		out.DefaultValue = raw
	}

	switch v := p.(type) {
	case StringProperty:
		if v.Validator != nil {
			out.Validator = &wireValidator{
				Class:   ClassPrefix + "StringRegexValidator",
				Pattern: v.Validator.Pattern,
				Flags:   v.Validator.Flags,
			}
		}
	case DoubleProperty:
		if v.Validator != nil {
			out.Validator = &wireValidator{
				Class: ClassPrefix + "DoubleDomainValidator",
				Lower: floatNumber(v.Validator.Lower),
				Upper: floatNumber(v.Validator.Upper),
			}
		}
	case IntegerProperty:
		out.Validator = integerValidator("IntegerDomainValidator", v.Validator)
	case LongProperty:
		out.Validator = integerValidator("LongDomainValidator", v.Validator)
	case ObjectProperty:
		out.Type = toWireType(&v.Type)
	case RelationshipProperty:
		out.Type = toWireType(&v.Type)
	}
	return json.Marshal(out)
}

// UnmarshalProperty decodes a property, dispatching on $class.
func UnmarshalProperty(data []byte) (Property, error) {
	var in wireProperty
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode property: %w", err)
	}

	kind, ok := kindFromClass(in.Class)
	if !ok {
		return nil, fmt.Errorf("unknown property class %q", in.Class)
	}
	base := PropertyBase{Name: in.Name, IsArray: in.IsArray, IsOptional: in.IsOptional}

	var def *Value
	if len(in.DefaultValue) > 0 && string(in.DefaultValue) != "null" {
		if !kind.CarriesDefault() {
			return nil, fmt.Errorf("property %q: %s cannot carry a default value", in.Name, kind.ClassName())
		}
		value, err := ValueFromJSON(in.DefaultValue, kind.IsIntegral())
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", in.Name, err)
		}
		def = &value
	}

	switch kind {
	case KindString:
		prop := StringProperty{PropertyBase: base, Default: def}
		if in.Validator != nil {
			prop.Validator = &StringValidator{Pattern: in.Validator.Pattern, Flags: in.Validator.Flags}
		}
		return prop, nil
	case KindBoolean:
		return BooleanProperty{PropertyBase: base, Default: def}, nil
	case KindDouble:
		prop := DoubleProperty{PropertyBase: base, Default: def}
		if in.Validator != nil {
			lower, err := parseFloatNumber(in.Validator.Lower)
			if err != nil {
				return nil, fmt.Errorf("property %q lower bound: %w", in.Name, err)
			}
			upper, err := parseFloatNumber(in.Validator.Upper)
			if err != nil {
				return nil, fmt.Errorf("property %q upper bound: %w", in.Name, err)
			}
			prop.Validator = &DoubleDomain{Lower: lower, Upper: upper}
		}
		return prop, nil
	case KindInteger, KindLong:
		var domain *IntegerDomain
		if in.Validator != nil {
			lower, err := parseIntNumber(in.Validator.Lower)
			if err != nil {
				return nil, fmt.Errorf("property %q lower bound: %w", in.Name, err)
			}
			upper, err := parseIntNumber(in.Validator.Upper)
			if err != nil {
				return nil, fmt.Errorf("property %q upper bound: %w", in.Name, err)
			}
			domain = &IntegerDomain{Lower: lower, Upper: upper}
		}
		if kind == KindLong {
			return LongProperty{PropertyBase: base, Default: def, Validator: domain}, nil
		}
		return IntegerProperty{PropertyBase: base, Default: def, Validator: domain}, nil
	case KindDateTime:
		return DateTimeProperty{PropertyBase: base, Default: def}, nil
	case KindObject, KindRelationship:
		if in.Type == nil {
			return nil, fmt.Errorf("property %q: %s requires a type", in.Name, kind.ClassName())
		}
		target := *fromWireType(in.Type)
		if kind == KindObject {
			return ObjectProperty{PropertyBase: base, Type: target}, nil
		}
		return RelationshipProperty{PropertyBase: base, Type: target}, nil
	default:
		return EnumProperty{PropertyBase: base}, nil
	}
}

func kindFromClass(class string) (PropertyKind, bool) {
	short := shortClass(class)
	for _, kind := range PropertyKinds {
		if kind.ClassName() == short {
			return kind, true
		}
	}
	return "", false
}

func shortClass(class string) string {
	trimmed := strings.TrimSpace(class)
	if idx := strings.LastIndex(trimmed, "."); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func toWireType(t *TypeIdentifier) *wireTypeIdentifier {
	if t == nil {
		return nil
	}
	return &wireTypeIdentifier{
		Class:     ClassPrefix + "TypeIdentifier",
		Name:      t.Name,
		Namespace: t.Namespace,
	}
}

func fromWireType(t *wireTypeIdentifier) *TypeIdentifier {
	if t == nil {
		return nil
	}
	return &TypeIdentifier{Name: t.Name, Namespace: t.Namespace}
}

func integerValidator(class string, domain *IntegerDomain) *wireValidator {
	if domain == nil {
		return nil
	}
	return &wireValidator{
		Class: ClassPrefix + class,
		Lower: intNumber(domain.Lower),
		Upper: intNumber(domain.Upper),
	}
}

func floatNumber(f *float64) *json.Number {
	if f == nil {
		return nil
	}
	n := json.Number(fmt.Sprint(*f))
	return &n
}

func intNumber(i *int64) *json.Number {
	if i == nil {
		return nil
	}
	n := json.Number(fmt.Sprint(*i))
	return &n
}

func parseFloatNumber(n *json.Number) (*float64, error) {
	if n == nil {
		return nil, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseIntNumber(n *json.Number) (*int64, error) {
	if n == nil {
		return nil, nil
	}
	i, err := n.Int64()
	if err != nil {
		return nil, err
	}
	return &i, nil
}
