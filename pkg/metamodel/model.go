package metamodel

import (
	"errors"
	"fmt"
	"strings"
)

// ClassPrefix qualifies metamodel class names.
const ClassPrefix = "concerto.metamodel@1.0.0."

// Model is a namespace-scoped declaration container.
type Model struct {
	Namespace    string
	Description  string
	Declarations []Declaration
}

// Declaration returns the declaration named name and its index.
func (m Model) Declaration(name string) (Declaration, int, bool) {
	for idx, decl := range m.Declarations {
		if decl.DeclarationName() == name {
			return decl, idx, true
		}
	}
	return nil, -1, false
}

// WithDeclaration returns a copy of m with the declaration at idx replaced.
func (m Model) WithDeclaration(idx int, decl Declaration) Model {
	decls := make([]Declaration, len(m.Declarations))
	copy(decls, m.Declarations)
	decls[idx] = decl
	m.Declarations = decls
	return m
}

// Validate checks the structural invariants of the model and returns every
// violation joined into one error.
func (m Model) Validate() error {
	var errs []error
	if strings.TrimSpace(m.Namespace) == "" {
		errs = append(errs, errors.New("namespace is required"))
	}

	seen := make(map[string]struct{}, len(m.Declarations))
	for idx, decl := range m.Declarations {
		if decl == nil {
			errs = append(errs, fmt.Errorf("declaration %d is nil", idx))
			continue
		}
		name := decl.DeclarationName()
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("declaration %d: name is required", idx))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("declaration %q: duplicate name", name))
		}
		seen[name] = struct{}{}
		errs = append(errs, validateProperties(decl)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("metamodel: model %q invalid: %w", m.Namespace, errors.Join(errs...))
}

func validateProperties(decl Declaration) []error {
	var errs []error
	name := decl.DeclarationName()
	_, isEnum := decl.(EnumDeclaration)
	seen := make(map[string]struct{})

	for idx, prop := range decl.PropertyList() {
		if prop == nil {
			errs = append(errs, fmt.Errorf("declaration %q: property %d is nil", name, idx))
			continue
		}
		propName := PropertyName(prop)
		if strings.TrimSpace(propName) == "" {
			errs = append(errs, fmt.Errorf("declaration %q: property %d: name is required", name, idx))
			continue
		}
		if _, dup := seen[propName]; dup {
			errs = append(errs, fmt.Errorf("declaration %q: property %q: duplicate name", name, propName))
		}
		seen[propName] = struct{}{}

		kind := prop.Kind()
		if isEnum && kind != KindEnum {
			errs = append(errs, fmt.Errorf("enum %q: member %q must be an enum property, got %s", name, propName, kind))
		}
		if !isEnum && kind == KindEnum {
			errs = append(errs, fmt.Errorf("concept %q: property %q: enum members only belong to enums", name, propName))
		}
		if target, ok := TargetType(prop); ok && strings.TrimSpace(target.Name) == "" {
			errs = append(errs, fmt.Errorf("declaration %q: property %q: target type is required", name, propName))
		}
		if def := Default(prop); def != nil && !def.IsValid() {
			errs = append(errs, fmt.Errorf("declaration %q: property %q: invalid default", name, propName))
		}
	}
	return errs
}

// Selection is the transient (namespace, declaration, property) tuple that
// drives which view the property sheet renders. Nil members are unselected.
type Selection struct {
	Namespace   *Model
	Declaration Declaration
	Property    Property
}

func (s Selection) HasNamespace() bool   { return s.Namespace != nil }
func (s Selection) HasDeclaration() bool { return s.Declaration != nil }
func (s Selection) HasProperty() bool    { return s.Property != nil }

// NamespaceID returns the selected namespace identifier or "".
func (s Selection) NamespaceID() string {
	if s.Namespace == nil {
		return ""
	}
	return s.Namespace.Namespace
}
