// Package metamodel defines the namespaced declaration tree edited by the
// property sheet: models own declarations (concepts or enums) and declarations
// own properties.
//
// Declarations and properties are sealed sum types. Callers switch over the
// concrete variant types (ConceptDeclaration, EnumDeclaration, StringProperty,
// ObjectProperty, ...) instead of probing a discriminator string, and every
// helper that derives a new value returns a copy so snapshots handed to the
// form layer are never mutated in place.
//
// The JSON encoding follows the Concerto metamodel shape where each node
// carries a `$class` discriminator such as
// `concerto.metamodel@1.0.0.StringProperty`.
package metamodel
