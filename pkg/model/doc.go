// Package model defines the typed form model consumed by renderers. Forms are
// built by the packages that own an editable entity (see propertyform) and are
// decorated before rendering. Validation rules expose canonical identifiers
// (required, oneOf, min/max, minLength, pattern) with string parameters so
// renderers can map them onto HTML attributes or prompt validators. Metadata
// carries domain facts (property kind, target type) while UIHints carries
// renderer-facing directives such as `widget`, `inputType` or `helpText`.
package model
