// Package propertyform edits a single concept property. A Form binds one
// (namespace, concept, property) snapshot, keeps a text Draft of the editable
// fields (name, defaultValue, isArray) and, on Submit, validates the draft,
// coerces the default to the property's variant, overlays the draft on the
// snapshot and publishes exactly one store update.
//
// MergeSubmission holds the pure part of that pipeline so it can be exercised
// without a form or a store:
//
//	merged, err := propertyform.MergeSubmission(original, propertyform.Draft{
//		Name:         "salary",
//		DefaultValue: "3.14",
//		IsArray:      propertyform.Bool(false),
//	})
package propertyform
