package propertyform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

var (
	// ErrUnknownField is returned by Set for fields the form does not edit.
	ErrUnknownField = errors.New("propertyform: unknown field")
	// ErrNoDefault is returned when setting a default on a property variant
	// that cannot carry one.
	ErrNoDefault = errors.New("propertyform: property variant has no default value")
	// ErrNoUpdater is returned by Submit when the form was built without a
	// store.
	ErrNoUpdater = errors.New("propertyform: updater is required")
)

// Form binds one property snapshot to an editable draft. A Form is used by a
// single actor at a time and is not safe for concurrent use.
type Form struct {
	updater   store.Updater
	namespace string
	concept   metamodel.ConceptDeclaration
	property  metamodel.Property
	draft     Draft
	errors    FieldErrors
}

// New returns a form for prop, owned by concept in namespace, that publishes
// through updater.
func New(updater store.Updater, namespace string, concept metamodel.ConceptDeclaration, prop metamodel.Property) *Form {
	f := &Form{updater: updater}
	f.Load(namespace, concept, prop)
	return f
}

// Load binds a new snapshot. Any unsaved draft and errors are discarded.
func (f *Form) Load(namespace string, concept metamodel.ConceptDeclaration, prop metamodel.Property) {
	f.namespace = namespace
	f.concept = concept
	f.property = prop
	f.draft = DraftFrom(prop)
	f.errors = nil
}

func (f *Form) Namespace() string                     { return f.namespace }
func (f *Form) Concept() metamodel.ConceptDeclaration { return f.concept }
func (f *Form) Property() metamodel.Property          { return f.property }

// Draft returns a copy of the in-progress draft.
func (f *Form) Draft() Draft { return f.draft.clone() }

// Errors returns the field errors of the last failed Submit, or nil.
func (f *Form) Errors() FieldErrors { return f.errors }

// Dirty reports whether the draft differs from the bound snapshot.
func (f *Form) Dirty() bool {
	seed := DraftFrom(f.property)
	if f.draft.Name != seed.Name || f.draft.DefaultValue != seed.DefaultValue {
		return true
	}
	if f.draft.IsArray == nil {
		return true
	}
	return *f.draft.IsArray != *seed.IsArray
}

// Set updates one draft field from its text form. isArray accepts the
// checkbox spellings understood by DecodeValues; anything else leaves it
// indeterminate so validation reports it.
func (f *Form) Set(field, value string) error {
	switch field {
	case FieldName:
		f.draft.Name = value
	case FieldDefaultValue:
		if !f.acceptsDefault() {
			return fmt.Errorf("%w: %s", ErrNoDefault, metamodel.Class(f.property))
		}
		f.draft.DefaultValue = value
	case FieldIsArray:
		f.draft.IsArray = parseCheckbox(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetDraft replaces the whole draft. A default on a variant that cannot carry
// one is dropped.
func (f *Form) SetDraft(d Draft) {
	d = d.clone()
	if !f.acceptsDefault() {
		d.DefaultValue = ""
	}
	f.draft = d
}

// Submit merges the draft into the snapshot and publishes exactly one update
// addressed by the snapshot's original names. Validation failures are
// returned as FieldErrors and never reach the store. On success the form
// rebinds to the merged property.
func (f *Form) Submit(ctx context.Context) (metamodel.Property, error) {
	merged, err := MergeSubmission(f.property, f.draft)
	if err != nil {
		var fieldErrs FieldErrors
		if errors.As(err, &fieldErrs) {
			f.errors = fieldErrs
		}
		return nil, err
	}
	f.errors = nil

	if f.updater == nil {
		return nil, ErrNoUpdater
	}
	original := metamodel.PropertyName(f.property)
	if err := f.updater.UpdateProperty(ctx, f.namespace, f.concept.Name, original, merged); err != nil {
		return nil, fmt.Errorf("propertyform: update %s.%s: %w", f.concept.Name, original, err)
	}

	if _, idx, ok := metamodel.FindProperty(f.concept, original); ok {
		f.concept = metamodel.ReplaceProperty(f.concept, idx, merged).(metamodel.ConceptDeclaration)
	}
	f.property = merged
	f.draft = DraftFrom(merged)
	return merged, nil
}

func (f *Form) acceptsDefault() bool {
	return f.property != nil && f.property.Kind().CarriesDefault()
}

func parseCheckbox(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "1":
		return Bool(true)
	case "off", "0", "":
		return Bool(false)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return Bool(b)
}
