package propertyform

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
)

// ErrNoProperty is returned when there is no snapshot to merge into.
var ErrNoProperty = errors.New("propertyform: no property selected")

// MergeSubmission validates draft, coerces its default to the variant of
// original and overlays the draft fields on original. original is never
// modified; the merged copy is returned.
//
// Coercion rules: Double parses a float, Integer and Long parse an integer,
// Boolean converts exactly "true" or "false" and keeps any other text as a
// string. Empty default text clears the default. Text equal to the current
// default's rendering keeps the current value. Object and Relationship
// properties never receive a default.
func MergeSubmission(original metamodel.Property, draft Draft) (metamodel.Property, error) {
	if original == nil {
		return nil, ErrNoProperty
	}

	errs := Validate(draft)
	def, coerceErrs := coerceDefault(original, draft.DefaultValue)
	errs = merge(errs, coerceErrs)
	if len(errs) > 0 {
		return nil, errs
	}

	base := original.Base()
	base.Name = draft.Name
	base.IsArray = *draft.IsArray

	merged := metamodel.WithBase(original, base)
	if original.Kind().CarriesDefault() {
		merged = metamodel.WithDefault(merged, def)
	}
	return merged, nil
}

func coerceDefault(original metamodel.Property, text string) (*metamodel.Value, FieldErrors) {
	kind := original.Kind()
	if !kind.CarriesDefault() || text == "" {
		return nil, nil
	}
	if current := metamodel.Default(original); current != nil && current.Text() == text {
		return current, nil
	}

	var (
		value metamodel.Value
		errs  = FieldErrors{}
	)
	switch original.(type) {
	case metamodel.DoubleProperty:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs.Add(FieldDefaultValue, "Default value must be a number")
			return nil, errs
		}
		value = metamodel.NumberValue(f)
	case metamodel.IntegerProperty, metamodel.LongProperty:
		bits := 64
		if kind == metamodel.KindInteger {
			bits = 32
		}
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, bits)
		if err != nil {
			errs.Add(FieldDefaultValue, "Default value must be a whole number")
			return nil, errs
		}
		value = metamodel.IntegerValue(i)
	case metamodel.BooleanProperty:
		switch text {
		case "true":
			value = metamodel.BoolValue(true)
		case "false":
			value = metamodel.BoolValue(false)
		default:
			// Left as text; neither rejected nor coerced.
			value = metamodel.StringValue(text)
		}
	default:
		// String-like variants keep the text as typed. Validators on the
		// property constrain instance values, not the default.
		value = metamodel.StringValue(text)
	}
	return &value, nil
}
