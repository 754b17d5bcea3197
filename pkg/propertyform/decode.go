package propertyform

import (
	"strconv"
)

// DecodeValues builds a draft from posted form values. isArray follows
// checkbox semantics: an absent key means false, and when a hidden "false"
// precedes the checkbox the last value wins. Unparsable isArray text leaves
// the draft indeterminate.
func DecodeValues(values map[string][]string) Draft {
	draft := Draft{
		Name:         last(values[FieldName]),
		DefaultValue: last(values[FieldDefaultValue]),
		IsArray:      Bool(false),
	}
	if raw, ok := values[FieldIsArray]; ok && len(raw) > 0 {
		draft.IsArray = parseCheckbox(last(raw))
	}
	return draft
}

// Values encodes the draft as form values. An indeterminate isArray is
// omitted.
func (d Draft) Values() map[string][]string {
	out := map[string][]string{
		FieldName:         {d.Name},
		FieldDefaultValue: {d.DefaultValue},
	}
	if d.IsArray != nil {
		out[FieldIsArray] = []string{strconv.FormatBool(*d.IsArray)}
	}
	return out
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}
