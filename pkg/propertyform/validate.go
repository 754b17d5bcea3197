package propertyform

import (
	"sort"
	"strings"
)

// Inline messages shown next to invalid fields.
const (
	MessageNameRequired    = "Name is required"
	MessageIsArrayRequired = "Array is required"
)

// FieldErrors maps a field path to its validation messages. A non-empty
// FieldErrors blocks submission; it is returned as an error value and never
// panics or aborts the caller.
type FieldErrors map[string][]string

// Add appends msg to the messages for field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one message.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error implements error with fields in sorted order.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], ", "))
	}
	return "propertyform: invalid draft: " + strings.Join(parts, "; ")
}

// Validate checks the draft-level rules: a non-blank name and a concrete
// isArray. It returns nil when the draft is valid.
func Validate(d Draft) FieldErrors {
	errs := FieldErrors{}
	// Whitespace-only names count as empty; the store refuses blank names.
	if strings.TrimSpace(d.Name) == "" {
		errs.Add(FieldName, MessageNameRequired)
	}
	if d.IsArray == nil {
		errs.Add(FieldIsArray, MessageIsArrayRequired)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func merge(dst, src FieldErrors) FieldErrors {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = FieldErrors{}
	}
	for field, msgs := range src {
		dst[field] = append(dst[field], msgs...)
	}
	return dst
}
