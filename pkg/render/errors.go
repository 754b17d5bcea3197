package render

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages keyed by form field name.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises form-level messages, trimming
// whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload assigns messages to form fields. Keys may be bare field
// names or JSON pointer / dotted paths wrapped in request envelopes
// ("/body/name", "$.data.isArray"). Keys that match no field are kept as
// form-level messages so nothing is lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}

	known := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			known[name] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		if field, ok := mapErrorPath(rawPath, known); ok {
			mapping.Fields[field] = append(mapping.Fields[field], messages...)
			continue
		}
		mapping.Form = append(mapping.Form, messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// Messages shown for store failures during submit.
const (
	MessageDuplicateProperty = "A property with this name already exists"
	MessageStaleRevision     = "The model changed since this form was loaded; review and submit again"
)

// MapStoreError turns an update failure into form feedback. A rename collision
// belongs to the name field; anything else is form-level.
func MapStoreError(err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	switch {
	case errors.Is(err, store.ErrDuplicateProperty):
		return ErrorMapping{Fields: map[string][]string{"name": {MessageDuplicateProperty}}}
	case errors.Is(err, store.ErrNamespaceNotFound),
		errors.Is(err, store.ErrDeclarationNotFound),
		errors.Is(err, store.ErrPropertyNotFound),
		errors.Is(err, store.ErrStaleRevision):
		return ErrorMapping{Form: []string{MessageStaleRevision}}
	default:
		return ErrorMapping{Form: []string{err.Error()}}
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", false
	}
	if _, ok := known[trimmed]; ok {
		return trimmed, true
	}

	segments := dropWrapperSegments(parsePathSegments(trimmed))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if _, ok := known[segment]; ok {
			return segment, true
		}
		break
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimLeft(strings.TrimSpace(path), "#/.$")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"draft":      {},
	"attributes": {},
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(key) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
