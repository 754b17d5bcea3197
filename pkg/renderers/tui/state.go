package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
)

// State tracks the text collected per form field and the messages attached
// to each field. Values are kept as the strings a form would post.
type State struct {
	values map[string]string
	errors map[string][]string
}

// NewState seeds the state from the form defaults, then from prefilled
// values and errors.
func NewState(form model.FormModel, prefill map[string]any, errs map[string][]string) *State {
	s := &State{
		values: make(map[string]string, len(form.Fields)),
		errors: cloneErrors(errs),
	}
	for _, field := range form.Fields {
		s.values[field.Name] = text(field.Default)
	}
	for name, value := range prefill {
		s.values[name] = text(value)
	}
	return s
}

// Value returns the collected text for a field.
func (s *State) Value(name string) string {
	if s == nil {
		return ""
	}
	return s.values[name]
}

// Bool interprets the collected text as a checkbox.
func (s *State) Bool(name string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(s.Value(name)))
	return err == nil && parsed
}

// Set records the text for a field and clears its errors.
func (s *State) Set(name, value string) {
	s.values[name] = value
	delete(s.errors, name)
}

// ErrorsFor returns the messages attached to a field.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// SetErrors replaces the recorded messages.
func (s *State) SetErrors(errs map[string][]string) {
	s.errors = cloneErrors(errs)
}

// Draft decodes the collected values the same way a posted form is decoded.
func (s *State) Draft() propertyform.Draft {
	posted := make(map[string][]string, len(s.values))
	for name, value := range s.values {
		posted[name] = []string{value}
	}
	return propertyform.DecodeValues(posted)
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *bool:
		if v == nil {
			return ""
		}
		return strconv.FormatBool(*v)
	default:
		return fmt.Sprint(v)
	}
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for key, messages := range src {
		out[key] = append([]string(nil), messages...)
	}
	return out
}
