package render

import (
	"fmt"
	"sort"
	"strings"
)

// RevisionFieldName carries the store revision a form was rendered from. The
// editor rejects submissions whose revision is stale.
const RevisionFieldName = "_revision"

// HiddenField is an input posted back with the form but never shown.
type HiddenField struct {
	Name  string
	Value string
}

func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// RevisionField pins a form to the store revision it was rendered from.
func RevisionField(revision string) HiddenField {
	return Hidden(RevisionFieldName, revision)
}

// MergeHiddenFields copies base and applies fields over it. Blank names are
// dropped and the result is nil when nothing remains.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for name, value := range base {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields lists fields by name so templates emit them in a stable
// order.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	merged := MergeHiddenFields(fields)
	if merged == nil {
		return nil
	}
	out := make([]HiddenField, 0, len(merged))
	for name, value := range merged {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
