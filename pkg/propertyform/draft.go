package propertyform

import (
	"github.com/goliatone/go-modelsheet/pkg/metamodel"
)

// Field paths used in drafts, form models and FieldErrors.
const (
	FieldName         = "name"
	FieldDefaultValue = "defaultValue"
	FieldIsArray      = "isArray"
	FieldClass        = "$class"
	FieldType         = "type"
)

// Draft is the unsaved, text-level copy of the editable property fields.
// IsArray is nil while the value is indeterminate; validation rejects that.
type Draft struct {
	Name         string `json:"name"`
	DefaultValue string `json:"defaultValue,omitempty"`
	IsArray      *bool  `json:"isArray"`
}

// DraftFrom seeds a draft from a property snapshot. Defaults are rendered the
// way a text input shows them.
func DraftFrom(p metamodel.Property) Draft {
	if p == nil {
		return Draft{IsArray: Bool(false)}
	}
	base := p.Base()
	draft := Draft{
		Name:    base.Name,
		IsArray: Bool(base.IsArray),
	}
	if def := metamodel.Default(p); def != nil {
		draft.DefaultValue = def.Text()
	}
	return draft
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

func (d Draft) clone() Draft {
	if d.IsArray != nil {
		d.IsArray = Bool(*d.IsArray)
	}
	return d
}
