package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-modelsheet/pkg/model"
	"github.com/goliatone/go-modelsheet/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestLocalizeFormModel_UsesKeysAndFallbacks(t *testing.T) {
	form := model.FormModel{
		Summary: "Edit Property",
		Fields: []model.Field{
			{Name: "name", Label: "Name"},
			{Name: "$class", Label: "Class"},
			{Name: "isArray", Label: ""},
		},
	}

	render.LocalizeFormModel(&form, "es", stubTranslator{
		"sheet.form.summary":      "Editar propiedad",
		"sheet.field.name.label":  "Nombre",
		"sheet.field.class.label": "Clase",
	}, nil)

	if form.Summary != "Editar propiedad" {
		t.Fatalf("summary: %q", form.Summary)
	}
	if form.Fields[0].Label != "Nombre" || form.Fields[1].Label != "Clase" {
		t.Fatalf("labels: %q %q", form.Fields[0].Label, form.Fields[1].Label)
	}
	if form.Fields[2].Label != "sheet.field.isArray.label" {
		t.Fatalf("missing label should fall back to the key, got %q", form.Fields[2].Label)
	}
}

func TestLocalizeFormModel_NoTranslatorIsNoop(t *testing.T) {
	form := model.FormModel{Summary: "Edit Property", Fields: []model.Field{{Name: "name", Label: "Name"}}}
	render.LocalizeFormModel(&form, "es", nil, nil)
	if form.Summary != "Edit Property" || form.Fields[0].Label != "Name" {
		t.Fatalf("form changed without a translator: %+v", form)
	}
}

func TestTranslate_CustomMissingHandler(t *testing.T) {
	got := render.Translate(nil, "fr", "k", "fallback", func(locale, key, fallback string, err error) string {
		if !errors.Is(err, render.ErrMissingTranslator) {
			t.Fatalf("unexpected err: %v", err)
		}
		return locale + ":" + key
	})
	if got != "fr:k" {
		t.Fatalf("got %q", got)
	}
}
