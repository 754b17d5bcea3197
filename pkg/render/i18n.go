package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-modelsheet/pkg/model"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the text used when a key has no
// translation. fallback is the untranslated text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// Translation keys. Field keys are built with FieldLabelKey.
const (
	SummaryKey = "sheet.form.summary"
	SubmitKey  = "sheet.form.submit"
)

// FieldLabelKey returns the translation key for a field label.
func FieldLabelKey(field string) string {
	return "sheet.field." + strings.TrimPrefix(field, "$") + ".label"
}

// LocalizeFormModel translates the form summary and field labels in place.
// Missing translations keep the existing text unless onMissing says
// otherwise.
func LocalizeFormModel(form *model.FormModel, locale string, t Translator, onMissing MissingTranslationHandler) {
	if form == nil || t == nil {
		return
	}
	if onMissing == nil {
		onMissing = keepFallback
	}

	form.Summary = Translate(t, locale, SummaryKey, form.Summary, onMissing)
	for i := range form.Fields {
		field := &form.Fields[i]
		field.Label = Translate(t, locale, FieldLabelKey(field.Name), field.Label, onMissing)
	}
}

// Translate looks key up and falls back through onMissing.
func Translate(t Translator, locale, key, fallback string, onMissing MissingTranslationHandler) string {
	if onMissing == nil {
		onMissing = keepFallback
	}
	if t == nil {
		return onMissing(locale, key, fallback, ErrMissingTranslator)
	}
	msg, err := t.Translate(locale, key)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(locale, key, fallback, err)
	}
	return msg
}

func keepFallback(_, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
