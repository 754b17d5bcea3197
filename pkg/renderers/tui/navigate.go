package tui

import (
	"context"
	"fmt"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

// wholeDeclaration is the first property option; picking it selects the
// declaration itself.
const wholeDeclaration = "(whole declaration)"

// Navigate walks the user from a namespace down to a property. A store
// holding a single namespace skips the first prompt.
func Navigate(ctx context.Context, driver PromptDriver, reader store.Reader) (store.SelectionKey, error) {
	var key store.SelectionKey
	models := reader.Models()
	if len(models) == 0 {
		return key, ErrNothingToSelect
	}

	model := models[0]
	if len(models) > 1 {
		names := make([]string, len(models))
		for i, m := range models {
			names[i] = m.Namespace
		}
		idx, err := choose(ctx, driver, "Namespace", names)
		if err != nil {
			return key, err
		}
		model = models[idx]
	}
	key.Namespace = model.Namespace

	if len(model.Declarations) == 0 {
		return key, fmt.Errorf("%w: %s has no declarations", ErrNothingToSelect, model.Namespace)
	}
	declNames := make([]string, len(model.Declarations))
	for i, decl := range model.Declarations {
		declNames[i] = decl.DeclarationName()
	}
	idx, err := choose(ctx, driver, "Declaration", declNames)
	if err != nil {
		return key, err
	}
	decl := model.Declarations[idx]
	key.Declaration = decl.DeclarationName()

	options := []string{wholeDeclaration}
	for _, prop := range decl.PropertyList() {
		options = append(options, metamodel.PropertyName(prop))
	}
	idx, err = choose(ctx, driver, "Property", options)
	if err != nil {
		return key, err
	}
	if idx > 0 {
		key.Property = options[idx]
	}
	return key, nil
}

func choose(ctx context.Context, driver PromptDriver, message string, options []string) (int, error) {
	for {
		idx, err := driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: 0})
		if err != nil {
			return 0, err
		}
		if idx >= 0 && idx < len(options) {
			return idx, nil
		}
		if err := driver.Info(ctx, fmt.Sprintf("Invalid %s selection", message)); err != nil {
			return 0, err
		}
	}
}
