package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
	"github.com/goliatone/go-modelsheet/pkg/modelfile"
	"github.com/goliatone/go-modelsheet/pkg/orchestrator"
	"github.com/goliatone/go-modelsheet/pkg/propertyform"
	"github.com/goliatone/go-modelsheet/pkg/render"
	"github.com/goliatone/go-modelsheet/pkg/renderers/tui"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

func (a *app) editCmd() *cobra.Command {
	var (
		key   store.SelectionKey
		write bool
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a concept property in the terminal",
		Long: `edit prompts for the property's name, default value and array flag,
applies the draft to the loaded model and prints the updated property.
Without --namespace the property is picked interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.edit(cmd, key, write)
		},
	}
	addSelectionFlags(cmd, &key)
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the updated model back to its file")
	return cmd
}

func (a *app) edit(cmd *cobra.Command, key store.SelectionKey, write bool) error {
	ctx := cmd.Context()
	st, err := a.openStore()
	if err != nil {
		return err
	}

	driver := a.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(a.out)
	}
	if key.Namespace == "" {
		key, err = tui.Navigate(ctx, driver, st)
		if err != nil {
			return err
		}
	}
	if err := st.Select(key); err != nil {
		return err
	}

	renderer, err := tui.New(tui.WithPromptDriver(driver), tui.WithOutputFormat(tui.OutputFormatJSON))
	if err != nil {
		return err
	}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	gen := orchestrator.New(
		orchestrator.WithReader(st),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithLogger(a.logger),
	)

	out, err := gen.Generate(ctx, orchestrator.Request{})
	if errors.Is(err, tui.ErrReadOnly) {
		// The summary has been printed; only concept properties are editable.
		return nil
	}
	if err != nil {
		return err
	}

	var draft propertyform.Draft
	if err := json.Unmarshal(out, &draft); err != nil {
		return fmt.Errorf("decode draft: %w", err)
	}

	sel := st.Selection()
	concept, ok := sel.Declaration.(metamodel.ConceptDeclaration)
	if !ok || sel.Property == nil {
		return fmt.Errorf("selection %s.%s is not a concept property", key.Declaration, key.Property)
	}
	form := propertyform.New(st, key.Namespace, concept, sel.Property)
	form.SetDraft(draft)
	merged, err := form.Submit(ctx)
	if err != nil {
		return err
	}

	encoded, err := metamodel.MarshalProperty(merged)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(a.out, "%s\n", encoded); err != nil {
		return err
	}

	if !write {
		return nil
	}
	paths, _ := a.modelPaths()
	file, err := writeBack(paths, st, key.Namespace)
	if err != nil {
		return err
	}
	a.logger.Info("model written", zap.String("path", file), zap.String("namespace", key.Namespace))
	return nil
}

// writeBack replaces the namespace's model in the file that declares it.
func writeBack(paths []string, st *store.Memory, namespace string) (string, error) {
	updated, ok := st.Model(namespace)
	if !ok {
		return "", fmt.Errorf("namespace %q is not loaded", namespace)
	}
	files, err := modelFiles(paths)
	if err != nil {
		return "", err
	}
	for _, file := range files {
		models, err := modelfile.Load(file)
		if err != nil {
			return "", err
		}
		for i, m := range models {
			if m.Namespace != namespace {
				continue
			}
			models[i] = updated
			return file, modelfile.Save(file, models...)
		}
	}
	return "", fmt.Errorf("no model file declares namespace %q", namespace)
}

func modelFiles(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if _, ok := modelfile.FormatFromPath(p); ok && !entry.IsDir() {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
