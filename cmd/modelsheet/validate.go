package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-modelsheet/pkg/modelfile"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check model files for structural errors",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := a.modelPaths()
			if err != nil {
				return err
			}
			files, err := modelFiles(paths)
			if err != nil {
				return err
			}

			var failures []error
			seen := make(map[string]string)
			for _, file := range files {
				models, err := modelfile.Load(file)
				if err != nil {
					failures = append(failures, err)
					fmt.Fprintf(a.out, "FAIL %s\n", file)
					continue
				}
				for _, m := range models {
					if err := m.Validate(); err != nil {
						failures = append(failures, err)
						fmt.Fprintf(a.out, "FAIL %s %s\n", file, m.Namespace)
						continue
					}
					if prev, dup := seen[m.Namespace]; dup {
						failures = append(failures, fmt.Errorf("%w: %q in %s and %s", store.ErrDuplicateNamespace, m.Namespace, prev, file))
						fmt.Fprintf(a.out, "FAIL %s %s\n", file, m.Namespace)
						continue
					}
					seen[m.Namespace] = file
					fmt.Fprintf(a.out, "ok   %s %s (%d declarations)\n", file, m.Namespace, len(m.Declarations))
				}
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d problem(s):\n%w", len(failures), errors.Join(failures...))
			}
			return nil
		},
	}
}
