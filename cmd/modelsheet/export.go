package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-modelsheet/pkg/openapi"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		namespace string
		format    string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a model as an OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			models := st.Models()
			if namespace == "" {
				if len(models) != 1 {
					return fmt.Errorf("--namespace is required when %d models are loaded", len(models))
				}
				namespace = models[0].Namespace
			}
			m, ok := st.Model(namespace)
			if !ok {
				return fmt.Errorf("namespace %q is not loaded", namespace)
			}

			doc, err := openapi.Export(m)
			if err != nil {
				return err
			}
			if err := openapi.Validate(cmd.Context(), doc); err != nil {
				return err
			}

			var data []byte
			switch strings.ToLower(format) {
			case "yaml", "yml":
				data, err = openapi.MarshalYAML(doc)
			case "json", "":
				data, err = openapi.MarshalJSON(doc)
			default:
				return fmt.Errorf("unsupported format %q (json or yaml)", format)
			}
			if err != nil {
				return err
			}
			return a.writeOutput(output, data)
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "namespace to export")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
