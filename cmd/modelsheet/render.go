package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-modelsheet/pkg/orchestrator"
	"github.com/goliatone/go-modelsheet/pkg/store"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		key     store.SelectionKey
		output  string
		themeID string
		variant string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the HTML sheet for a namespace, declaration or property",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.Select(key); err != nil {
				return err
			}
			gen, err := a.orchestrator(st)
			if err != nil {
				return err
			}
			html, err := gen.Generate(cmd.Context(), orchestrator.Request{
				ThemeName:    themeID,
				ThemeVariant: variant,
			})
			if err != nil {
				return err
			}
			return a.writeOutput(output, html)
		},
	}
	addSelectionFlags(cmd, &key)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&themeID, "theme", "", "theme name")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant")
	return cmd
}

func addSelectionFlags(cmd *cobra.Command, key *store.SelectionKey) {
	cmd.Flags().StringVarP(&key.Namespace, "namespace", "n", "", "namespace, e.g. org.acme.hr@1.0.0")
	cmd.Flags().StringVarP(&key.Declaration, "declaration", "d", "", "declaration name")
	cmd.Flags().StringVarP(&key.Property, "property", "p", "", "property name")
}
