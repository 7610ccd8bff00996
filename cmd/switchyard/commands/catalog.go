package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
)

// Catalog returns the catalog command group.
func Catalog(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage reference records",
	}
	cmd.AddCommand(catalogImport(g))
	return cmd
}

func catalogImport(g *globals) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create tenants, regions, roles, VLANs and device types from YAML",
		Long: `Import reference records from a catalog file. Records that already
exist are left unchanged, so the import can be rerun safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ImportCatalog(cmd.Context(), g.options(), file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog YAML file")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagFilename("file", "yaml", "yml")

	return cmd
}
