package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
)

// Init returns the command for creating a configuration file interactively.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Ask for the store, onboarding inventory, pipeline and validation
settings and write them to a configuration file. Passwords and API keys are
not asked for; set them through environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "switchyard.yaml", "Output file path")

	return cmd
}
