package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
	"github.com/imamik/switchyard/internal/orchestration"
)

// Promote returns the command that validates switches and activates them.
func Promote(g *globals) *cobra.Command {
	var testbed string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Validate planned switches and mark passing ones active",
		Long: `Log in to every planned switch that has a management address and check
that it is synchronised to the expected NTP peer. Switches that pass are
marked active.

With --testbed the device list is read from a pyATS testbed file instead of
the inventory.

Examples:
  switchyard promote --commit
  switchyard promote --testbed testbed.yaml --commit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Promote(cmd.Context(), g.options(), orchestration.PromoteInput{TestbedFile: testbed})
		},
	}

	cmd.Flags().StringVar(&testbed, "testbed", "", "pyATS testbed file listing the devices to validate")
	_ = cmd.MarkFlagFilename("testbed", "yaml", "yml")

	return cmd
}
