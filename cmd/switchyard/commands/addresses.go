package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/orchestration"
)

// Addresses returns the addresses command group.
func Addresses(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Manage switch management addresses",
	}
	cmd.AddCommand(addressesAssign(g))
	return cmd
}

func addressesAssign(g *globals) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign management addresses to planned switches",
		Long: `Look up every planned switch without a primary address in the
onboarding inventory and record the address it booted with.

Switches the onboarding inventory does not know yet are skipped and can be
retried later.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.AssignAddresses(cmd.Context(), g.options(), orchestration.AddressesInput{
				Tenant: inventory.Ref(tenant),
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID, slug or name")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}
