package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/orchestration"
)

// Switches returns the switches command group.
func Switches(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switches",
		Short: "Manage access switches",
	}
	cmd.AddCommand(switchesAdd(g))
	return cmd
}

func switchesAdd(g *globals) *cobra.Command {
	var tenant, site, deviceType, role, uplink string

	cmd := &cobra.Command{
		Use:   "add SERIAL...",
		Short: "Record a batch of switches by serial number",
		Long: `Record switches at a site, one per serial number.

Serials may be given as separate arguments or comma-separated. Duplicates
and serials already in the inventory are skipped. Each new switch is named
sw<site number>-<index> and its uplink interface is labeled. Management
addresses are then assigned from the onboarding inventory and the switch
pipeline is triggered.

Examples:
  switchyard switches add FOC1234X0AB,FOC1234X0AC --tenant acme --site Site-12 \
    --device-type c9300-48p --role access-switch --uplink GigabitEthernet1/1/1 --commit`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := orchestration.SwitchesInput{
				Tenant:     inventory.Ref(tenant),
				Site:       inventory.Ref(site),
				DeviceType: inventory.Ref(deviceType),
				DeviceRole: inventory.Ref(role),
				Uplink:     inventory.Ref(uplink),
				Serials:    strings.Join(args, ","),
			}
			return handlers.AddSwitches(cmd.Context(), g.options(), in)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID, slug or name")
	cmd.Flags().StringVar(&site, "site", "", "Site ID, slug or name")
	cmd.Flags().StringVar(&deviceType, "device-type", "", "Device type ID, slug or model")
	cmd.Flags().StringVar(&role, "role", "", "Device role ID, slug or name")
	cmd.Flags().StringVar(&uplink, "uplink", "", "Uplink interface template ID or name")
	for _, name := range []string{"tenant", "site", "device-type", "role", "uplink"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
