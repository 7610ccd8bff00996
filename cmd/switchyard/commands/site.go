package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/orchestration"
)

// Site returns the site command group.
func Site(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage sites",
	}
	cmd.AddCommand(siteCreate(g))
	return cmd
}

func siteCreate(g *globals) *cobra.Command {
	var (
		in             orchestration.SiteInput
		tenant, region string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a site with one location per floor",
		Long: `Create a site at a street address and one location per floor.

The address is geocoded to fill the site coordinates. Floors are numbered
upward from --lowest-floor. After a committed run the site pipeline is
triggered.

Examples:
  # Preview a three-storey site
  switchyard site create Site-12 --tenant acme --region emea \
    --address "1 Main St, Springfield" --floors 3

  # Create it, including a basement
  switchyard site create Site-12 --tenant acme --region emea \
    --address "1 Main St, Springfield" --floors 3 --lowest-floor -1 --commit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			in.Tenant = inventory.Ref(tenant)
			in.Region = inventory.Ref(region)
			return handlers.CreateSite(cmd.Context(), g.options(), in)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID, slug or name")
	cmd.Flags().StringVar(&region, "region", "", "Region ID, slug or name")
	cmd.Flags().StringVar(&in.Address, "address", "", "Street address of the site")
	cmd.Flags().IntVar(&in.Floors, "floors", 1, "Number of floors")
	cmd.Flags().IntVar(&in.LowestFloor, "lowest-floor", 1, "Number of the lowest floor")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}
