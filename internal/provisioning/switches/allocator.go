package switches

import (
	"context"
	"fmt"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/util/naming"
)

// NextIndex returns the next free switch index at site: one past the highest
// numeric suffix among the site's sw<N>- devices, or 1 when there are none.
func NextIndex(ctx context.Context, store inventory.DeviceStore, site *inventory.Site) (int, error) {
	prefix := naming.SwitchPrefix(naming.SiteNumber(site.Name))
	devices, err := store.ListDevices(ctx, inventory.DeviceFilter{SiteID: site.ID, NamePrefix: prefix})
	if err != nil {
		return 0, fmt.Errorf("listing devices at %s: %w", site.Name, err)
	}
	highest := 0
	for _, d := range devices {
		if n, ok := naming.SwitchIndex(d.Name); ok && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}
