// Package site creates a site and one location per floor.
package site

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/platform/geocode"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/util/naming"
)

const phase = "site"

// Floor attributes read by the wireless planning tool downstream.
const (
	FieldRFModel     = "ccc_rf_model"
	FieldFloorHeight = "ccc_floor_height"
	FieldFloorLength = "ccc_floor_length"
	FieldFloorWidth  = "ccc_floor_width"
	FieldFloorUnits  = "ccc_floor_units"
	FieldFloorNumber = "ccc_floor_number"

	defaultRFModel = "Cubes And Walled Offices"
)

// Geocoder resolves a postal address. Implemented by geocode.Client.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (geocode.Coordinates, error)
}

// Request describes a site to create. Reference records are already resolved.
type Request struct {
	Tenant      *inventory.Tenant
	Region      *inventory.Region
	Name        string
	Address     string
	Floors      int
	LowestFloor int
}

// Validate checks the request before anything is written.
func (r *Request) Validate() error {
	var errs provisioning.ValidationErrors
	if r.Tenant == nil {
		errs.Add("tenant", "is required")
	}
	if r.Region == nil {
		errs.Add("region", "is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		errs.Add("name", "is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		errs.Add("address", "is required")
	}
	if r.Floors < 1 {
		errs.Add("floors", "must be at least 1, got %d", r.Floors)
	}
	return errs.Err()
}

// Result lists what a run created.
type Result struct {
	Site      *inventory.Site
	Locations []inventory.Location
}

// Builder creates sites with their floors.
type Builder struct {
	Geocoder Geocoder
	// Notifier is optional; nil disables the pipeline trigger.
	Notifier provisioning.Notifier
}

// Create geocodes the address, creates the site and its floors, then fires
// the site pipeline on committing runs. Any error aborts the run; floors
// created before a failing one are kept on committing runs.
func (b *Builder) Create(ctx *provisioning.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	coords, err := b.Geocoder.Lookup(ctx, req.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", req.Address, err)
	}
	provisioning.LogInfo(ctx.Observer, phase,
		fmt.Sprintf("geocoded %q to %.6f,%.6f", req.Address, coords.Latitude, coords.Longitude))

	site := &inventory.Site{
		Name:            name,
		Slug:            naming.Slugify(name),
		TenantID:        req.Tenant.ID,
		RegionID:        req.Region.ID,
		Status:          inventory.StatusPlanned,
		PhysicalAddress: req.Address,
		Latitude:        coords.Latitude,
		Longitude:       coords.Longitude,
	}
	if err := ctx.Store.CreateSite(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to create site %s: %w", name, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "site", site.Name, ctx.Link(provisioning.LinkSites, site.ID))

	result := &Result{Site: site}
	for floor := req.LowestFloor; floor < req.LowestFloor+req.Floors; floor++ {
		loc := &inventory.Location{
			SiteID:       site.ID,
			TenantID:     req.Tenant.ID,
			Name:         naming.LocationName(name, floor),
			Slug:         naming.LocationSlug(name, floor),
			Status:       inventory.StatusPlanned,
			CustomFields: FloorFields(floor),
		}
		if err := ctx.Store.CreateLocation(ctx, loc); err != nil {
			return result, fmt.Errorf("failed to create floor %d of %s: %w", floor, name, err)
		}
		provisioning.LogResourceCreated(ctx.Observer, phase, "location", loc.Name, ctx.Link(provisioning.LinkLocations, loc.ID))
		result.Locations = append(result.Locations, *loc)
	}

	provisioning.NotifyPipeline(ctx, b.Notifier, phase, provisioning.SitePipeline)
	return result, nil
}

// FloorFields returns the custom fields stored on a floor location.
func FloorFields(floor int) inventory.CustomFields {
	return inventory.CustomFields{
		FieldRFModel:     defaultRFModel,
		FieldFloorHeight: 10.0,
		FieldFloorLength: 100.0,
		FieldFloorWidth:  100.0,
		FieldFloorUnits:  "feet",
		FieldFloorNumber: floor,
	}
}

// Phase adapts a site request to provisioning.RunPhases. The result is
// stored in *out when out is non-nil.
func (b *Builder) Phase(req Request, out **Result) provisioning.Phase {
	return provisioning.PhaseFunc{
		PhaseName: phase,
		Fn: func(ctx *provisioning.Context) error {
			res, err := b.Create(ctx, req)
			if out != nil {
				*out = res
			}
			return err
		},
	}
}
