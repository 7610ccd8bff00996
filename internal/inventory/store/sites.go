package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/imamik/switchyard/internal/inventory"
)

func siteScope(f inventory.SiteFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return where{db: db}.eq("id", f.ID).eq("name", f.Name).eq("slug", f.Slug).db
	}
}

// CreateSite implements inventory.SiteStore.
func (s *Store) CreateSite(ctx context.Context, site *inventory.Site) error {
	return create(ctx, s.db, site)
}

// GetSite implements inventory.SiteStore.
func (s *Store) GetSite(ctx context.Context, f inventory.SiteFilter) (*inventory.Site, error) {
	return getOne[inventory.Site](ctx, s.db, siteScope(f))
}

// ListSites implements inventory.SiteStore.
func (s *Store) ListSites(ctx context.Context, f inventory.SiteFilter) ([]inventory.Site, error) {
	return list[inventory.Site](ctx, s.db, siteScope(f))
}

// CreateLocation implements inventory.SiteStore.
func (s *Store) CreateLocation(ctx context.Context, location *inventory.Location) error {
	return create(ctx, s.db, location)
}

// ListLocations implements inventory.SiteStore.
func (s *Store) ListLocations(ctx context.Context, f inventory.LocationFilter) ([]inventory.Location, error) {
	return list[inventory.Location](ctx, s.db, func(db *gorm.DB) *gorm.DB {
		return where{db: db}.eq("site_id", f.SiteID).eq("slug", f.Slug).db
	})
}
