package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/imamik/switchyard/internal/inventory"
)

// CreateTenant implements inventory.CatalogStore.
func (s *Store) CreateTenant(ctx context.Context, tenant *inventory.Tenant) error {
	return create(ctx, s.db, tenant)
}

// GetTenant implements inventory.CatalogStore.
func (s *Store) GetTenant(ctx context.Context, f inventory.RecordFilter) (*inventory.Tenant, error) {
	return getOne[inventory.Tenant](ctx, s.db, recordScope(f, "name"))
}

// CreateRegion implements inventory.CatalogStore.
func (s *Store) CreateRegion(ctx context.Context, region *inventory.Region) error {
	return create(ctx, s.db, region)
}

// GetRegion implements inventory.CatalogStore.
func (s *Store) GetRegion(ctx context.Context, f inventory.RecordFilter) (*inventory.Region, error) {
	return getOne[inventory.Region](ctx, s.db, recordScope(f, "name"))
}

// CreateDeviceRole implements inventory.CatalogStore.
func (s *Store) CreateDeviceRole(ctx context.Context, role *inventory.DeviceRole) error {
	return create(ctx, s.db, role)
}

// GetDeviceRole implements inventory.CatalogStore.
func (s *Store) GetDeviceRole(ctx context.Context, f inventory.RecordFilter) (*inventory.DeviceRole, error) {
	return getOne[inventory.DeviceRole](ctx, s.db, recordScope(f, "name"))
}

// CreateDeviceType implements inventory.CatalogStore. Interface templates
// on the value are created with it.
func (s *Store) CreateDeviceType(ctx context.Context, deviceType *inventory.DeviceType) error {
	return create(ctx, s.db, deviceType)
}

// GetDeviceType implements inventory.CatalogStore.
func (s *Store) GetDeviceType(ctx context.Context, f inventory.RecordFilter) (*inventory.DeviceType, error) {
	return getOne[inventory.DeviceType](ctx, s.db, func(db *gorm.DB) *gorm.DB {
		return recordScope(f, "model")(db).Preload("InterfaceTemplates", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		})
	})
}

// CreateInterfaceTemplate implements inventory.CatalogStore.
func (s *Store) CreateInterfaceTemplate(ctx context.Context, tmpl *inventory.InterfaceTemplate) error {
	return create(ctx, s.db, tmpl)
}

// GetInterfaceTemplate implements inventory.CatalogStore.
func (s *Store) GetInterfaceTemplate(ctx context.Context, f inventory.InterfaceTemplateFilter) (*inventory.InterfaceTemplate, error) {
	return getOne[inventory.InterfaceTemplate](ctx, s.db, func(db *gorm.DB) *gorm.DB {
		return where{db: db}.eq("id", f.ID).eq("device_type_id", f.DeviceTypeID).eq("name", f.Name).db
	})
}
