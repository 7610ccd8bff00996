package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/imamik/switchyard/internal/inventory"
)

func deviceScope(f inventory.DeviceFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return where{db: db}.
			eq("id", f.ID).
			eq("name", f.Name).
			eq("serial", f.Serial).
			eq("site_id", f.SiteID).
			eq("status", f.Status).
			prefix("name", f.NamePrefix).
			null("primary_ipv4_id", f.WithoutPrimaryIPv4).
			db
	}
}

func interfaceScope(f inventory.InterfaceFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return where{db: db}.
			eq("id", f.ID).
			eq("device_id", f.DeviceID).
			eq("name", f.Name).
			eq("label", f.Label).
			db
	}
}

// CreateDevice implements inventory.DeviceStore. The device and its
// template-derived interfaces are written atomically.
func (s *Store) CreateDevice(ctx context.Context, device *inventory.Device) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := translate(tx.Create(device).Error); err != nil {
			return err
		}

		var templates []inventory.InterfaceTemplate
		if err := tx.Where("device_type_id = ?", device.DeviceTypeID).Order("id").Find(&templates).Error; err != nil {
			return fmt.Errorf("loading interface templates: %w", translate(err))
		}
		for _, tmpl := range templates {
			iface := inventory.Interface{
				DeviceID: device.ID,
				Name:     tmpl.Name,
				Type:     tmpl.Type,
				Enabled:  true,
			}
			if err := translate(tx.Create(&iface).Error); err != nil {
				return fmt.Errorf("instantiating interface %s: %w", tmpl.Name, err)
			}
		}
		return nil
	})
}

// GetDevice implements inventory.DeviceStore.
func (s *Store) GetDevice(ctx context.Context, f inventory.DeviceFilter) (*inventory.Device, error) {
	return getOne[inventory.Device](ctx, s.db, deviceScope(f))
}

// ListDevices implements inventory.DeviceStore.
func (s *Store) ListDevices(ctx context.Context, f inventory.DeviceFilter) ([]inventory.Device, error) {
	return list[inventory.Device](ctx, s.db, deviceScope(f))
}

// UpdateDevice implements inventory.DeviceStore.
func (s *Store) UpdateDevice(ctx context.Context, device *inventory.Device) error {
	if device.ID == 0 {
		return fmt.Errorf("update device %q: missing id", device.Name)
	}
	return save(ctx, s.db, device)
}

// CreateInterface implements inventory.DeviceStore.
func (s *Store) CreateInterface(ctx context.Context, iface *inventory.Interface) error {
	return create(ctx, s.db, iface)
}

// GetInterface implements inventory.DeviceStore.
func (s *Store) GetInterface(ctx context.Context, f inventory.InterfaceFilter) (*inventory.Interface, error) {
	return getOne[inventory.Interface](ctx, s.db, interfaceScope(f))
}

// ListInterfaces implements inventory.DeviceStore.
func (s *Store) ListInterfaces(ctx context.Context, f inventory.InterfaceFilter) ([]inventory.Interface, error) {
	return list[inventory.Interface](ctx, s.db, interfaceScope(f))
}

// UpdateInterface implements inventory.DeviceStore.
func (s *Store) UpdateInterface(ctx context.Context, iface *inventory.Interface) error {
	if iface.ID == 0 {
		return fmt.Errorf("update interface %q: missing id", iface.Name)
	}
	return save(ctx, s.db, iface)
}
