package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/imamik/switchyard/internal/inventory"
)

func prefixScope(f inventory.PrefixFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return where{db: db}.eq("prefix", f.Prefix).db
	}
}

func addressScope(f inventory.IPAddressFilter) scope {
	return func(db *gorm.DB) *gorm.DB {
		return where{db: db}.eq("id", f.ID).eq("address", f.Address).eq("interface_id", f.InterfaceID).db
	}
}

// CreatePrefix implements inventory.IPAMStore.
func (s *Store) CreatePrefix(ctx context.Context, prefix *inventory.Prefix) error {
	return create(ctx, s.db, prefix)
}

// GetPrefix implements inventory.IPAMStore.
func (s *Store) GetPrefix(ctx context.Context, f inventory.PrefixFilter) (*inventory.Prefix, error) {
	return getOne[inventory.Prefix](ctx, s.db, prefixScope(f))
}

// ListPrefixes implements inventory.IPAMStore.
func (s *Store) ListPrefixes(ctx context.Context, f inventory.PrefixFilter) ([]inventory.Prefix, error) {
	return list[inventory.Prefix](ctx, s.db, prefixScope(f))
}

// CreateIPAddress implements inventory.IPAMStore.
func (s *Store) CreateIPAddress(ctx context.Context, addr *inventory.IPAddress) error {
	return create(ctx, s.db, addr)
}

// GetIPAddress implements inventory.IPAMStore.
func (s *Store) GetIPAddress(ctx context.Context, f inventory.IPAddressFilter) (*inventory.IPAddress, error) {
	return getOne[inventory.IPAddress](ctx, s.db, addressScope(f))
}

// ListIPAddresses implements inventory.IPAMStore.
func (s *Store) ListIPAddresses(ctx context.Context, f inventory.IPAddressFilter) ([]inventory.IPAddress, error) {
	return list[inventory.IPAddress](ctx, s.db, addressScope(f))
}

// CreateVLAN implements inventory.IPAMStore.
func (s *Store) CreateVLAN(ctx context.Context, vlan *inventory.VLAN) error {
	return create(ctx, s.db, vlan)
}

// GetVLAN implements inventory.IPAMStore.
func (s *Store) GetVLAN(ctx context.Context, f inventory.VLANFilter) (*inventory.VLAN, error) {
	return getOne[inventory.VLAN](ctx, s.db, func(db *gorm.DB) *gorm.DB {
		return where{db: db}.eq("id", f.ID).eq("name", f.Name).db
	})
}
