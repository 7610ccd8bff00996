// Package inventory defines the network inventory model and the typed
// repository contract used by every provisioning step.
//
// The record store is the single source of truth: sites own their floor
// locations, devices own their interfaces, and prefixes and VLANs are shared
// records keyed by value. Implementations live in inventory/store.
//
// Lookups return ErrNotFound (wrapped) when nothing matches and creates that
// violate a unique key return ErrConflict, so callers can branch with
// errors.Is without knowing which backend is in use.
package inventory
