// Package provisioning provides the shared run types used by every
// provisioning operation.
//
// # Subpackages
//
//   - site/ — Site and floor Location creation
//   - switches/ — Device creation from serial numbers and name allocation
//   - addressing/ — Management address resolution and binding
//   - promotion/ — NTP validation and planned to active promotion
//
// # Core Types
//
// Context carries configuration, the record store, the observer and the
// commit flag. Phase defines a run step with Name() and Provision() methods.
// Journal records every event of a run under a run ID so the outcome can be
// rendered, returned by the API and archived.
package provisioning
