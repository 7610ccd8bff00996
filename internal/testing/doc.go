// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - InventoryFixture: In-memory record store seeded with reference data
//   - MockObserver, FakeNotifier, FakeResolver: Shared fakes for provisioning collaborators
//
// Usage:
//
//	cfg := testutil.NewConfigBuilder().
//	    WithInventoryURL("https://netbox.example.com").
//	    Build()
//
//	fx := testutil.NewInventoryFixture(t)
//	ctx := testutil.RunContext(t, fx.Store, cfg, true)
package testing
