package promotion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/provisioning"
	testutil "github.com/imamik/switchyard/internal/testing"
	"github.com/imamik/switchyard/internal/util/ptr"
)

const peer = "198.18.133.141"

const syncedOutput = `
  address         ref clock       st   when   poll reach  delay  offset   disp
*~198.18.133.141  .GPS.            1     25     64   377  1.234  -0.123   1.939
 * sys.peer, # selected, + candidate, - outlyer, x falseticker, ~ configured
`

const otherPeerOutput = `
  address         ref clock       st   when   poll reach  delay  offset   disp
 ~198.18.133.141  .INIT.          16      -     64     0  0.000   0.000 15937.
*~10.10.20.1      .GPS.            1      3     64   377  9.000   0.100   7.000
 * sys.peer, # selected, + candidate, - outlyer, x falseticker, ~ configured
`

const missingPeerOutput = `
  address         ref clock       st   when   poll reach  delay  offset   disp
*~10.10.20.1      .GPS.            1      3     64   377  9.000   0.100   7.000
`

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Execute(ctx context.Context, command string) (string, error) {
	args := m.Called(ctx, command)
	return args.String(0), args.Error(1)
}

func checkerFor(runners map[string]*mockRunner) *NTPChecker {
	return &NTPChecker{
		Peer: peer,
		Dial: func(t Target) (Runner, error) {
			r, ok := runners[t.Host]
			if !ok {
				return nil, errors.New("connection refused")
			}
			return r, nil
		},
	}
}

func runnerReturning(out string, err error) *mockRunner {
	r := &mockRunner{}
	r.On("Execute", mock.Anything, DefaultCommand).Return(out, err).Once()
	return r
}

func TestNTPChecker(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		runner  *mockRunner
		wantErr string
	}{
		{name: "synchronized to peer", runner: runnerReturning(syncedOutput, nil)},
		{name: "synchronized elsewhere", runner: runnerReturning(otherPeerOutput, nil), wantErr: "configured but not synchronized"},
		{name: "peer missing", runner: runnerReturning(missingPeerOutput, nil), wantErr: "expected NTP peer 198.18.133.141 not found"},
		{name: "garbage output", runner: runnerReturning("% Invalid input detected", nil), wantErr: "failed to parse NTP associations"},
		{name: "command fails", runner: runnerReturning("", errors.New("session closed")), wantErr: "session closed"},
		{name: "unreachable", wantErr: "failed to connect to sw12-1: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runners := map[string]*mockRunner{}
			if tt.runner != nil {
				runners["10.1.2.3"] = tt.runner
			}
			err := checkerFor(runners).Check(context.Background(), Target{Name: "sw12-1", Host: "10.1.2.3"})
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.runner != nil {
				tt.runner.AssertExpectations(t)
			}
		})
	}
}

func TestParseTestbed(t *testing.T) {
	t.Parallel()
	data := []byte(`
devices:
  sw12-2:
    connections:
      cli:
        ip: 10.1.2.4
  sw12-1:
    connections:
      cli:
        ip: 10.1.2.3
        port: 2222
    credentials:
      default:
        username: admin
        password: secret
`)
	targets, err := ParseTestbed(data, config.Validation{Port: 22, Username: "netops", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, []Target{
		{Name: "sw12-1", Host: "10.1.2.3", Port: 2222, Username: "admin", Password: "secret"},
		{Name: "sw12-2", Host: "10.1.2.4", Port: 22, Username: "netops", Password: "pw"},
	}, targets)

	_, err = ParseTestbed([]byte("devices:\n  sw1:\n    connections: {}\n"), config.Validation{})
	assert.ErrorContains(t, err, "connections.cli.ip is required")

	_, err = ParseTestbed([]byte("devices:\n  \"\":\n    connections:\n      cli:\n        ip: 10.9.9.9\n"), config.Validation{})
	assert.ErrorContains(t, err, "empty name")
}

func TestLoadTestbed_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadTestbed(filepath.Join(t.TempDir(), "testbed.yaml"), config.Validation{})
	assert.ErrorContains(t, err, "failed to read testbed")
}

func TestLoadTestbed_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "testbed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices:\n  sw1:\n    connections:\n      cli:\n        ip: 10.0.0.9\n"), 0o600))
	targets, err := LoadTestbed(path, config.Validation{Port: 22})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "10.0.0.9", targets[0].Host)
}

func TestTestbedFromStore(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.TestContext(t)

	withIP := fx.AddDevice(t, "sw12-1", "A", inventory.StatusPlanned)
	fx.AddDevice(t, "sw12-2", "B", inventory.StatusPlanned)
	active := fx.AddDevice(t, "sw12-3", "C", inventory.StatusActive)

	bind := func(d *inventory.Device, address string) {
		addr := &inventory.IPAddress{Address: address, Status: inventory.StatusActive}
		require.NoError(t, fx.Store.CreateIPAddress(ctx, addr))
		d.PrimaryIPv4ID = ptr.To(addr.ID)
		require.NoError(t, fx.Store.UpdateDevice(ctx, d))
	}
	bind(withIP, "10.1.2.3/24")
	bind(active, "10.1.2.5/24")

	targets, err := TestbedFromStore(ctx, fx.Store, config.Validation{Port: 22, Username: "netops", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, []Target{
		{DeviceID: withIP.ID, Name: "sw12-1", Host: "10.1.2.3", Port: 22, Username: "netops", Password: "pw"},
	}, targets)
}

func TestValidatorAndPromoter(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	fx.AddDevice(t, "sw12-1", "A", inventory.StatusPlanned)
	fx.AddDevice(t, "sw12-2", "B", inventory.StatusPlanned)
	fx.AddDevice(t, "sw12-3", "C", inventory.StatusActive)

	checker := checkerFor(map[string]*mockRunner{
		"10.0.0.1": runnerReturning(syncedOutput, nil),
		"10.0.0.2": runnerReturning(otherPeerOutput, nil),
		"10.0.0.3": runnerReturning(syncedOutput, nil),
		"10.0.0.4": runnerReturning(syncedOutput, nil),
	})
	targets := []Target{
		{Name: "sw12-1", Host: "10.0.0.1"},
		{Name: "sw12-2", Host: "10.0.0.2"},
		{Name: "sw12-3", Host: "10.0.0.3"},
		{Name: "ghost", Host: "10.0.0.4"},
	}

	report := (&Validator{Checker: checker}).Run(ctx, targets)
	require.Len(t, report.Results, 4)
	assert.Equal(t, []string{"sw12-1", "sw12-3", "ghost"}, report.Passed())
	assert.False(t, report.Results[1].Passed)
	assert.Contains(t, report.Results[1].Reason, "not synchronized")

	out := (&Promoter{}).Promote(ctx, report)
	assert.Equal(t, []string{"sw12-1"}, out.Promoted)
	assert.Equal(t, []string{"sw12-3"}, out.Unchanged)
	assert.Equal(t, []string{"ghost"}, out.Missing)
	assert.Equal(t, []string{"sw12-2"}, out.Failed)

	status := func(name string) inventory.Status {
		d, err := fx.Store.GetDevice(ctx, inventory.DeviceFilter{Name: name})
		require.NoError(t, err)
		return d.Status
	}
	assert.Equal(t, inventory.StatusActive, status("sw12-1"))
	assert.Equal(t, inventory.StatusPlanned, status("sw12-2"))
	assert.Equal(t, inventory.StatusActive, status("sw12-3"))

	// A second pass changes nothing.
	again := (&Promoter{}).Promote(ctx, &Report{Results: []Result{{Device: "sw12-1", Passed: true}}})
	assert.Empty(t, again.Promoted)
	assert.Equal(t, []string{"sw12-1"}, again.Unchanged)
}

func TestRunPhase_DryRunKeepsPlanned(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	d := fx.AddDevice(t, "sw12-1", "A", inventory.StatusPlanned)
	ctx := testutil.RunContext(t, fx.Store, nil, false)

	run := &Run{
		Validator: &Validator{Checker: checkerFor(map[string]*mockRunner{"10.0.0.1": runnerReturning(syncedOutput, nil)})},
		Promoter:  &Promoter{},
		Targets:   FixedTargets([]Target{{Name: "sw12-1", Host: "10.0.0.1"}}),
	}
	var res *RunResult
	require.NoError(t, provisioning.RunPhases(ctx, []provisioning.Phase{run.Phase(&res)}))
	assert.Equal(t, []string{"sw12-1"}, res.Outcome.Promoted)

	got, err := fx.Store.GetDevice(ctx, inventory.DeviceFilter{ID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusPlanned, got.Status)
}

func TestRunPhase_TargetsError(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	run := &Run{
		Validator: &Validator{},
		Promoter:  &Promoter{},
		Targets:   func(*provisioning.Context) ([]Target, error) { return nil, errors.New("bad testbed") },
	}
	err := provisioning.RunPhases(ctx, []provisioning.Phase{run.Phase(nil)})
	assert.ErrorContains(t, err, "promotion phase failed: bad testbed")
}

func TestPromoter_UnnamedTargetPromotesNothing(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	d := fx.AddDevice(t, "sw12-1", "A", inventory.StatusPlanned)

	run := &Run{
		Validator: &Validator{Checker: funcChecker(func(context.Context, Target) error { return nil })},
		Promoter:  &Promoter{},
		Targets:   FixedTargets([]Target{{Name: "", Host: "10.9.9.9"}}),
	}
	var res *RunResult
	require.NoError(t, provisioning.RunPhases(ctx, []provisioning.Phase{run.Phase(&res)}))
	assert.Empty(t, res.Outcome.Promoted)
	assert.Equal(t, []string{""}, res.Outcome.Failed)

	got, err := fx.Store.GetDevice(ctx, inventory.DeviceFilter{ID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusPlanned, got.Status)
}

func TestPromoter_OnlyPlannedBecomesActive(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	fx.AddDevice(t, "sw12-1", "A", inventory.StatusDecommissioning)
	fx.AddDevice(t, "sw12-2", "B", inventory.StatusOffline)

	out := (&Promoter{}).Promote(ctx, &Report{Results: []Result{
		{Device: "sw12-1", Passed: true},
		{Device: "sw12-2", Passed: true},
	}})
	assert.Empty(t, out.Promoted)
	assert.Equal(t, []string{"sw12-1", "sw12-2"}, out.Unchanged)

	for name, want := range map[string]inventory.Status{
		"sw12-1": inventory.StatusDecommissioning,
		"sw12-2": inventory.StatusOffline,
	} {
		d, err := fx.Store.GetDevice(ctx, inventory.DeviceFilter{Name: name})
		require.NoError(t, err)
		assert.Equal(t, want, d.Status, name)
	}

	warnings := testutil.EventsAtLevel(ctx, provisioning.LevelWarning)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, "device sw12-1 is decommissioning, not planned")
}

func TestPromoter_SameNameAtTwoSites(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)

	other := &inventory.Site{
		Name:     "Campus-12",
		Slug:     "campus-12",
		TenantID: fx.Tenant.ID,
		RegionID: fx.Region.ID,
		Status:   inventory.StatusPlanned,
	}
	require.NoError(t, fx.Store.CreateSite(ctx, other))

	first := fx.AddDevice(t, "sw12-1", "A", inventory.StatusPlanned)
	second := &inventory.Device{
		Name:         "sw12-1",
		SiteID:       other.ID,
		TenantID:     fx.Tenant.ID,
		DeviceTypeID: fx.DeviceType.ID,
		DeviceRoleID: fx.Role.ID,
		Serial:       "B",
		Status:       inventory.StatusPlanned,
	}
	require.NoError(t, fx.Store.CreateDevice(ctx, second))

	for i, d := range []*inventory.Device{first, second} {
		addr := &inventory.IPAddress{Address: fmt.Sprintf("10.1.2.%d/24", i+3), Status: inventory.StatusActive}
		require.NoError(t, fx.Store.CreateIPAddress(ctx, addr))
		d.PrimaryIPv4ID = ptr.To(addr.ID)
		require.NoError(t, fx.Store.UpdateDevice(ctx, d))
	}

	run := &Run{
		Validator: &Validator{Checker: funcChecker(func(context.Context, Target) error { return nil })},
		Promoter:  &Promoter{},
		Targets:   StoreTargets,
	}
	var res *RunResult
	require.NoError(t, provisioning.RunPhases(ctx, []provisioning.Phase{run.Phase(&res)}))
	assert.Equal(t, []string{"sw12-1", "sw12-1"}, res.Outcome.Promoted)
	assert.Empty(t, res.Outcome.Failed)

	for _, d := range []*inventory.Device{first, second} {
		got, err := fx.Store.GetDevice(ctx, inventory.DeviceFilter{ID: d.ID})
		require.NoError(t, err)
		assert.Equal(t, inventory.StatusActive, got.Status)
	}
}

type funcChecker func(context.Context, Target) error

func (f funcChecker) Check(ctx context.Context, t Target) error { return f(ctx, t) }

func TestValidator_ConcurrentKeepsTargetOrder(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, false)

	checker := funcChecker(func(_ context.Context, t Target) error {
		if t.Name == "sw12-2" {
			return errors.New("unreachable")
		}
		return nil
	})
	targets := []Target{{Name: "sw12-1"}, {Name: "sw12-2"}, {Name: "sw12-3"}, {Name: "sw12-4"}}

	report := (&Validator{Checker: checker, Concurrency: 3}).Run(ctx, targets)

	require.Len(t, report.Results, 4)
	for i, res := range report.Results {
		assert.Equal(t, targets[i].Name, res.Device)
	}
	assert.Equal(t, []string{"sw12-1", "sw12-3", "sw12-4"}, report.Passed())
	assert.Equal(t, "unreachable", report.Results[1].Reason)

	failures := testutil.EventsAtLevel(ctx, provisioning.LevelFailure)
	require.Len(t, failures, 1)
	assert.Equal(t, "sw12-2", failures[0].Resource)
}
