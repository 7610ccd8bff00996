package switches

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/provisioning/addressing"
	testutil "github.com/imamik/switchyard/internal/testing"
)

// faultyStore fails device creation or interface updates for chosen serials.
type faultyStore struct {
	inventory.Store
	failCreate  map[string]bool
	failRelabel map[uint]bool
}

func (f *faultyStore) CreateDevice(ctx context.Context, d *inventory.Device) error {
	if f.failCreate[d.Serial] {
		return errors.New("connection reset")
	}
	return f.Store.CreateDevice(ctx, d)
}

func (f *faultyStore) UpdateInterface(ctx context.Context, iface *inventory.Interface) error {
	if f.failRelabel[iface.DeviceID] {
		return errors.New("connection reset")
	}
	return f.Store.UpdateInterface(ctx, iface)
}

func request(fx *testutil.InventoryFixture, serials string) Request {
	return Request{
		Tenant:     fx.Tenant,
		Site:       fx.Site,
		DeviceType: fx.DeviceType,
		DeviceRole: fx.Role,
		Uplink:     fx.Uplink,
		Serials:    serials,
	}
}

func TestParseSerials(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{"ABC1", []string{"ABC1"}},
		{" ABC1 ,XYZ2,, ABC1 ", []string{"ABC1", "XYZ2", "ABC1"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSerials(tt.in), "input %q", tt.in)
	}
}

func TestNextIndex(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.TestContext(t)

	n, err := NextIndex(ctx, fx.Store, fx.Site)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fx.AddDevice(t, "sw12-1", "A", inventory.StatusPlanned)
	fx.AddDevice(t, "sw12-7", "B", inventory.StatusActive)
	fx.AddDevice(t, "sw12-core", "C", inventory.StatusPlanned)
	fx.AddDevice(t, "dist12-9", "D", inventory.StatusPlanned)

	n, err = NextIndex(ctx, fx.Store, fx.Site)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestRequest_Validate(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)

	req := request(fx, "A")
	assert.NoError(t, req.Validate())

	req.Uplink = &inventory.InterfaceTemplate{DeviceTypeID: fx.DeviceType.ID + 1, Name: "Gi1/1/1"}
	req.DeviceRole = nil
	err := req.Validate()
	require.Error(t, err)
	assert.True(t, provisioning.IsValidation(err))
	assert.Contains(t, err.Error(), "role: is required")
	assert.Contains(t, err.Error(), `uplink: template "Gi1/1/1" does not belong to device type c9300-48p`)
}

func TestAdd_NamesAndSkipsDuplicates(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	notifier := &testutil.FakeNotifier{}
	resolver := &testutil.FakeResolver{IPs: map[string]string{"ABC1": "10.12.0.11"}}
	p := &Provisioner{
		Addressing: &addressing.Orchestrator{Connect: addressing.Static(resolver)},
		Notifier:   notifier,
	}

	res, err := p.Add(ctx, request(fx, "ABC1, ABC1, XYZ2"))
	require.NoError(t, err)

	require.Len(t, res.Created, 2)
	assert.Equal(t, "sw12-1", res.Created[0].Name)
	assert.Equal(t, "sw12-2", res.Created[1].Name)
	assert.Equal(t, []string{"ABC1"}, res.Skipped)
	assert.Empty(t, res.Failed)

	d, err := fx.Store.GetDevice(ctx, inventory.DeviceFilter{Serial: "XYZ2"})
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusPlanned, d.Status)
	assert.Equal(t, "Ansible_Day0-Template", d.CustomFields[FieldTemplateName])
	assert.Equal(t, "C9300-48P-E", d.CustomFields[FieldPID])
	assert.Equal(t, fx.Role.ID, d.DeviceRoleID)

	uplink, err := fx.Store.GetInterface(ctx, inventory.InterfaceFilter{DeviceID: d.ID, Label: inventory.LabelUplink})
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureUplink, uplink.Name)

	require.NotNil(t, res.Addressing)
	assert.Equal(t, []string{"sw12-1"}, res.Addressing.Assigned)
	assert.Equal(t, []string{"sw12-2"}, res.Addressing.Skipped)
	assert.ElementsMatch(t, []string{"ABC1", "XYZ2"}, resolver.Calls)

	assert.Equal(t, []string{provisioning.SwitchPipeline}, notifier.Fired)
}

func TestAdd_ContinuesAfterExistingDevices(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	fx.AddDevice(t, "sw12-3", "OLD", inventory.StatusActive)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	p := &Provisioner{}

	res, err := p.Add(ctx, request(fx, "NEW1,OLD,NEW2"))
	require.NoError(t, err)
	require.Len(t, res.Created, 2)
	assert.Equal(t, "sw12-4", res.Created[0].Name)
	assert.Equal(t, "sw12-5", res.Created[1].Name)
	assert.Equal(t, []string{"OLD"}, res.Skipped)
	assert.Nil(t, res.Addressing)
}

func TestAdd_EmptySerialsIsNoop(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	notifier := &testutil.FakeNotifier{}
	p := &Provisioner{Notifier: notifier}

	res, err := p.Add(ctx, request(fx, " , "))
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Empty(t, notifier.Fired)
	assert.Len(t, testutil.EventsAtLevel(ctx, provisioning.LevelWarning), 1)
}

func TestAdd_CreateFailureDoesNotConsumeIndex(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	store := &faultyStore{Store: fx.Store, failCreate: map[string]bool{"BAD": true}}
	ctx := testutil.RunContext(t, store, nil, true)
	connects := 0
	p := &Provisioner{Addressing: &addressing.Orchestrator{
		Connect: func(context.Context) (addressing.Resolver, func() error, error) {
			connects++
			return &testutil.FakeResolver{}, func() error { return nil }, nil
		},
	}}

	res, err := p.Add(ctx, request(fx, "BAD,GOOD"))
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "sw12-1", res.Created[0].Name)
	assert.Contains(t, res.Failed["BAD"], "creating device sw12-1")
	assert.Equal(t, 1, connects)
}

func TestAdd_RelabelFailureConsumesIndex(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	store := &faultyStore{Store: fx.Store}
	ctx := testutil.RunContext(t, store, nil, true)

	// Device IDs start at 1 in a fresh store.
	store.failRelabel = map[uint]bool{1: true}
	p := &Provisioner{}

	res, err := p.Add(ctx, request(fx, "FIRST,SECOND"))
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "sw12-2", res.Created[0].Name)
	assert.Contains(t, res.Failed["FIRST"], "labelling uplink of sw12-1")

	kept, err := fx.Store.GetDevice(ctx, inventory.DeviceFilter{Serial: "FIRST"})
	require.NoError(t, err)
	assert.Equal(t, "sw12-1", kept.Name)
}

func TestAdd_UnknownSiteNumber(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, true)
	site := &inventory.Site{Name: "Headquarters", Slug: "headquarters", TenantID: fx.Tenant.ID, Status: inventory.StatusPlanned}
	require.NoError(t, fx.Store.CreateSite(ctx, site))

	req := request(fx, "HQ1")
	req.Site = site
	res, err := (&Provisioner{}).Add(ctx, req)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "swunknown-1", res.Created[0].Name)
	assert.Len(t, testutil.EventsAtLevel(ctx, provisioning.LevelWarning), 1)
}

func TestPhase_DryRun(t *testing.T) {
	fx := testutil.NewInventoryFixture(t)
	ctx := testutil.RunContext(t, fx.Store, nil, false)
	notifier := &testutil.FakeNotifier{}
	p := &Provisioner{Notifier: notifier}

	var res *Result
	require.NoError(t, provisioning.RunPhases(ctx, []provisioning.Phase{p.Phase(request(fx, "A,B"), &res)}))
	assert.Len(t, res.Created, 2)

	devices, err := fx.Store.ListDevices(ctx, inventory.DeviceFilter{})
	require.NoError(t, err)
	assert.Empty(t, devices)
	assert.Empty(t, notifier.Fired)
}
