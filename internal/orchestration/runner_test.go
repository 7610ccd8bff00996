package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/inventory/catalog"
	"github.com/imamik/switchyard/internal/platform/geocode"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/provisioning/addressing"
	"github.com/imamik/switchyard/internal/provisioning/promotion"
	"github.com/imamik/switchyard/internal/provisioning/site"
	"github.com/imamik/switchyard/internal/provisioning/switches"
	testutil "github.com/imamik/switchyard/internal/testing"
)

type staticGeocoder struct{}

func (staticGeocoder) Lookup(context.Context, string) (geocode.Coordinates, error) {
	return geocode.Coordinates{Latitude: 1, Longitude: 2}, nil
}

type passAll struct{ checked []string }

func (p *passAll) Check(_ context.Context, t promotion.Target) error {
	p.checked = append(p.checked, t.Name)
	return nil
}

type fakeArchiver struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeArchiver) Upload(_ context.Context, runID string, _ time.Time, report []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	key := "runs/" + runID + ".json"
	f.uploads[key] = report
	return key, nil
}

type harness struct {
	fx       *testutil.InventoryFixture
	runner   *Runner
	notifier *testutil.FakeNotifier
	resolver *testutil.FakeResolver
	checker  *passAll
	archive  *fakeArchiver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fx:       testutil.NewInventoryFixture(t),
		notifier: &testutil.FakeNotifier{},
		resolver: &testutil.FakeResolver{IPs: map[string]string{}},
		checker:  &passAll{},
		archive:  &fakeArchiver{},
	}
	clients := Clients{
		Geocoder: func(*config.Config) (site.Geocoder, error) { return staticGeocoder{}, nil },
		Resolver: func(*config.Config) addressing.ConnectFunc { return addressing.Static(h.resolver) },
		Notifier: func(*config.Config) (provisioning.Notifier, error) { return h.notifier, nil },
		Checker:  func(*config.Config) (promotion.Checker, error) { return h.checker, nil },
		Archiver: func(context.Context, *config.Config) (Archiver, error) { return h.archive, nil },
	}
	h.runner = NewRunner(testutil.MinimalConfig(), h.fx.Store, testutil.NewMockObserver(), clients)
	return h
}

func TestCreateSite(t *testing.T) {
	h := newHarness(t)
	ctx := testutil.TestContext(t)

	out, err := h.runner.CreateSite(ctx, SiteInput{
		Tenant: "acme", Region: "EMEA", Name: "Site-7", Address: "Somewhere", Floors: 2,
	}, true)
	require.NoError(t, err)
	res, ok := out.Result.(*site.Result)
	require.True(t, ok)
	assert.Equal(t, "site-7", res.Site.Slug)
	assert.Len(t, res.Locations, 2)
	assert.Equal(t, []string{provisioning.SitePipeline}, h.notifier.Fired)

	assert.Equal(t, "runs/"+out.Journal.RunID()+".json", out.ArchiveKey)
	var archived provisioning.Report
	require.NoError(t, json.Unmarshal(h.archive.uploads[out.ArchiveKey], &archived))
	assert.Equal(t, OpSite, archived.Operation)
	assert.True(t, archived.Commit)
}

func TestCreateSite_ResolutionErrorIsValidation(t *testing.T) {
	h := newHarness(t)
	_, err := h.runner.CreateSite(testutil.TestContext(t), SiteInput{
		Tenant: "nobody", Region: "emea", Name: "S1", Address: "x", Floors: 1,
	}, true)
	require.Error(t, err)
	assert.True(t, provisioning.IsValidation(err))
	assert.Contains(t, err.Error(), "tenant")
}

func TestCreateSite_InvalidFloors(t *testing.T) {
	h := newHarness(t)
	_, err := h.runner.CreateSite(testutil.TestContext(t), SiteInput{
		Tenant: "acme", Region: "emea", Name: "S1", Address: "x", Floors: 0,
	}, true)
	assert.True(t, provisioning.IsValidation(err))
}

func TestAddSwitchesThenPromote(t *testing.T) {
	h := newHarness(t)
	ctx := testutil.TestContext(t)
	h.resolver.IPs["FOC1"] = "10.12.0.11"

	out, err := h.runner.AddSwitches(ctx, SwitchesInput{
		Tenant:     "acme",
		Site:       "Site-12",
		DeviceType: "C9300-48P",
		DeviceRole: "access-switch",
		Uplink:     testutil.FixtureUplink,
		Serials:    "FOC1,FOC2",
	}, true)
	require.NoError(t, err)
	res := out.Result.(*switches.Result)
	require.Len(t, res.Created, 2)
	assert.Equal(t, []string{"sw12-1"}, res.Addressing.Assigned)
	assert.Equal(t, []string{provisioning.SwitchPipeline}, h.notifier.Fired)

	out, err = h.runner.Promote(ctx, PromoteInput{}, true)
	require.NoError(t, err)
	pr := out.Result.(*promotion.RunResult)
	assert.Equal(t, []string{"sw12-1"}, h.checker.checked)
	assert.Equal(t, []string{"sw12-1"}, pr.Outcome.Promoted)

	d, err := h.fx.Store.GetDevice(ctx, inventory.DeviceFilter{Name: "sw12-1"})
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusActive, d.Status)
}

func TestPromote_RejectsUnnamedTarget(t *testing.T) {
	h := newHarness(t)
	ctx := testutil.TestContext(t)

	_, err := h.runner.Promote(ctx, PromoteInput{
		Targets: []promotion.Target{{Name: "", Host: "10.9.9.9"}},
	}, true)
	require.Error(t, err)
	assert.True(t, provisioning.IsValidation(err))
	assert.Contains(t, err.Error(), "no name")
	assert.Empty(t, h.checker.checked)
}

func TestAddSwitches_UnknownUplink(t *testing.T) {
	h := newHarness(t)
	_, err := h.runner.AddSwitches(testutil.TestContext(t), SwitchesInput{
		Tenant: "acme", Site: "site-12", DeviceType: "c9300-48p", DeviceRole: "access-switch",
		Uplink: "Te9/9/9", Serials: "X",
	}, true)
	require.Error(t, err)
	assert.True(t, provisioning.IsValidation(err))
	assert.Contains(t, err.Error(), "uplink")
}

func TestAssignAddresses_AbortReturnsJournal(t *testing.T) {
	h := newHarness(t)
	h.fx.AddDevice(t, "sw12-1", "FOC1", inventory.StatusPlanned)
	h.runner.config = testutil.NewConfigBuilder().WithMgmtVLAN("MISSING").Build()

	out, err := h.runner.AssignAddresses(testutil.TestContext(t), AddressesInput{Tenant: "acme"}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	require.NotNil(t, out)
	assert.Equal(t, 1, out.Journal.Count(provisioning.LevelFailure))
}

func TestDryRun_NotArchivedAsCommitted(t *testing.T) {
	h := newHarness(t)
	ctx := testutil.TestContext(t)
	c := &catalog.Catalog{Tenants: []catalog.Record{{Name: "Globex", Slug: "globex"}}}

	out, err := h.runner.ImportCatalog(ctx, c, false)
	require.NoError(t, err)
	assert.Equal(t, &catalog.Summary{Created: 1}, out.Result)
	assert.False(t, out.Journal.Report().Commit)

	_, err = h.fx.Store.GetTenant(ctx, inventory.RecordFilter{Slug: "globex"})
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestArchiveFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.archive.err = errors.New("access denied")

	out, err := h.runner.ImportCatalog(testutil.TestContext(t), &catalog.Catalog{}, true)
	require.NoError(t, err)
	assert.Empty(t, out.ArchiveKey)
	assert.Equal(t, 1, out.Journal.Count(provisioning.LevelWarning))
}

func TestOutcome_MarshalJSON(t *testing.T) {
	h := newHarness(t)
	out, err := h.runner.ImportCatalog(testutil.TestContext(t), &catalog.Catalog{}, true)
	require.NoError(t, err)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "report")
	assert.Contains(t, decoded, "result")
	assert.Contains(t, decoded, "archive_key")
}

func TestDefaultClients_NotConfigured(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	clients := DefaultClients()

	_, err := clients.Geocoder(cfg)
	assert.ErrorIs(t, err, ErrNotConfigured)

	n, err := clients.Notifier(cfg)
	require.NoError(t, err)
	assert.Nil(t, n)

	a, err := clients.Archiver(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, a)

	_, _, err = clients.Resolver(cfg)(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
