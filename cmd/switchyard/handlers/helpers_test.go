package handlers

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory/store"
	"github.com/imamik/switchyard/internal/orchestration"
	"github.com/imamik/switchyard/internal/platform/geocode"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/provisioning/addressing"
	"github.com/imamik/switchyard/internal/provisioning/promotion"
	"github.com/imamik/switchyard/internal/provisioning/site"
	testutil "github.com/imamik/switchyard/internal/testing"
)

// saveAndRestoreFactories saves all factory variables and restores them after the test.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origOpenStore := openStore
	origNewClients := newClients
	origStdout := stdout
	origStderr := stderr
	origColor := colorOutput
	origListen := listen
	origFileExists := fileExists
	origRunWizard := runWizard
	origSaveConfig := saveConfig

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		openStore = origOpenStore
		newClients = origNewClients
		stdout = origStdout
		stderr = origStderr
		colorOutput = origColor
		listen = origListen
		fileExists = origFileExists
		runWizard = origRunWizard
		saveConfig = origSaveConfig
	})
}

type fakeGeocoder struct{}

func (fakeGeocoder) Lookup(context.Context, string) (geocode.Coordinates, error) {
	return geocode.Coordinates{Latitude: 40.7128, Longitude: -74.006}, nil
}

type fakeChecker struct{ err error }

func (f fakeChecker) Check(context.Context, promotion.Target) error { return f.err }

// env is a handler test setup backed by a sqlite file shared between the
// handler under test and the assertions.
type env struct {
	cfg     *config.Config
	fx      *testutil.InventoryFixture
	out     *bytes.Buffer
	log     *bytes.Buffer
	checker fakeChecker
	fired   *testutil.FakeNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	saveAndRestoreFactories(t)

	dsn := filepath.Join(t.TempDir(), "inventory.db")
	seed, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = seed.Close() })

	e := &env{
		cfg:   testutil.NewConfigBuilder().WithDSN(dsn).WithJWTSecret("0123456789abcdef0123456789abcdef").Build(),
		fx:    testutil.SeedInventory(t, seed),
		out:   &bytes.Buffer{},
		log:   &bytes.Buffer{},
		fired: &testutil.FakeNotifier{},
	}

	loadConfig = func(string) (*config.Config, error) { return e.cfg, nil }
	stdout = e.out
	stderr = e.log
	colorOutput = func() bool { return false }
	newClients = func() orchestration.Clients {
		return orchestration.Clients{
			Geocoder: func(*config.Config) (site.Geocoder, error) { return fakeGeocoder{}, nil },
			Resolver: func(*config.Config) addressing.ConnectFunc {
				return addressing.Static(&testutil.FakeResolver{})
			},
			Notifier: func(*config.Config) (provisioning.Notifier, error) { return e.fired, nil },
			Checker:  func(*config.Config) (promotion.Checker, error) { return e.checker, nil },
		}
	}
	return e
}
