package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/platform/catalyst"
	"github.com/imamik/switchyard/internal/platform/geocode"
	"github.com/imamik/switchyard/internal/platform/gitlab"
	"github.com/imamik/switchyard/internal/platform/s3"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/provisioning/addressing"
	"github.com/imamik/switchyard/internal/provisioning/promotion"
	"github.com/imamik/switchyard/internal/provisioning/site"
)

// ErrNotConfigured is returned when an operation needs settings that are missing.
var ErrNotConfigured = errors.New("not configured")

// Archiver stores a finished run report. Implemented by s3.Archive.
type Archiver interface {
	Upload(ctx context.Context, runID string, startedAt time.Time, report []byte) (string, error)
}

// Clients builds the external collaborators of a run from config. Fields
// are replaced in tests.
type Clients struct {
	Geocoder func(cfg *config.Config) (site.Geocoder, error)
	Resolver func(cfg *config.Config) addressing.ConnectFunc
	// Notifier returns nil when no pipeline trigger is configured.
	Notifier func(cfg *config.Config) (provisioning.Notifier, error)
	Checker  func(cfg *config.Config) (promotion.Checker, error)
	// Archiver returns nil when archiving is disabled.
	Archiver func(ctx context.Context, cfg *config.Config) (Archiver, error)
}

// DefaultClients wires the production clients.
func DefaultClients() Clients {
	return Clients{
		Geocoder: newGeocoder,
		Resolver: catalystResolver,
		Notifier: newNotifier,
		Checker:  newChecker,
		Archiver: newArchiver,
	}
}

func notConfigured(err error) error {
	return fmt.Errorf("%w: %v", ErrNotConfigured, err)
}

func newGeocoder(cfg *config.Config) (site.Geocoder, error) {
	if err := cfg.RequireGeocode(); err != nil {
		return nil, notConfigured(err)
	}
	return geocode.NewClient(cfg.Geocode.APIKey, cfg.Geocode.BaseURL, cfg.Timeouts.HTTP)
}

// catalystResolver connects lazily so runs without unassigned devices
// never log in.
func catalystResolver(cfg *config.Config) addressing.ConnectFunc {
	return func(ctx context.Context) (addressing.Resolver, func() error, error) {
		if err := cfg.RequireCatalyst(); err != nil {
			return nil, nil, notConfigured(err)
		}
		client, err := catalyst.Connect(ctx, catalyst.Config{
			Host:     cfg.Catalyst.Host,
			Username: cfg.Catalyst.Username,
			Password: cfg.Catalyst.Password,
			Insecure: cfg.Catalyst.Insecure,
			Timeout:  cfg.Timeouts.HTTP,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
}

func newNotifier(cfg *config.Config) (provisioning.Notifier, error) {
	if cfg.Pipeline.TriggerURL == "" {
		return nil, nil
	}
	trigger, err := gitlab.NewTrigger(cfg.Pipeline.TriggerURL, cfg.Pipeline.Token, cfg.Timeouts.HTTP)
	if err != nil {
		return nil, err
	}
	return trigger, nil
}

func newChecker(cfg *config.Config) (promotion.Checker, error) {
	if err := cfg.RequireValidation(); err != nil {
		return nil, notConfigured(err)
	}
	return &promotion.NTPChecker{
		Peer:        cfg.Validation.NTPPeer,
		Command:     cfg.Validation.Command,
		DialTimeout: cfg.Timeouts.SSHDial,
		Attempts:    cfg.Timeouts.SSHAttempts,
		RetryDelay:  cfg.Timeouts.SSHRetryDelay,
	}, nil
}

func newArchiver(ctx context.Context, cfg *config.Config) (Archiver, error) {
	a := cfg.Archive
	if !a.Enabled() {
		return nil, nil
	}
	client, err := s3.NewClient(ctx, a.Endpoint, a.Region, a.AccessKey, a.SecretKey)
	if err != nil {
		return nil, err
	}
	return s3.NewArchive(client, a.Bucket, a.Prefix), nil
}
