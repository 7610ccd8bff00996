package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/switchyard/internal/api"
	"github.com/imamik/switchyard/internal/provisioning"
)

// listen is replaced in tests.
var listen = func(ctx context.Context, srv *api.Server, addr string) error {
	return srv.ListenAndServe(ctx, addr)
}

// Serve runs the HTTP API until ctx is canceled. addr overrides api.addr.
func Serve(ctx context.Context, opts Options, addr string) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if addr == "" {
		addr = s.cfg.API.Addr
	}
	log := provisioning.NewFuncrLogger(stderr, opts.Verbosity).WithName("api")
	if s.cfg.API.JWTSecret == "" {
		log.Info("WARNING: api.jwt_secret is not set, the API accepts unauthenticated requests")
	} else if err := s.cfg.RequireAPIAuth(); err != nil {
		return err
	}

	srv := api.NewServer(s.runner, s.cfg.API.JWTSecret, log)
	if err := listen(ctx, srv, addr); err != nil {
		return fmt.Errorf("API server: %w", err)
	}
	return nil
}
