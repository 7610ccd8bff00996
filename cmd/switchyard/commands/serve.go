package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
)

// Serve returns the command running the HTTP API.
func Serve(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the provisioning operations over HTTP until interrupted.

Requests are dry runs unless they pass ?commit=true. When api.jwt_secret is
set every /api/v1 request needs a bearer token from 'switchyard token'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return handlers.Serve(ctx, g.options(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: api.addr)")

	return cmd
}
