package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
)

// Token returns the command issuing API tokens.
func Token(g *globals) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token SUBJECT",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return handlers.Token(g.options(), args[0], ttl)
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: api.token_ttl)")

	return cmd
}
