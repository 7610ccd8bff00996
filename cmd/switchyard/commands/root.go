// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/switchyard/cmd/switchyard/handlers"
)

// globals holds the persistent flags every run command reads.
type globals struct {
	configPath string
	verbose    int
	commit     bool
	json       bool
}

func (g *globals) options() handlers.Options {
	return handlers.Options{
		ConfigPath: g.configPath,
		Verbosity:  g.verbose,
		Commit:     g.commit,
		JSON:       g.json,
	}
}

// Root returns the root command for the switchyard CLI.
func Root() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "switchyard",
		Short:         "Provision branch sites and access switches in the network inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Path to configuration file (default: switchyard.yaml)")
	flags.CountVarP(&g.verbose, "verbose", "v", "Increase log verbosity")
	flags.BoolVar(&g.commit, "commit", false, "Apply changes (default is a dry run that is rolled back)")
	flags.BoolVar(&g.json, "json", false, "Print the run report as JSON")
	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")

	// Provisioning
	cmd.AddCommand(Catalog(g))
	cmd.AddCommand(Site(g))
	cmd.AddCommand(Switches(g))
	cmd.AddCommand(Addresses(g))
	cmd.AddCommand(Promote(g))

	// Service and utility
	cmd.AddCommand(Init())
	cmd.AddCommand(Serve(g))
	cmd.AddCommand(Token(g))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
