package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionShells are the shells operators run switchyard from.
var completionShells = []string{"bash", "zsh", "fish"}

// Completion returns the completion command. The script completes
// subcommands, flags and the YAML file arguments of --config, --file and
// --testbed.
func Completion() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish",
		Short: "Print a shell completion script",
		Long: `Print a completion script for switchyard to stdout.

Load it into the current shell:

  source <(switchyard completion bash)
  source <(switchyard completion zsh)
  switchyard completion fish | source

On a shared jump host, install it once for everyone:

  switchyard completion bash > /etc/bash_completion.d/switchyard`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

