// Command switchyard provisions branch sites and their access switches in
// the network inventory.
//
// Every provisioning command is a dry run unless --commit is given. Run
// "switchyard init" to write a starter config, then "switchyard --help" for
// the full command list.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/imamik/switchyard/cmd/switchyard/commands"
)

// Stamped by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(moduleVersion(), commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "switchyard:", err)
		os.Exit(1)
	}
}

// moduleVersion falls back to the module version for go install builds.
func moduleVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
