package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "switchyard", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expected := []string{
		"catalog", "site", "switches", "addresses", "promote",
		"init", "serve", "token", "version", "completion",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, subcommands[name], "Expected subcommand %s not found", name)
	}
	assert.Len(t, cmd.Commands(), len(expected))
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	commitFlag := cmd.PersistentFlags().Lookup("commit")
	require.NotNil(t, commitFlag)
	assert.Equal(t, "false", commitFlag.DefValue, "runs are dry by default")

	require.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("json"))
}

func TestGlobals_Options(t *testing.T) {
	g := &globals{configPath: "lab.yaml", verbose: 2, commit: true, json: true}

	opts := g.options()
	assert.Equal(t, "lab.yaml", opts.ConfigPath)
	assert.Equal(t, 2, opts.Verbosity)
	assert.True(t, opts.Commit)
	assert.True(t, opts.JSON)
}

func TestVersion_Output(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer SetVersionInfo(origVersion, origCommit, origDate)

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	var out bytes.Buffer
	cmd := Version()
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "switchyard 1.2.3 (commit abc123, built 2026-01-01, go"), out.String())
}

func TestCompletion_RejectsUnknownShell(t *testing.T) {
	for _, shell := range []string{"tcsh", "powershell"} {
		cmd := Completion()
		cmd.SetArgs([]string{shell})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		assert.Error(t, cmd.Execute(), shell)
	}
}

func TestCompletion_WritesScriptForRoot(t *testing.T) {
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "__start_switchyard")
}

func TestYAMLFlagsCompleteFiles(t *testing.T) {
	root := Root()
	config := root.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, []string{"yaml", "yml"}, config.Annotations[cobra.BashCompFilenameExt])

	promote, _, err := root.Find([]string{"promote"})
	require.NoError(t, err)
	testbed := promote.Flags().Lookup("testbed")
	require.NotNil(t, testbed)
	assert.Equal(t, []string{"yaml", "yml"}, testbed.Annotations[cobra.BashCompFilenameExt])
}
