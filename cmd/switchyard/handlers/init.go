package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/switchyard/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard asks the deployment questions.
	runWizard = config.RunWizard

	// saveConfig writes the config to a file.
	saveConfig = config.Save
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Fprintf(stdout, "Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}
	cfg := result.ToConfig()

	if err := saveConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	w := stdout
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Configuration saved to %s\n", outputPath)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Store:       %s (%s)\n", cfg.Inventory.Driver, cfg.Inventory.DSN)
	fmt.Fprintf(w, "  Onboarding:  %s\n", cfg.Catalyst.Host)
	fmt.Fprintf(w, "  NTP peer:    %s\n", cfg.Validation.NTPPeer)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next Steps")
	fmt.Fprintln(w, "----------")
	fmt.Fprintln(w, "  1. Export the secrets:")
	fmt.Fprintln(w, "     export DNAC_PASSWORD=... GOOGLE_API_KEY=... DNAC_CLI_PASSWORD=...")
	fmt.Fprintln(w, "  2. Load reference records:")
	fmt.Fprintln(w, "     switchyard catalog import -f catalog.yaml --commit")
	fmt.Fprintln(w)
}
