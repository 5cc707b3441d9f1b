package main

import (
	"os"

	"github.com/spf13/cobra"

	"patchmatch/internal/config"
	"patchmatch/internal/logging"
	"patchmatch/internal/version"
)

var (
	// registryFlag is the CLI --registry flag value (distros.toml path)
	registryFlag string
	// configRootFlag is where .patchmatch/config.json is looked up
	configRootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "patchmatch",
	Short: "patchmatch - cross-distribution patch comparison",
	Long: `patchmatch compares the downstream patches two packaging ecosystems
carry for the same source package (RPM spec patches vs quilt series) and
classifies every patch as identical, similar, partially overlapping, or
unique to one side.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("patchmatch version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&registryFlag, "registry", "",
		"Path to a distros.toml registry (default: builtin)")
	rootCmd.PersistentFlags().StringVar(&configRootFlag, "config-root", ".",
		"Directory containing .patchmatch/config.json")
}

// mustLoadConfig loads and validates the configuration or exits
func mustLoadConfig(logger *logging.Logger) *config.Config {
	cfg, err := config.LoadConfig(configRootFlag)
	if err != nil {
		logger.Error("Failed to load config", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the logger for a command invocation. JSON report
// output goes to stdout, so logs always go to stderr.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
		Output: os.Stderr,
	})
}
