package cmd

import (
	"github.com/spf13/cobra"

	"github.com/astro-datalab/dlfelis/internal/config"
	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/logging"
)

// loadConfig resolves the effective configuration for one command run:
// config file first, then DLFELIS_* environment overrides, then whichever
// flags the user actually set. The global logger is initialized from the
// result so every command logs the way the run is configured.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	overrides := make(map[string]interface{})

	flags := cmd.Flags()
	if flags.Changed("output") {
		overrides["output"] = outputPath
	}

	if flags.Changed("format") {
		overrides["format"] = outputFormat
	}

	if flags.Changed("plain-descriptions") {
		overrides["plain-descriptions"] = plainDescriptions
	}

	if flags.Changed("db") {
		overrides["db-path"] = dbPath
	}

	if flags.Changed("log-level") {
		overrides["log-level"] = logLevel
	}

	if flags.Changed("log-format") {
		overrides["log-format"] = logFormat
	}

	cfg, err := config.LoadConfigWithOverrides(overrides)
	if err != nil {
		cerr := errors.NewConfigError("failed to load configuration", "")
		cerr.Cause = err

		return nil, cerr
	}

	cfg.ExpandAllPaths()

	if err := logging.InitializeLogger(cfg.Logging); err != nil {
		logging.SetupFallbackLogger()
		logging.WithError(err).Warn("using fallback logger")
	}

	return cfg, nil
}
