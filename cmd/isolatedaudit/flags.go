package main

import (
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/urlhandler"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	flagConfig        = "config"
	flagLogLevel      = "log-level"
	flagNumberOfRuns  = "numberOfRuns"
	flagURL           = "url"
	flagFilename      = "filename"
	flagFailurePolicy = "failure-policy"
	flagBackend       = "backend"
	flagHeadless      = "headless"
)

// loadConfig builds the configuration: defaults, then the config file, then
// ISOLATEDAUDIT_* variables, then the flags the user actually set. The target
// URL is normalized last; a URL that cannot be normalized is left for
// validation to reject.
func loadConfig(cmd *cobra.Command) (*config.GlobalConfig, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadGlobalConfig(path, zerolog.Nop())
	if err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if normalized, err := urlhandler.NormalizeURL(cfg.RunConfig.URL); err == nil {
		cfg.RunConfig.URL = normalized
	}
	return cfg, nil
}

// applyFlags copies changed flags into cfg. Flags left at their default never
// override the file or the environment.
func applyFlags(cmd *cobra.Command, cfg *config.GlobalConfig) error {
	flags := cmd.Flags()

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{flagLogLevel, &cfg.LogConfig.LogLevel},
		{flagURL, &cfg.RunConfig.URL},
		{flagFilename, &cfg.RunConfig.Filename},
		{flagFailurePolicy, &cfg.RunConfig.FailurePolicy},
		{flagBackend, &cfg.AuditConfig.Backend},
	}
	for _, f := range stringFlags {
		if flags.Lookup(f.name) == nil || !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if flags.Lookup(flagNumberOfRuns) != nil && flags.Changed(flagNumberOfRuns) {
		v, err := flags.GetInt(flagNumberOfRuns)
		if err != nil {
			return err
		}
		cfg.RunConfig.NumberOfRuns = v
	}

	if flags.Lookup(flagHeadless) != nil && flags.Changed(flagHeadless) {
		v, err := flags.GetBool(flagHeadless)
		if err != nil {
			return err
		}
		cfg.BrowserConfig.Headless = v
	}
	return nil
}
