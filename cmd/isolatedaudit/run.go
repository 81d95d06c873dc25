package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/audit"
	"github.com/aleister1102/isolatedaudit/internal/browser"
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/datastore"
	"github.com/aleister1102/isolatedaudit/internal/logger"
	"github.com/aleister1102/isolatedaudit/internal/orchestrator"
	"github.com/aleister1102/isolatedaudit/internal/reporter"
	"github.com/aleister1102/isolatedaudit/internal/rslimiter"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// exitInterrupted is the conventional status for a SIGINT-terminated process.
const exitInterrupted = 130

var errInterrupted = errors.New("interrupted")

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	batchID := uuid.NewString()
	appLogger, err := logger.NewWithBatchID(cfg.LogConfig, batchID)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	redirectStdLog(appLogger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runBatch(ctx, cfg, batchID, appLogger)
	if err != nil && errors.Is(err, context.Canceled) {
		return errInterrupted
	}
	return err
}

// redirectStdLog sends output of libraries that use the standard log
// package into the application logger.
func redirectStdLog(appLogger zerolog.Logger) {
	stdlog.SetOutput(appLogger)
	stdlog.SetFlags(0)
}

// runBatch wires the collaborators for one batch and executes it. The CSV
// output is created first so an unwritable path fails before any audit.
func runBatch(ctx context.Context, cfg *config.GlobalConfig, batchID string, appLogger zerolog.Logger) error {
	filename := cfg.RunConfig.ResolveFilename(time.Now())
	csvWriter := reporter.NewCSVWriter(appLogger)
	if err := csvWriter.Prepare(filename); err != nil {
		return err
	}

	manager := browser.NewManager(cfg.BrowserConfig, appLogger)

	auditor, err := audit.NewAuditor(cfg.AuditConfig, appLogger)
	if err != nil {
		return err
	}
	runner := audit.NewRunner(manager, auditor, appLogger)

	settings := audit.SettingsFromConfig(cfg.AuditConfig)
	patterns := orchestrator.ResolvePatterns(ctx, cfg.PatternsConfig, cfg.RunConfig.URL, manager, settings.MaxWaitForLoad, appLogger)

	batch := orchestrator.BatchOptions{
		BatchID:         batchID,
		URL:             cfg.RunConfig.URL,
		NumberOfRuns:    cfg.RunConfig.NumberOfRuns,
		Patterns:        patterns,
		Filename:        filename,
		FailurePolicy:   cfg.RunConfig.FailurePolicy,
		AuditOptions:    audit.OptionsFromConfig(cfg.AuditConfig),
		AuditSettings:   settings,
		HTMLSummaryPath: cfg.ReporterConfig.HTMLSummaryPath,
	}

	options, cleanup, err := sinkOptions(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	o := orchestrator.NewOrchestrator(batch, runner, csvWriter, appLogger, options...)
	summary, err := o.Execute(ctx)
	if summary != nil {
		fmt.Fprintf(os.Stderr, "%s: %d/%d runs written to %s\n", summary.Status, len(summary.Results), summary.Planned, summary.Filename)
		for _, w := range summary.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}
	return err
}

// sinkOptions opens the optional sinks enabled in cfg. A sink that cannot be
// opened is skipped with a warning; only the CSV output is mandatory.
func sinkOptions(cfg *config.GlobalConfig, appLogger zerolog.Logger) ([]orchestrator.Option, func(), error) {
	var options []orchestrator.Option
	cleanup := func() {}

	if cfg.StorageConfig.HistoryDBPath != "" {
		store, err := datastore.NewHistoryStore(cfg.StorageConfig.HistoryDBPath, appLogger)
		if err != nil {
			appLogger.Warn().Err(err).Str("path", cfg.StorageConfig.HistoryDBPath).Msg("History store disabled")
		} else {
			options = append(options, orchestrator.WithHistory(store))
			cleanup = func() {
				if err := store.Close(); err != nil {
					appLogger.Warn().Err(err).Msg("Failed to close history store")
				}
			}
		}
	}

	if cfg.StorageConfig.ParquetPath != "" {
		exporter, err := datastore.NewParquetExporter(cfg.StorageConfig, appLogger)
		if err != nil {
			appLogger.Warn().Err(err).Str("path", cfg.StorageConfig.ParquetPath).Msg("Parquet export disabled")
		} else {
			options = append(options, orchestrator.WithExporter(exporter))
		}
	}

	if cfg.ReporterConfig.HTMLSummaryPath != "" {
		summaryReporter, err := reporter.NewSummaryReporter(cfg.ReporterConfig, appLogger)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to initialize HTML summary: %w", err)
		}
		options = append(options, orchestrator.WithSummary(summaryReporter))
	}

	if cfg.ResourceGuardConfig.Enabled {
		options = append(options, orchestrator.WithGuard(rslimiter.NewGuard(cfg.ResourceGuardConfig, appLogger)))
	}

	return options, cleanup, nil
}
