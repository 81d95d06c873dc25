package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/audit"
	"github.com/aleister1102/isolatedaudit/internal/blocklist"
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/datastore"
	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/aleister1102/isolatedaudit/internal/rslimiter"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// AuditRunner performs one isolated audit.
type AuditRunner interface {
	Run(ctx context.Context, url string, opts audit.Options, settings audit.Settings) (models.AuditResult, error)
}

// ResultWriter persists the batch results; its failure is fatal.
type ResultWriter interface {
	WriteResults(filename string, rows []models.AuditResult) error
}

// HistoryRecorder stores a finished batch.
type HistoryRecorder interface {
	RecordBatch(ctx context.Context, batch datastore.BatchRecord) (string, error)
}

// ResultExporter writes the batch to a secondary format.
type ResultExporter interface {
	Export(ctx context.Context, batchID string, rows []models.AuditResult) (*datastore.WriteResult, error)
}

// SummaryGenerator renders a human-readable report of the batch.
type SummaryGenerator interface {
	Generate(url string, rows []models.AuditResult, outputPath string) error
}

// QuietGuard delays a run until the host is idle.
type QuietGuard interface {
	WaitForQuiet(ctx context.Context) rslimiter.ResourceUsage
}

// BatchOptions describes one batch.
type BatchOptions struct {
	BatchID         string // generated when empty
	URL             string
	NumberOfRuns    int
	Patterns        []string
	Filename        string
	FailurePolicy   string
	AuditOptions    audit.Options
	AuditSettings   audit.Settings
	HTMLSummaryPath string
}

// Summary is the outcome of a batch.
type Summary struct {
	BatchID    string
	URL        string
	Filename   string
	Planned    int
	Results    []models.AuditResult
	Failures   []models.RunFailure
	Status     string
	Warnings   []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Orchestrator runs the pattern × repetition matrix against one URL.
type Orchestrator struct {
	opts     BatchOptions
	runner   AuditRunner
	writer   ResultWriter
	history  HistoryRecorder
	exporter ResultExporter
	summary  SummaryGenerator
	guard    QuietGuard
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures optional collaborators of the Orchestrator.
type Option func(*Orchestrator)

// WithHistory records every batch in store.
func WithHistory(store HistoryRecorder) Option {
	return func(o *Orchestrator) { o.history = store }
}

// WithExporter exports every batch through exporter.
func WithExporter(exporter ResultExporter) Option {
	return func(o *Orchestrator) { o.exporter = exporter }
}

// WithSummary renders an HTML summary to BatchOptions.HTMLSummaryPath.
func WithSummary(generator SummaryGenerator) Option {
	return func(o *Orchestrator) { o.summary = generator }
}

// WithGuard waits for a quiet host before each run.
func WithGuard(guard QuietGuard) Option {
	return func(o *Orchestrator) { o.guard = guard }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an orchestrator for one batch.
func NewOrchestrator(opts BatchOptions, runner AuditRunner, writer ResultWriter, logger zerolog.Logger, options ...Option) *Orchestrator {
	o := &Orchestrator{
		opts:   opts,
		runner: runner,
		writer: writer,
		logger: logger.With().Str("component", "Orchestrator").Logger(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Execute runs every cell in order, one at a time, then writes the CSV once
// and feeds the optional sinks. The returned error is non-nil when the batch
// was aborted or cancelled, or when the CSV could not be written; results
// collected before an abort or cancellation are persisted either way.
func (o *Orchestrator) Execute(ctx context.Context) (*Summary, error) {
	plan := BuildPlan(o.opts.Patterns, o.opts.NumberOfRuns)

	batchID := o.opts.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	summary := &Summary{
		BatchID:   batchID,
		URL:       o.opts.URL,
		Filename:  o.opts.Filename,
		Planned:   len(plan),
		Results:   make([]models.AuditResult, 0, len(plan)),
		StartedAt: o.now(),
	}

	o.logger.Info().
		Str("batch_id", summary.BatchID).
		Str("url", o.opts.URL).
		Int("runs", o.opts.NumberOfRuns).
		Int("patterns", len(plan)/max(o.opts.NumberOfRuns, 1)).
		Str("failure_policy", o.opts.FailurePolicy).
		Msg("Starting isolated audit batch")

	runErr := o.runPlan(ctx, plan, summary)
	summary.FinishedAt = o.now()

	if err := o.writer.WriteResults(o.opts.Filename, summary.Results); err != nil {
		o.logger.Error().Err(err).Str("path", o.opts.Filename).Msg("Failed to write results")
		return summary, err
	}

	// Sinks still run after cancellation so partial batches are kept.
	o.persist(context.WithoutCancel(ctx), summary)
	o.logSummary(summary)
	return summary, runErr
}

// runPlan fills summary.Results and summary.Failures and sets the status.
func (o *Orchestrator) runPlan(ctx context.Context, plan []models.RunCell, summary *Summary) error {
	summary.Status = datastore.BatchStatusCompleted

	for _, cell := range plan {
		if err := ctx.Err(); err != nil {
			o.logger.Warn().Int("completed", cell.Index-1).Int("total", cell.Total).Msg("Batch cancelled, stopping before next run")
			summary.Status = datastore.BatchStatusCancelled
			return err
		}

		o.logger.Info().Msgf("Run isolated: %d / %d", cell.Index, cell.Total)

		if o.guard != nil {
			o.guard.WaitForQuiet(ctx)
		}

		opts := o.opts.AuditOptions.WithBlockedPatterns(blocklist.BlockedURLs(cell.Pattern))
		result, err := o.runner.Run(ctx, o.opts.URL, opts, o.opts.AuditSettings)
		if err != nil {
			if ctx.Err() != nil {
				o.logger.Warn().Err(err).Int("run", cell.Index).Msg("Batch cancelled during run")
				summary.Status = datastore.BatchStatusCancelled
				return ctx.Err()
			}

			kind := audit.Kind(err)

			summary.Failures = append(summary.Failures, models.RunFailure{Cell: cell, Kind: kind, Err: err})
			o.logger.Error().
				Err(err).
				Str("url", o.opts.URL).
				Str("pattern", cell.Pattern).
				Int("repetition", cell.Repetition).
				Str("kind", kind).
				Msg("Run failed")

			if o.opts.FailurePolicy == config.FailurePolicyAbort {
				summary.Status = datastore.BatchStatusAborted
				return fmt.Errorf("run %d/%d (pattern %q, repetition %d) failed: %w", cell.Index, cell.Total, cell.Pattern, cell.Repetition, err)
			}
			summary.Status = datastore.BatchStatusPartial
			continue
		}

		result.URL = o.opts.URL
		result.Pattern = cell.Pattern
		result.Repetition = cell.Repetition
		summary.Results = append(summary.Results, result)
	}
	return nil
}

// persist feeds the optional sinks. Their failures become warnings.
func (o *Orchestrator) persist(ctx context.Context, summary *Summary) {
	if o.history != nil {
		_, err := o.history.RecordBatch(ctx, datastore.BatchRecord{
			ID:           summary.BatchID,
			URL:          summary.URL,
			NumberOfRuns: o.opts.NumberOfRuns,
			Patterns:     blocklist.Matrix(o.opts.Patterns),
			StartedAt:    summary.StartedAt,
			FinishedAt:   summary.FinishedAt,
			Status:       summary.Status,
			CSVPath:      summary.Filename,
			Failures:     len(summary.Failures),
			Results:      summary.Results,
		})
		if err != nil {
			o.warn(summary, "history", err)
		}
	}

	if o.exporter != nil {
		if _, err := o.exporter.Export(ctx, summary.BatchID, summary.Results); err != nil {
			o.warn(summary, "parquet", err)
		}
	}

	if o.summary != nil && o.opts.HTMLSummaryPath != "" {
		if err := o.summary.Generate(summary.URL, summary.Results, o.opts.HTMLSummaryPath); err != nil {
			o.warn(summary, "html summary", err)
		}
	}
}

func (o *Orchestrator) warn(summary *Summary, sink string, err error) {
	msg := fmt.Sprintf("%s sink failed: %v", sink, err)
	summary.Warnings = append(summary.Warnings, msg)
	o.logger.Warn().Err(err).Str("sink", sink).Msg("Optional sink failed")
}

func (o *Orchestrator) logSummary(summary *Summary) {
	byKind := lo.CountValuesBy(summary.Failures, func(f models.RunFailure) string { return f.Kind })

	event := o.logger.Info().
		Str("batch_id", summary.BatchID).
		Str("status", summary.Status).
		Int("planned", summary.Planned).
		Int("succeeded", len(summary.Results)).
		Int("failed", len(summary.Failures)).
		Str("csv", summary.Filename).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt))
	for kind, count := range byKind {
		event = event.Int("failed_"+kind, count)
	}
	event.Msg("Batch finished")
}
