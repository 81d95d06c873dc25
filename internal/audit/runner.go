package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/isolatedaudit/internal/browser"
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/rs/zerolog"
)

// Auditor measures one page load inside an open browser session.
type Auditor interface {
	Audit(ctx context.Context, s browser.Session, url string, opts Options, settings Settings) (*Report, error)
}

// NewAuditor returns the backend selected by cfg.Backend.
func NewAuditor(cfg config.AuditConfig, logger zerolog.Logger) (Auditor, error) {
	switch cfg.Backend {
	case "", config.BackendCDP:
		return NewCDPAuditor(logger), nil
	case config.BackendLighthouse:
		bin := cfg.LighthousePath
		if bin == "" {
			bin = config.DefaultAuditLighthousePath
		}
		return NewLighthouseAuditor(bin, logger), nil
	default:
		return nil, fmt.Errorf("unknown audit backend '%s'", cfg.Backend)
	}
}

// Runner performs one isolated audit: its own browser process, one page load, one result.
type Runner struct {
	sessions browser.SessionProvider
	auditor  Auditor
	logger   zerolog.Logger
}

// NewRunner creates a runner
func NewRunner(sessions browser.SessionProvider, auditor Auditor, logger zerolog.Logger) *Runner {
	return &Runner{
		sessions: sessions,
		auditor:  auditor,
		logger:   logger.With().Str("component", "AuditRunner").Logger(),
	}
}

// Run audits url in a fresh browser session and returns the metric row.
// The session is released before Run returns, whatever the outcome.
func (r *Runner) Run(ctx context.Context, url string, opts Options, settings Settings) (models.AuditResult, error) {
	pattern := strings.Join(opts.BlockedURLPatterns, ",")

	var report *Report
	err := r.sessions.WithSession(ctx, func(s browser.Session) error {
		var auditErr error
		report, auditErr = r.auditor.Audit(ctx, s, url, opts, settings)
		return auditErr
	})
	if err != nil {
		return models.AuditResult{}, classify(url, err)
	}

	result, err := report.Result(url, pattern)
	if err != nil {
		return models.AuditResult{}, err
	}

	r.logSummary(result)
	return result, nil
}

func (r *Runner) logSummary(result models.AuditResult) {
	r.logger.Info().
		Str("url", result.URL).
		Str("pattern", result.Pattern).
		Str("first_contentful_paint", result.FirstContentfulPaint).
		Str("largest_contentful_paint", result.LargestContentfulPaint).
		Str("speed_index", result.SpeedIndex).
		Str("max_potential_fid", result.MaxPotentialFID).
		Str("cumulative_layout_shift", result.CumulativeLayoutShift).
		Str("total_blocking_time", result.TotalBlockingTime).
		Str("time_to_interactive", result.TimeToInteractive).
		Msg("Audit summary")
}

// classify keeps typed errors as they are and wraps anything else as an AuditError.
func classify(url string, err error) error {
	var (
		launchErr  *browser.LaunchError
		connErr    *browser.ConnectionError
		auditErr   *AuditError
		missingErr *MissingMetricError
	)
	switch {
	case errors.As(err, &launchErr), errors.As(err, &connErr),
		errors.As(err, &auditErr), errors.As(err, &missingErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &AuditError{URL: url, Err: err}
	}
}
