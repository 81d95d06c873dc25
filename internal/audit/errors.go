package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleister1102/isolatedaudit/internal/browser"
)

// AuditError means the auditor ran but failed to produce a report.
type AuditError struct {
	URL string
	Err error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("audit of '%s' failed: %v", e.URL, e.Err)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}

// MissingMetricError means the report lacks a metric or its display value.
type MissingMetricError struct {
	Metric string
}

func (e *MissingMetricError) Error() string {
	return fmt.Sprintf("metric '%s' missing from audit report", e.Metric)
}

// Error kinds as reported in logs and run history.
const (
	KindLaunch        = "launch"
	KindConnection    = "connection"
	KindAudit         = "audit"
	KindMissingMetric = "missing_metric"
	KindCanceled      = "canceled"
	KindUnknown       = "unknown"
)

// Kind names the failure class of a run error.
func Kind(err error) string {
	var (
		launchErr  *browser.LaunchError
		connErr    *browser.ConnectionError
		missingErr *MissingMetricError
		auditErr   *AuditError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &launchErr):
		return KindLaunch
	case errors.As(err, &connErr):
		return KindConnection
	case errors.As(err, &missingErr):
		return KindMissingMetric
	case errors.As(err, &auditErr):
		return KindAudit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}
