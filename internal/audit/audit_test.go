package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/browser"
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/go-rod/rod"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct{ port int }

func (s fakeSession) Browser() *rod.Browser { return nil }
func (s fakeSession) ControlURL() string    { return "ws://127.0.0.1/devtools/browser/fake" }
func (s fakeSession) Port() int             { return s.port }

type fakeSessions struct {
	err      error
	opened   int
	released int
}

func (f *fakeSessions) WithSession(ctx context.Context, fn func(browser.Session) error) error {
	if f.err != nil {
		return f.err
	}
	f.opened++
	defer func() { f.released++ }()
	return fn(fakeSession{port: 9222})
}

type fakeAuditor struct {
	report *Report
	err    error
	opts   []Options
}

func (f *fakeAuditor) Audit(ctx context.Context, s browser.Session, url string, opts Options, settings Settings) (*Report, error) {
	f.opts = append(f.opts, opts)
	return f.report, f.err
}

func fullReport() *Report {
	return &Report{
		FetchTime: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Audits: map[string]Entry{
			MetricFirstContentfulPaint:   {DisplayValue: "1.2 s"},
			MetricLargestContentfulPaint: {DisplayValue: "2.5 s"},
			MetricSpeedIndex:             {DisplayValue: "3.1 s"},
			MetricMaxPotentialFID:        {DisplayValue: "120 ms"},
			MetricCumulativeLayoutShift:  {DisplayValue: "0.053"},
			MetricTotalBlockingTime:      {DisplayValue: "1,200 ms"},
			MetricInteractive:            {DisplayValue: "6.4 s"},
		},
	}
}

func TestDefaults(t *testing.T) {
	settings := DefaultSettings()
	assert.Equal(t, []string{"performance"}, settings.OnlyCategories)
	assert.Equal(t, 15*time.Second, settings.MaxWaitForFCP)
	assert.Equal(t, 35*time.Second, settings.MaxWaitForLoad)

	opts := DefaultOptions()
	assert.Equal(t, "mobile", opts.FormFactor)
	assert.Equal(t, 412, opts.Screen.Width)
	assert.Equal(t, 823, opts.Screen.Height)
	assert.True(t, opts.Screen.Mobile)
	assert.Equal(t, float64(150), opts.Throttling.RTTMs)
	assert.Equal(t, float64(4), opts.Throttling.CPUSlowdown)
	assert.Empty(t, opts.BlockedURLPatterns)
	assert.Equal(t, "json", opts.Output)
}

func TestWithBlockedPatterns_DoesNotMutate(t *testing.T) {
	base := DefaultOptions()
	patterns := []string{"*ads*"}

	blocked := base.WithBlockedPatterns(patterns)
	patterns[0] = "*changed*"

	assert.Empty(t, base.BlockedURLPatterns)
	assert.Equal(t, []string{"*ads*"}, blocked.BlockedURLPatterns)
	assert.Nil(t, blocked.WithBlockedPatterns(nil).BlockedURLPatterns)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.2 s", FormatSeconds(1234))
	assert.Equal(t, "0.8 s", FormatSeconds(760))
	assert.Equal(t, "12.0 s", FormatSeconds(12004))
	assert.Equal(t, "1,234.6 s", FormatSeconds(1234567))

	assert.Equal(t, "120 ms", FormatMilliseconds(123))
	assert.Equal(t, "1,200 ms", FormatMilliseconds(1204))
	assert.Equal(t, "0 ms", FormatMilliseconds(0))

	assert.Equal(t, "0.053", FormatUnitless(0.0534))
	assert.Equal(t, "0.1", FormatUnitless(0.1))
	assert.Equal(t, "0", FormatUnitless(0))
}

func TestParseDisplayValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		unit string
		ok   bool
	}{
		{"1.2 s", 1200, UnitSeconds, true},
		{"1,200 ms", 1200, UnitMilliseconds, true},
		{"0.053", 0.053, UnitNone, true},
		{"n/a", 0, UnitNone, false},
	}
	for _, tt := range tests {
		got, unit, ok := ParseDisplayValue(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.unit, unit, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestCumulativeLayoutShift(t *testing.T) {
	shifts := []layoutShift{{3200, 0.01}, {100, 0.1}, {500, 0.05}, {3000, 0.2}}
	assert.InDelta(t, 0.21, cumulativeLayoutShift(shifts), 1e-9)
	assert.Equal(t, float64(0), cumulativeLayoutShift(nil))

	// A session is capped at five seconds even without a one second gap.
	var steady []layoutShift
	for ts := 0.0; ts < 8000; ts += 500 {
		steady = append(steady, layoutShift{ts, 0.01})
	}
	assert.InDelta(t, 0.10, cumulativeLayoutShift(steady), 1e-9)
}

func TestInteractivityMetrics(t *testing.T) {
	tasks := []longTask{{2000, 200}, {1200, 100}, {8000, 100}, {900, 200}}

	tti := timeToInteractive(1000, 1500, tasks)
	assert.Equal(t, float64(2200), tti)

	// 50 (clipped 900-1100) + 50 + 150; the task after TTI is excluded.
	assert.Equal(t, float64(250), totalBlockingTime(1000, tti, tasks))

	assert.Equal(t, float64(200), maxPotentialFID(1000, tasks))
	assert.Equal(t, float64(minPotentialFIDMs), maxPotentialFID(1000, nil))

	assert.Equal(t, float64(3000), timeToInteractive(1000, 3000, nil))
}

func TestSpeedIndex(t *testing.T) {
	assert.Equal(t, float64(1500), speedIndex(1000, []lcpCandidate{{2000, 100}, {1000, 50}}))
	assert.Equal(t, float64(1000), speedIndex(1000, nil))
	assert.Equal(t, float64(0), speedIndex(0, nil))
}

func TestParseTimingsAndAudits(t *testing.T) {
	raw := `{"finalUrl":"https://example.com/","fcp":1234,"dcl":900,"load":2500,
		"lcp":[[1234,500],[2480,2000]],"shifts":[[100,0.05],[400,0.003]],"longTasks":[[1500,120]]}`

	timings, err := parseTimings(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", timings.FinalURL)
	assert.Len(t, timings.LCP, 2)

	entries, err := timings.audits()
	require.NoError(t, err)
	assert.Equal(t, "1.2 s", entries[MetricFirstContentfulPaint].DisplayValue)
	assert.Equal(t, "2.5 s", entries[MetricLargestContentfulPaint].DisplayValue)
	assert.Equal(t, "0.053", entries[MetricCumulativeLayoutShift].DisplayValue)
	assert.Equal(t, "70 ms", entries[MetricTotalBlockingTime].DisplayValue)
	assert.Equal(t, "120 ms", entries[MetricMaxPotentialFID].DisplayValue)
	assert.Equal(t, "1.6 s", entries[MetricInteractive].DisplayValue)

	_, err = parseTimings("not json")
	assert.Error(t, err)

	_, err = pageTimings{}.audits()
	assert.Error(t, err)

	entries, err = pageTimings{FCP: 800}.audits()
	require.NoError(t, err)
	_, ok := entries[MetricLargestContentfulPaint]
	assert.False(t, ok)
}

func TestReportResult_MissingMetric(t *testing.T) {
	report := fullReport()
	report.Audits[MetricSpeedIndex] = Entry{DisplayValue: "  "}

	_, err := report.Result("https://example.com", "")
	var missing *MissingMetricError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, MetricSpeedIndex, missing.Metric)

	delete(report.Audits, MetricSpeedIndex)
	_, err = report.Result("https://example.com", "")
	assert.True(t, errors.As(err, &missing))

	var nilReport *Report
	_, err = nilReport.Display(MetricInteractive)
	assert.True(t, errors.As(err, &missing))
}

func TestRunner_Run(t *testing.T) {
	sessions := &fakeSessions{}
	auditor := &fakeAuditor{report: fullReport()}
	runner := NewRunner(sessions, auditor, zerolog.Nop())

	opts := DefaultOptions().WithBlockedPatterns([]string{"*ads*"})
	result, err := runner.Run(context.Background(), "https://example.com/page", opts, DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/page", result.URL)
	assert.Equal(t, "*ads*", result.Pattern)
	assert.Equal(t, "1,200 ms", result.TotalBlockingTime)
	assert.Equal(t, "6.4 s", result.TimeToInteractive)
	assert.Equal(t, 1, sessions.opened)
	assert.Equal(t, 1, sessions.released)
	assert.Equal(t, []string{"*ads*"}, auditor.opts[0].BlockedURLPatterns)
}

func TestRunner_Errors(t *testing.T) {
	launchErr := &browser.LaunchError{Err: errors.New("no chrome")}

	tests := []struct {
		name     string
		sessions *fakeSessions
		auditor  *fakeAuditor
		kind     string
	}{
		{
			name:     "launch failure passes through",
			sessions: &fakeSessions{err: launchErr},
			auditor:  &fakeAuditor{},
			kind:     KindLaunch,
		},
		{
			name:     "connection failure passes through",
			sessions: &fakeSessions{err: &browser.ConnectionError{ControlURL: "ws://x", Err: errors.New("refused")}},
			auditor:  &fakeAuditor{},
			kind:     KindConnection,
		},
		{
			name:     "untyped auditor error becomes audit error",
			sessions: &fakeSessions{},
			auditor:  &fakeAuditor{err: errors.New("tab crashed")},
			kind:     KindAudit,
		},
		{
			name:     "missing metric",
			sessions: &fakeSessions{},
			auditor:  &fakeAuditor{report: &Report{Audits: map[string]Entry{}}},
			kind:     KindMissingMetric,
		},
		{
			name:     "canceled",
			sessions: &fakeSessions{},
			auditor:  &fakeAuditor{err: context.Canceled},
			kind:     KindCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(tt.sessions, tt.auditor, zerolog.Nop())
			_, err := runner.Run(context.Background(), "https://example.com", DefaultOptions(), DefaultSettings())
			require.Error(t, err)
			assert.Equal(t, tt.kind, Kind(err))
			assert.Equal(t, tt.sessions.opened, tt.sessions.released)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, KindUnknown, Kind(errors.New("other")))
	assert.Equal(t, KindAudit, Kind(&AuditError{URL: "u", Err: context.DeadlineExceeded}))
}

func TestNewAuditor(t *testing.T) {
	cfg := config.NewDefaultAuditConfig()

	a, err := NewAuditor(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &CDPAuditor{}, a)

	cfg.Backend = config.BackendLighthouse
	a, err = NewAuditor(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LighthouseAuditor{}, a)

	cfg.Backend = "webpagetest"
	_, err = NewAuditor(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestRequestTally(t *testing.T) {
	tally := newRequestTally([]string{"*doubleclick.net*"})
	tally.observe("https://example.com/")
	tally.observe("https://securepubads.g.doubleclick.net/tag/js/gpt.js")
	tally.observe("https://example.com/app.js")

	total, blocked := tally.counts()
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, blocked)
	assert.False(t, tally.blockedNothing())

	baseline := newRequestTally(nil)
	baseline.observe("https://example.com/")
	assert.False(t, baseline.blockedNothing())

	miss := newRequestTally([]string{"*hotjar.com*"})
	miss.observe("https://example.com/")
	assert.True(t, miss.blockedNothing())
}

func TestCDPAuditor_LogRequestsWarnsWhenNothingBlocked(t *testing.T) {
	var buf bytes.Buffer
	a := NewCDPAuditor(zerolog.New(&buf))

	miss := newRequestTally([]string{"*hotjar.com*"})
	miss.observe("https://example.com/")
	a.logRequests("https://example.com/", miss)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "*hotjar.com*")

	buf.Reset()
	hit := newRequestTally([]string{"*example.com/ads*"})
	hit.observe("https://example.com/ads/banner.js")
	a.logRequests("https://example.com/", hit)
	assert.NotContains(t, buf.String(), `"level":"warn"`)
}
