package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/browser"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// observerScript runs before any page script and records paint, layout
// shift and long task entries on window.__isolatedAudit.
const observerScript = `(() => {
  if (window.__isolatedAudit) return;
  const state = { fcp: 0, lcp: [], shifts: [], longTasks: [] };
  Object.defineProperty(window, '__isolatedAudit', { value: state });
  const observe = (type, fn) => {
    try {
      new PerformanceObserver((list) => list.getEntries().forEach(fn)).observe({ type, buffered: true });
    } catch (e) {}
  };
  observe('paint', (e) => { if (e.name === 'first-contentful-paint') state.fcp = e.startTime; });
  observe('largest-contentful-paint', (e) => { state.lcp.push([e.renderTime || e.loadTime || e.startTime, e.size]); });
  observe('layout-shift', (e) => { if (!e.hadRecentInput) state.shifts.push([e.startTime, e.value]); });
  observe('longtask', (e) => { state.longTasks.push([e.startTime, e.duration]); });
})();`

const fcpReadyScript = `() => !!(window.__isolatedAudit && window.__isolatedAudit.fcp > 0)`

const collectScript = `() => {
  const s = window.__isolatedAudit || {};
  const nav = performance.getEntriesByType('navigation')[0] || {};
  return JSON.stringify({
    finalUrl: location.href,
    fcp: s.fcp || 0,
    dcl: nav.domContentLoadedEventEnd || 0,
    load: nav.loadEventEnd || 0,
    lcp: s.lcp || [],
    shifts: s.shifts || [],
    longTasks: s.longTasks || [],
  });
}`

// CDPAuditor measures a page load directly over the DevTools protocol.
type CDPAuditor struct {
	logger zerolog.Logger
}

// NewCDPAuditor creates the default auditor backend.
func NewCDPAuditor(logger zerolog.Logger) *CDPAuditor {
	return &CDPAuditor{logger: logger.With().Str("component", "CDPAuditor").Logger()}
}

// Audit loads url once in a fresh tab with opts applied and derives the metric report.
func (a *CDPAuditor) Audit(ctx context.Context, s browser.Session, url string, opts Options, settings Settings) (*Report, error) {
	page, err := s.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, &AuditError{URL: url, Err: fmt.Errorf("failed to create page: %w", err)}
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	if err := a.prepare(page, opts); err != nil {
		return nil, &AuditError{URL: url, Err: err}
	}

	tally := newRequestTally(opts.BlockedURLPatterns)
	stopWatching := watchRequests(page, tally)

	fetchTime := time.Now()

	err = a.load(ctx, page, url, settings)
	stopWatching()
	if err != nil {
		return nil, &AuditError{URL: url, Err: err}
	}
	a.logRequests(url, tally)

	res, err := page.Eval(collectScript)
	if err != nil {
		return nil, &AuditError{URL: url, Err: fmt.Errorf("failed to collect timings: %w", err)}
	}

	timings, err := parseTimings(res.Value.Str())
	if err != nil {
		return nil, &AuditError{URL: url, Err: err}
	}

	entries, err := timings.audits()
	if err != nil {
		return nil, &AuditError{URL: url, Err: err}
	}

	return &Report{
		RequestedURL: url,
		FinalURL:     timings.FinalURL,
		FetchTime:    fetchTime,
		Audits:       entries,
	}, nil
}

// prepare applies blocking, cache, emulation and throttling before navigation.
func (a *CDPAuditor) prepare(page *rod.Page, opts Options) error {
	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return fmt.Errorf("failed to enable network domain: %w", err)
	}
	if err := (proto.NetworkSetCacheDisabled{CacheDisabled: true}).Call(page); err != nil {
		return fmt.Errorf("failed to disable cache: %w", err)
	}

	blocked := opts.BlockedURLPatterns
	if blocked == nil {
		blocked = []string{}
	}
	if err := (proto.NetworkSetBlockedURLs{Urls: blocked}).Call(page); err != nil {
		return fmt.Errorf("failed to set blocked urls: %w", err)
	}

	if !opts.Screen.Disabled {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Screen.Width,
			Height:            opts.Screen.Height,
			DeviceScaleFactor: opts.Screen.DeviceScaleFactor,
			Mobile:            opts.Screen.Mobile,
		})
		if err != nil {
			return fmt.Errorf("failed to emulate screen: %w", err)
		}
	}

	if !opts.Throttling.Disabled {
		err := proto.NetworkEmulateNetworkConditions{
			Latency:            opts.Throttling.RTTMs,
			DownloadThroughput: kbpsToBytesPerSecond(opts.Throttling.DownloadKbps),
			UploadThroughput:   kbpsToBytesPerSecond(opts.Throttling.UploadKbps),
		}.Call(page)
		if err != nil {
			return fmt.Errorf("failed to throttle network: %w", err)
		}

		if opts.Throttling.CPUSlowdown > 1 {
			if err := (proto.EmulationSetCPUThrottlingRate{Rate: opts.Throttling.CPUSlowdown}).Call(page); err != nil {
				return fmt.Errorf("failed to throttle cpu: %w", err)
			}
		}
	}

	if _, err := page.EvalOnNewDocument(observerScript); err != nil {
		return fmt.Errorf("failed to install performance observer: %w", err)
	}
	return nil
}

// load navigates and waits for FCP, then load, then the settle window.
// A load timeout only warns, like a slow page in a real audit.
func (a *CDPAuditor) load(ctx context.Context, page *rod.Page, url string, settings Settings) error {
	nav := page.Timeout(settings.MaxWaitForLoad)
	defer nav.CancelTimeout()

	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}

	fcpPage := page.Timeout(settings.MaxWaitForFCP)
	err := fcpPage.Wait(rod.Eval(fcpReadyScript))
	fcpPage.CancelTimeout()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("no first contentful paint within %s", settings.MaxWaitForFCP)
		}
		return fmt.Errorf("failed waiting for first contentful paint: %w", err)
	}

	if err := nav.WaitLoad(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn().Err(err).Str("url", url).Dur("max_wait_for_load", settings.MaxWaitForLoad).Msg("Page did not finish loading, collecting metrics anyway")
	}

	select {
	case <-time.After(settings.Settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// logRequests records how many requests the blocked patterns matched and
// warns when they matched none.
func (a *CDPAuditor) logRequests(url string, tally *requestTally) {
	total, blocked := tally.counts()
	if tally.blockedNothing() {
		a.logger.Warn().Str("url", url).Strs("patterns", tally.patterns).Int("requests", total).Msg("Blocked patterns matched no request; run is equivalent to the baseline")
		return
	}
	a.logger.Debug().Str("url", url).Int("requests", total).Int("blocked", blocked).Msg("Request accounting")
}

func kbpsToBytesPerSecond(kbps float64) float64 {
	return kbps * 1024 / 8
}
