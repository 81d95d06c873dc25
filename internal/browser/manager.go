package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// process is a launched browser as seen by release.
type process interface {
	PID() int
	Kill()
	Cleanup()
}

// Manager launches one browser process per session and tears it down when the session ends
type Manager struct {
	config config.BrowserConfig
	logger zerolog.Logger

	launch       func(ctx context.Context) (process, string, error)
	connect      func(ctx context.Context, controlURL string) (*rod.Browser, error)
	closeBrowser func(b *rod.Browser) error
}

// NewManager creates a new browser manager
func NewManager(cfg config.BrowserConfig, logger zerolog.Logger) *Manager {
	m := &Manager{
		config:       cfg,
		logger:       logger.With().Str("component", "BrowserManager").Logger(),
		connect:      connectBrowser,
		closeBrowser: (*rod.Browser).Close,
	}
	m.launch = m.launchBrowser
	return m
}

// WithSession launches the browser, connects a control client, runs fn and
// always releases both: the client is closed first, then the process is
// killed and its temporary profile removed. The launch timeout bounds only
// process startup.
func (m *Manager) WithSession(ctx context.Context, fn func(Session) error) (err error) {
	launchCtx, cancel := context.WithTimeout(ctx, m.launchTimeout())
	defer cancel()

	proc, controlURL, err := m.launch(launchCtx)
	if err != nil {
		m.release(proc, nil)
		return &LaunchError{Bin: m.config.ChromePath, Err: err}
	}
	m.logger.Debug().Str("control_url", controlURL).Int("pid", proc.PID()).Msg("Browser launched")

	port, err := debuggingPort(controlURL)
	if err != nil {
		m.release(proc, nil)
		return &ConnectionError{ControlURL: controlURL, Err: fmt.Errorf("invalid debugging port: %w", err)}
	}

	// The client event loop lives as long as ctx, so it must not inherit the launch deadline.
	b, err := m.connect(ctx, controlURL)
	if err != nil {
		m.release(proc, nil)
		return &ConnectionError{ControlURL: controlURL, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			m.release(proc, b)
			panic(r)
		}
		m.release(proc, b)
	}()

	return fn(&session{browser: b, controlURL: controlURL, port: port})
}

// FetchHTML loads pageURL in a fresh session and returns the rendered HTML.
func (m *Manager) FetchHTML(ctx context.Context, pageURL string, timeout time.Duration) (string, error) {
	var html string
	err := m.WithSession(ctx, func(s Session) error {
		page, err := s.Browser().Page(proto.TargetCreateTarget{})
		if err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
		defer page.Close()

		p := page.Timeout(timeout)
		defer p.CancelTimeout()

		if err := p.Navigate(pageURL); err != nil {
			return fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
		}
		if err := p.WaitLoad(); err != nil {
			return fmt.Errorf("page load timeout for %s: %w", pageURL, err)
		}

		html, err = p.HTML()
		if err != nil {
			return fmt.Errorf("failed to get HTML for %s: %w", pageURL, err)
		}
		return nil
	})
	return html, err
}

// launchBrowser starts the browser process and waits for its control URL.
func (m *Manager) launchBrowser(ctx context.Context) (process, string, error) {
	l := m.newLauncher().Context(ctx)
	controlURL, err := l.Launch()
	return l, controlURL, err
}

func connectBrowser(ctx context.Context, controlURL string) (*rod.Browser, error) {
	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, err
	}
	return b, nil
}

// release closes the client (if any) and stops the process.
func (m *Manager) release(proc process, b *rod.Browser) {
	if b != nil {
		if err := m.closeBrowser(b); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Debug().Err(err).Msg("Browser close returned an error")
		}
	}

	// PID 0 means the process never started, so there is nothing to wait for.
	if proc == nil || proc.PID() == 0 {
		return
	}
	proc.Kill()

	// Cleanup removes the user data dir, which must survive when the user supplied it.
	if m.config.UserDataDir == "" {
		proc.Cleanup()
	}
	m.logger.Debug().Int("pid", proc.PID()).Msg("Browser released")
}

// newLauncher builds the launcher with the flag set used for every run
func (m *Manager) newLauncher() *launcher.Launcher {
	l := launcher.New().Headless(m.config.Headless)

	if m.config.ChromePath != "" {
		l = l.Bin(m.config.ChromePath)
	}

	if m.config.UserDataDir != "" {
		l = l.UserDataDir(m.config.UserDataDir)
	}

	l = l.
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	for _, raw := range m.config.ExtraFlags {
		name, value := parseFlag(raw)
		if name == "" {
			continue
		}
		if value == "" {
			l = l.Set(name)
		} else {
			l = l.Set(name, value)
		}
	}

	return l
}

func (m *Manager) launchTimeout() time.Duration {
	if m.config.LaunchTimeoutSecs <= 0 {
		return time.Duration(config.DefaultBrowserLaunchTimeoutSecs) * time.Second
	}
	return time.Duration(m.config.LaunchTimeoutSecs) * time.Second
}

// parseFlag splits "--name=value" into a launcher flag and its value.
func parseFlag(raw string) (flags.Flag, string) {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "-")
	name, value, _ := strings.Cut(raw, "=")
	return flags.Flag(name), value
}
