package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/browser"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// commandRunner runs an external command and returns its stdout.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// LighthouseAuditor runs the Lighthouse CLI against the session's debugging port.
type LighthouseAuditor struct {
	bin    string
	run    commandRunner
	logger zerolog.Logger
}

// NewLighthouseAuditor creates an auditor that execs bin (a path or a name on PATH).
func NewLighthouseAuditor(bin string, logger zerolog.Logger) *LighthouseAuditor {
	return &LighthouseAuditor{
		bin:    bin,
		run:    execCommand,
		logger: logger.With().Str("component", "LighthouseAuditor").Logger(),
	}
}

// Audit runs one Lighthouse pass and parses its JSON report.
func (a *LighthouseAuditor) Audit(ctx context.Context, s browser.Session, url string, opts Options, settings Settings) (*Report, error) {
	args := lighthouseArgs(url, s.Port(), opts, settings)
	a.logger.Debug().Str("bin", a.bin).Strs("args", args).Msg("Running lighthouse")

	out, err := a.run(ctx, a.bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &AuditError{URL: url, Err: err}
	}

	report, err := ParseLighthouseReport(out)
	if err != nil {
		return nil, &AuditError{URL: url, Err: err}
	}
	return report, nil
}

// lighthouseArgs builds the CLI arguments for one audit.
func lighthouseArgs(url string, port int, opts Options, settings Settings) []string {
	args := []string{
		url,
		"--port=" + strconv.Itoa(port),
		"--output=" + outputFormat(opts),
		"--output-path=stdout",
		"--quiet",
		"--max-wait-for-load=" + strconv.FormatInt(settings.MaxWaitForLoad.Milliseconds(), 10),
		"--max-wait-for-fcp=" + strconv.FormatInt(settings.MaxWaitForFCP.Milliseconds(), 10),
	}

	if len(settings.OnlyCategories) > 0 {
		args = append(args, "--only-categories="+strings.Join(settings.OnlyCategories, ","))
	}
	if opts.FormFactor != "" {
		args = append(args, "--form-factor="+opts.FormFactor)
	}

	if opts.Screen.Disabled {
		args = append(args, "--screenEmulation.disabled")
	} else {
		args = append(args,
			"--screenEmulation.mobile="+strconv.FormatBool(opts.Screen.Mobile),
			"--screenEmulation.width="+strconv.Itoa(opts.Screen.Width),
			"--screenEmulation.height="+strconv.Itoa(opts.Screen.Height),
			"--screenEmulation.deviceScaleFactor="+formatFloat(opts.Screen.DeviceScaleFactor),
		)
	}

	if opts.Throttling.Disabled {
		args = append(args, "--throttling-method=provided")
	} else {
		args = append(args,
			"--throttling-method=simulate",
			"--throttling.rttMs="+formatFloat(opts.Throttling.RTTMs),
			"--throttling.throughputKbps="+formatFloat(opts.Throttling.DownloadKbps),
			"--throttling.uploadThroughputKbps="+formatFloat(opts.Throttling.UploadKbps),
			"--throttling.cpuSlowdownMultiplier="+formatFloat(opts.Throttling.CPUSlowdown),
		)
	}

	for _, pattern := range opts.BlockedURLPatterns {
		args = append(args, "--blocked-url-patterns="+pattern)
	}
	return args
}

// ParseLighthouseReport reads the audits of a Lighthouse JSON report.
func ParseLighthouseReport(data []byte) (*Report, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("lighthouse output is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	if msg := doc.Get("runtimeError.message"); msg.Exists() && msg.String() != "" {
		return nil, fmt.Errorf("lighthouse runtime error %s: %s", doc.Get("runtimeError.code").String(), msg.String())
	}

	audits := doc.Get("audits")
	if !audits.IsObject() {
		return nil, errors.New("lighthouse report has no audits")
	}

	report := &Report{
		RequestedURL: doc.Get("requestedUrl").String(),
		FinalURL:     firstNonEmpty(doc.Get("finalDisplayedUrl").String(), doc.Get("finalUrl").String()),
		Audits:       make(map[string]Entry),
	}
	if ts, err := time.Parse(time.RFC3339, doc.Get("fetchTime").String()); err == nil {
		report.FetchTime = ts
	}

	audits.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		report.Audits[id] = Entry{
			ID:           id,
			NumericValue: value.Get("numericValue").Float(),
			NumericUnit:  value.Get("numericUnit").String(),
			DisplayValue: value.Get("displayValue").String(),
		}
		return true
	})
	return report, nil
}

func outputFormat(opts Options) string {
	if opts.Output == "" {
		return "json"
	}
	return opts.Output
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, lastLine(msg))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
