package rslimiter

import (
	"context"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/rs/zerolog"
)

// Guard holds a run back until the host is quiet enough to measure.
type Guard struct {
	config config.ResourceGuardConfig
	logger zerolog.Logger
	sample Sampler
}

// NewGuard creates a guard that samples the real system
func NewGuard(cfg config.ResourceGuardConfig, logger zerolog.Logger) *Guard {
	return NewGuardWithSampler(cfg, logger, SampleSystemUsage)
}

// NewGuardWithSampler creates a guard with a custom usage sampler
func NewGuardWithSampler(cfg config.ResourceGuardConfig, logger zerolog.Logger, sampler Sampler) *Guard {
	if cfg.SampleIntervalMs <= 0 {
		cfg.SampleIntervalMs = config.DefaultGuardSampleIntervalMs
	}
	return &Guard{
		config: cfg,
		logger: logger.With().Str("component", "ResourceGuard").Logger(),
		sample: sampler,
	}
}

// Enabled reports whether the guard samples at all.
func (g *Guard) Enabled() bool {
	return g != nil && g.config.Enabled
}

// WaitForQuiet samples usage until CPU and memory drop below their
// thresholds or max_wait_secs elapses, and returns the last sample. It
// never fails a run: sampling errors and timeouts are logged only.
func (g *Guard) WaitForQuiet(ctx context.Context) ResourceUsage {
	if !g.Enabled() {
		return ResourceUsage{}
	}

	start := time.Now()
	deadline := start.Add(time.Duration(g.config.MaxWaitSecs) * time.Second)
	interval := time.Duration(g.config.SampleIntervalMs) * time.Millisecond

	var usage ResourceUsage
	for samples := 1; ; samples++ {
		current, err := g.sample(ctx, interval)
		if err != nil {
			if ctx.Err() == nil {
				g.logger.Warn().Err(err).Msg("Failed to sample resource usage, continuing without waiting")
			}
			return usage
		}
		usage = current

		if g.isQuiet(usage) {
			g.logger.Debug().
				Float64("cpu_percent", usage.CPUUsagePercent).
				Float64("system_mem_percent", usage.SystemMemUsedPercent).
				Int("samples", samples).
				Dur("waited", time.Since(start)).
				Msg("Host is quiet")
			return usage
		}

		if ctx.Err() != nil || !time.Now().Before(deadline) {
			g.logger.Warn().
				Float64("cpu_percent", usage.CPUUsagePercent).
				Float64("cpu_threshold_percent", g.config.CPUThresholdPercent).
				Float64("system_mem_percent", usage.SystemMemUsedPercent).
				Float64("mem_threshold_percent", g.config.MemThresholdPercent).
				Dur("waited", time.Since(start)).
				Msg("Host still busy, running anyway")
			return usage
		}
	}
}

func (g *Guard) isQuiet(usage ResourceUsage) bool {
	return usage.CPUUsagePercent < g.config.CPUThresholdPercent &&
		usage.SystemMemUsedPercent < g.config.MemThresholdPercent
}
