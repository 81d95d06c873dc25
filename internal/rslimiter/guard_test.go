package rslimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func scriptedSampler(usages ...ResourceUsage) (Sampler, *int) {
	calls := 0
	return func(ctx context.Context, interval time.Duration) (ResourceUsage, error) {
		u := usages[min(calls, len(usages)-1)]
		calls++
		return u, nil
	}, &calls
}

func enabledConfig() config.ResourceGuardConfig {
	cfg := config.NewDefaultResourceGuardConfig()
	cfg.Enabled = true
	cfg.SampleIntervalMs = 1
	return cfg
}

func TestGuard_Disabled(t *testing.T) {
	sampler, calls := scriptedSampler(ResourceUsage{CPUUsagePercent: 99})
	g := NewGuardWithSampler(config.NewDefaultResourceGuardConfig(), zerolog.Nop(), sampler)

	assert.False(t, g.Enabled())
	assert.Equal(t, ResourceUsage{}, g.WaitForQuiet(context.Background()))
	assert.Equal(t, 0, *calls)
}

func TestGuard_WaitsUntilQuiet(t *testing.T) {
	sampler, calls := scriptedSampler(
		ResourceUsage{CPUUsagePercent: 95, SystemMemUsedPercent: 40},
		ResourceUsage{CPUUsagePercent: 70, SystemMemUsedPercent: 40},
		ResourceUsage{CPUUsagePercent: 10, SystemMemUsedPercent: 40},
	)
	g := NewGuardWithSampler(enabledConfig(), zerolog.Nop(), sampler)

	usage := g.WaitForQuiet(context.Background())
	assert.Equal(t, float64(10), usage.CPUUsagePercent)
	assert.Equal(t, 3, *calls)
}

func TestGuard_GivesUpAfterMaxWait(t *testing.T) {
	cfg := enabledConfig()
	cfg.MaxWaitSecs = 0
	sampler, calls := scriptedSampler(ResourceUsage{CPUUsagePercent: 20, SystemMemUsedPercent: 97})
	g := NewGuardWithSampler(cfg, zerolog.Nop(), sampler)

	usage := g.WaitForQuiet(context.Background())
	assert.Equal(t, float64(97), usage.SystemMemUsedPercent)
	assert.Equal(t, 1, *calls)
}

func TestGuard_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sampler, calls := scriptedSampler(ResourceUsage{CPUUsagePercent: 99})
	g := NewGuardWithSampler(enabledConfig(), zerolog.Nop(), sampler)

	g.WaitForQuiet(ctx)
	assert.Equal(t, 1, *calls)
}

func TestGuard_SamplerError(t *testing.T) {
	g := NewGuardWithSampler(enabledConfig(), zerolog.Nop(), func(ctx context.Context, interval time.Duration) (ResourceUsage, error) {
		return ResourceUsage{}, errors.New("no /proc")
	})
	assert.Equal(t, ResourceUsage{}, g.WaitForQuiet(context.Background()))
}
