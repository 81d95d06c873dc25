package rslimiter

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceUsage represents current system resource usage
type ResourceUsage struct {
	SystemMemUsedMB      int64   // System memory used (MB)
	SystemMemTotalMB     int64   // Total system memory (MB)
	SystemMemUsedPercent float64 // System memory used percentage
	CPUUsagePercent      float64 // CPU usage percentage over the sample interval
	Goroutines           int     // Number of goroutines
}

// Sampler measures system usage over interval.
type Sampler func(ctx context.Context, interval time.Duration) (ResourceUsage, error)

// SampleSystemUsage measures CPU over interval and reads system memory.
func SampleSystemUsage(ctx context.Context, interval time.Duration) (ResourceUsage, error) {
	usage := ResourceUsage{Goroutines: runtime.NumGoroutine()}

	vmStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return usage, fmt.Errorf("failed to get system memory stats: %w", err)
	}
	usage.SystemMemUsedMB = int64(vmStat.Used / 1024 / 1024)
	usage.SystemMemTotalMB = int64(vmStat.Total / 1024 / 1024)
	usage.SystemMemUsedPercent = vmStat.UsedPercent

	cpuPercents, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return usage, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	if len(cpuPercents) == 0 {
		return usage, fmt.Errorf("no CPU usage data available")
	}
	usage.CPUUsagePercent = cpuPercents[0]

	return usage, nil
}
