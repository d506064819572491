package utils

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

var (
	SystemCPUUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "system_cpu_usage_percent",
			Help: "Current CPU usage as a percentage",
		},
	)

	SystemMemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "system_memory_usage_percent",
			Help: "Current memory usage as a percentage",
		},
	)
)

// StartSystemMetrics samples CPU and memory usage into Prometheus gauges
// until ctx is cancelled.
func StartSystemMetrics(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
					SystemCPUUsage.Set(pct[0])
				} else if err != nil {
					slog.Debug("cpu sample failed", "error", err)
				}
				if vm, err := mem.VirtualMemory(); err == nil {
					SystemMemoryUsage.Set(vm.UsedPercent)
				}
			}
		}
	}()
}
