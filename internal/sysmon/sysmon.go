// Package sysmon samples system-wide CPU and memory usage for the dashboard
// and the post-run diagnostics log.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/agbru/fanout/internal/logging"
)

// Stats is one system-wide usage reading.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample is SampleContext with a background context.
func Sample() Stats {
	return SampleContext(context.Background())
}

// SampleContext reads CPU and memory usage. CPU usage covers the time since
// the previous call in this process. A reading that fails is left at zero.
func SampleContext(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// Fields renders the reading as structured log fields.
func (s Stats) Fields() []logging.Field {
	return []logging.Field{
		logging.Float64("system_cpu_percent", s.CPUPercent),
		logging.Float64("system_mem_percent", s.MemPercent),
	}
}
