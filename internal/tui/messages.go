package tui

import (
	"time"

	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/sysmon"
)

// Every run-scoped message carries the generation of the run that produced
// it. The model drops messages from earlier generations after a rerun.

// SettleMsg reports that one call of the current batch settled.
type SettleMsg struct {
	Event      orchestration.SettleEvent
	Generation uint64
}

// RunCompleteMsg carries the result of a finished aggregation.
type RunCompleteMsg struct {
	Aggregate  orchestration.Aggregate
	Err        error
	Generation uint64
}

// ContextCancelledMsg is sent when the run context ends before the user quits.
type ContextCancelledMsg struct {
	Generation uint64
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// SysStatsMsg carries a system-wide CPU and memory sample.
type SysStatsMsg sysmon.Stats

// MemStatsMsg carries a runtime memory sample of this process.
type MemStatsMsg metrics.MemorySnapshot
