package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/sysmon"
)

// Run is the public entry point for the dashboard mode. It runs req inside a
// full-screen bubbletea program and returns the exit code of the last
// completed run, or ExitErrorCanceled when the user quit mid-run.
func Run(ctx context.Context, req orchestration.Request, opts []orchestration.Option, maxLatency time.Duration, version string) int {
	initStyles()

	model := NewModel(ctx, req, opts, maxLatency, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.ExitCode()
	}
	return apperrors.ExitSuccess
}

// startRunCmd returns a tea.Cmd that runs one aggregation and reports its
// settle events and result to the program behind ref.
func startRunCmd(ref *programRef, ctx context.Context, req orchestration.Request, opts []orchestration.Option, gen uint64) tea.Cmd {
	return func() tea.Msg {
		all := make([]orchestration.Option, 0, len(opts)+2)
		all = append(all, opts...)
		all = append(all,
			orchestration.WithProgressReporter(&TUIProgressReporter{ref: ref, generation: gen}),
			orchestration.WithProgressOutput(io.Discard),
		)
		agg, err := orchestration.New(all...).Run(ctx, req)
		return RunCompleteMsg{Aggregate: agg, Err: err, Generation: gen}
	}
}

// watchContextCmd reports the end of ctx.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Generation: gen}
	}
}

// tickCmd returns a command that sends a TickMsg after tickInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemStatsCmd reads runtime memory stats of this process.
func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return MemStatsMsg(metrics.NewMemoryCollector().Snapshot())
	}
}

// sampleSysStatsCmd reads system-wide CPU and memory usage.
func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(sysmon.Sample())
	}
}
