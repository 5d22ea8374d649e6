package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fanout/internal/cli"
	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/sysmon"
)

// Layout and sampling constants for the dashboard.
const (
	tickInterval    = 500 * time.Millisecond
	historySize     = 40
	maxDetailWidth  = 48
	initializingMsg = "Initializing..."
)

type callState int

const (
	callPending callState = iota
	callSucceeded
	callFailed
)

// callRow is the dashboard view of one slot of the batch.
type callRow struct {
	workerID string
	input    string
	state    callState
	duration time.Duration
	detail   string
}

// ExecutionState holds the run-related fields of a dashboard session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	done       bool
	exitCode   int
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header  HeaderModel
	help    help.Model
	keymap  KeyMap
	rows    []callRow
	tracker *orchestration.SettleTracker
	tally   orchestration.Progress

	latency *RingBuffer
	cpu     *RingBuffer
	sys     sysmon.Stats
	mem     metrics.MemorySnapshot
	summary string

	ExecutionState
	width  int
	height int

	parentCtx  context.Context
	req        orchestration.Request
	opts       []orchestration.Option
	maxLatency time.Duration
	ref        *programRef
}

// NewModel creates the dashboard for req. opts configure the orchestrator of
// every run; the progress reporter is always replaced by the dashboard's.
// maxLatency scales the latency sparkline.
func NewModel(parentCtx context.Context, req orchestration.Request, opts []orchestration.Option, maxLatency time.Duration, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	m := Model{
		header:  NewHeaderModel(version, req.Policy.String()),
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		latency: NewRingBuffer(historySize),
		cpu:     NewRingBuffer(historySize),
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		parentCtx:  parentCtx,
		req:        req,
		opts:       opts,
		maxLatency: maxLatency,
		ref:        &programRef{},
	}
	m.resetRows()
	return m
}

// ExitCode returns the exit status of the last completed run.
func (m Model) ExitCode() int { return m.exitCode }

func (m *Model) resetRows() {
	m.rows = make([]callRow, len(m.req.Workers))
	for i, w := range m.req.Workers {
		m.rows[i] = callRow{workerID: w.ID()}
		if i < len(m.req.Inputs) {
			m.rows[i].input = m.req.Inputs[i]
		}
	}
	m.tracker = orchestration.NewSettleTracker(len(m.rows))
	m.tally = orchestration.Progress{Total: len(m.rows)}
	m.latency.Reset()
	m.summary = ""
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startRunCmd(m.ref, m.ctx, m.req, m.opts, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case SettleMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.applySettle(msg.Event)
		return m, nil

	case RunCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.applyResult(msg.Aggregate, msg.Err)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())

	case SysStatsMsg:
		m.sys = sysmon.Stats(msg)
		m.cpu.Push(m.sys.CPUPercent)
		return m, nil

	case MemStatsMsg:
		m.mem = metrics.MemorySnapshot(msg)
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		m.done = true
		m.header.SetDone()
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applySettle(ev orchestration.SettleEvent) {
	if ev.Index < 0 || ev.Index >= len(m.rows) || m.tracker == nil {
		return
	}
	row := &m.rows[ev.Index]
	if row.state != callPending {
		return
	}
	m.tally = m.tracker.Update(ev)
	row.duration = ev.Duration
	if ev.Err != nil {
		row.state = callFailed
		row.detail = ev.Err.Error()
	} else {
		row.state = callSucceeded
	}
	m.latency.Push(latencyPercent(ev.Duration, m.maxLatency))
}

func (m *Model) applyResult(agg orchestration.Aggregate, err error) {
	for _, out := range agg.Outcomes {
		if out.Index < 0 || out.Index >= len(m.rows) {
			continue
		}
		row := &m.rows[out.Index]
		row.duration = out.Duration
		if out.Succeeded() {
			row.state = callSucceeded
			row.detail = out.Value
		} else {
			row.state = callFailed
			row.detail = out.Err.Error()
		}
	}

	m.done = true
	m.header.SetDone()
	if err != nil {
		var buf bytes.Buffer
		m.exitCode = cli.CLIResultPresenter{}.HandleError(err, m.header.Elapsed(), &buf)
		m.summary = strings.TrimSpace(buf.String())
		return
	}
	m.exitCode = apperrors.ExitSuccess
	m.summary = cli.FormatQuietAggregate(agg)
	if m.summary == "" {
		m.summary = "(no values)"
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Rerun):
		if m.cancel != nil {
			m.cancel()
		}
		m.generation++
		ctx, cancel := context.WithCancel(m.parentCtx)
		m.ctx = ctx
		m.cancel = cancel

		m.header.Reset(m.generation + 1)
		m.resetRows()
		m.done = false
		m.exitCode = apperrors.ExitSuccess

		return m, tea.Batch(
			tickCmd(),
			startRunCmd(m.ref, m.ctx, m.req, m.opts, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)
	}
	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return initializingMsg
	}
	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}

	calls := panelStyle.Width(inner).Render(m.renderCalls())
	stats := panelStyle.Width(inner).Render(m.renderStats())
	sections := []string{m.header.View(), calls, stats}
	if m.done {
		sections = append(sections, panelStyle.Width(inner).Render(m.renderSummary()))
	}
	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderCalls() string {
	headers := []string{"#", "Worker", "Input", "Status", "Duration", "Result"}
	cells := make([][]string, len(m.rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for i, r := range m.rows {
		status, duration := "pending", "-"
		switch r.state {
		case callSucceeded:
			status, duration = "ok", cli.FormatExecutionDuration(r.duration)
		case callFailed:
			status, duration = "failed", cli.FormatExecutionDuration(r.duration)
		}
		cells[i] = []string{fmt.Sprintf("%d", i), r.workerID, r.input, status, duration, truncate(r.detail, maxDetailWidth)}
		for c, v := range cells[i] {
			widths[c] = max(widths[c], lipgloss.Width(v))
		}
	}

	var b strings.Builder
	for c, h := range headers {
		b.WriteString(columnStyle.Render(pad(h, widths[c])))
	}
	for i, row := range cells {
		b.WriteByte('\n')
		style := pendingStyle
		switch m.rows[i].state {
		case callSucceeded:
			style = successStyle
		case callFailed:
			style = failureStyle
		}
		for c, v := range row {
			if c == 3 {
				b.WriteString(style.Render(pad(v, widths[c])))
				continue
			}
			b.WriteString(pad(v, widths[c]))
		}
	}
	if len(cells) == 0 {
		b.WriteString("\n" + labelStyle.Render("(empty batch)"))
	}
	return b.String()
}

func (m Model) renderStats() string {
	lines := []string{
		strings.TrimSpace(cli.FormatProgress(m.tally)),
		labelStyle.Render("Latency ") + latencyStyle.Render(RenderSparkline(m.latency.Slice())),
		labelStyle.Render("CPU ") + valueStyle.Render(fmt.Sprintf("%5.1f%%", m.sys.CPUPercent)) + " " +
			cpuStyle.Render(RenderSparkline(m.cpu.Slice())),
		labelStyle.Render("MEM ") + valueStyle.Render(fmt.Sprintf("%5.1f%%", m.sys.MemPercent)) +
			labelStyle.Render("  heap ") + formatBytes(m.mem.HeapAlloc) +
			labelStyle.Render("  goroutines ") + fmt.Sprintf("%d", m.mem.Goroutines),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSummary() string {
	title := statusDone.Render("Aggregate")
	if m.exitCode != apperrors.ExitSuccess {
		title = statusFailed.Render("Failed")
	}
	return title + "\n" + m.summary
}

func (m Model) renderFooter() string {
	status := statusRunning.Render("RUNNING")
	switch {
	case m.done && m.exitCode != apperrors.ExitSuccess:
		status = statusFailed.Render("FAILED")
	case m.done:
		status = statusDone.Render("DONE")
	}
	return " " + status + "  " + m.help.View(m.keymap)
}

func pad(s string, width int) string {
	return s + spaces(width-lipgloss.Width(s)+2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
