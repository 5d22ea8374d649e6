package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fanout/internal/cli"
)

// HeaderModel renders the top bar: title, policy, run number and elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	policy    string
	run       uint64
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version, policy string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		policy:    policy,
		run:       1,
	}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

// Reset restarts the elapsed timer for run number run.
func (h *HeaderModel) Reset(run uint64) {
	h.startTime = time.Now()
	h.endTime = time.Time{}
	h.run = run
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the time since the run started, frozen once done.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "Fan-out Monitor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	sep := labelStyle.Render(" | ")
	row := titleStyle.Render(titleText) + sep +
		valueStyle.Render(h.policy) + sep +
		labelStyle.Render(fmt.Sprintf("run #%d", h.run)) + sep +
		fmt.Sprintf("Elapsed: %s", cli.FormatExecutionDuration(h.Elapsed()))

	if gap := h.width - 2 - lipgloss.Width(row); gap > 0 {
		row += spaces(gap)
	}
	return headerStyle.Render(row)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
