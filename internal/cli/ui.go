package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/ui"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 100 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 20
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts `spinner.Spinner` to the `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// progressBar generates a string representing a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// FormatProgress renders one progress tally as the spinner suffix.
func FormatProgress(p orchestration.Progress) string {
	s := fmt.Sprintf(" Settled %d/%d %s %3.0f%%", p.Settled, p.Total, progressBar(p.Fraction(), ProgressBarWidth), p.Fraction()*100)
	if p.Failed > 0 {
		s += fmt.Sprintf(" %s(%d failed)%s", ui.ColorRed(), p.Failed, ui.ColorReset())
	}
	return s
}

// DisplayProgress shows a spinner with a settle counter until the event
// channel is closed, then prints a one-line summary. It drains the channel
// without output when total is not positive.
//
// Parameters:
//   - wg: The WaitGroup to signal on return.
//   - events: One event per settled call; closed by the orchestrator.
//   - total: The number of calls dispatched.
//   - out: The writer for progress output.
func DisplayProgress(wg *sync.WaitGroup, events <-chan orchestration.SettleEvent, total int, out io.Writer) {
	defer wg.Done()
	tracker := orchestration.NewSettleTracker(total)
	if tracker == nil {
		orchestration.DrainChannel(events)
		return
	}

	s := newSpinner(spinner.WithWriter(out), spinner.WithHiddenCursor(true))
	s.UpdateSuffix(FormatProgress(tracker.Snapshot()))
	s.Start()

	last := tracker.Snapshot()
	for ev := range events {
		last = tracker.Update(ev)
		s.UpdateSuffix(FormatProgress(last))
	}
	s.Stop()

	color := ui.ColorGreen()
	if last.Failed > 0 {
		color = ui.ColorYellow()
	}
	fmt.Fprintf(out, "%s%d/%d calls settled, %d failed%s\n", color, last.Settled, last.Total, last.Failed, ui.ColorReset())
}
