package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter for CLI output.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and settle counter while calls run.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, events <-chan orchestration.SettleEvent, total int, out io.Writer) {
	DisplayProgress(wg, events, total, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter and
// orchestration.ErrorHandler for terminal output.
type CLIResultPresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

var outcomeHeaders = []string{"Slot", "Worker", "Input", "Duration", "Status", "Result"}

// PresentOutcomeTable displays one row per call in input order. Column
// widths are measured on the plain text so that styling never breaks the
// alignment.
func (CLIResultPresenter) PresentOutcomeTable(outcomes []orchestration.Outcome, out io.Writer) {
	styles := ui.GetTableStyles()
	rows := make([][]string, len(outcomes))
	for i, o := range outcomes {
		status, result := "ok", o.Value
		if !o.Succeeded() {
			status, result = "failed", o.Err.Error()
		}
		duration := FormatExecutionDuration(o.Duration)
		if o.Duration == 0 {
			duration = "< 1µs"
		}
		rows[i] = []string{fmt.Sprint(o.Index), o.WorkerID, o.Input, duration, status, result}
	}

	widths := make([]int, len(outcomeHeaders))
	for c, h := range outcomeHeaders {
		widths[c] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], lipgloss.Width(cell))
		}
	}

	fmt.Fprintf(out, "\n--- Outcomes ---\n")
	cells := make([]string, len(outcomeHeaders))
	for c, h := range outcomeHeaders {
		cells[c] = styles.Header.Render(padRight(h, widths[c]))
	}
	fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, ""), " "))

	for i, row := range rows {
		rowStyle := styles.Success
		if !outcomes[i].Succeeded() {
			rowStyle = styles.Failure
		}
		for c, cell := range row {
			style := styles.Cell
			switch c {
			case 0, 3:
				style = styles.Dim
			case 4, 5:
				style = rowStyle
			}
			cells[c] = style.Render(padRight(cell, widths[c]))
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, ""), " "))
	}
}

// padRight pads s with spaces up to width display columns.
func padRight(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// PresentAggregate displays the aggregate of a successful run with a short
// summary header.
func (CLIResultPresenter) PresentAggregate(agg orchestration.Aggregate, out io.Writer) {
	fmt.Fprintf(out, "\n--- Aggregate (%s%s%s) ---\n", ui.ColorBold(), agg.Policy, ui.ColorReset())
	fmt.Fprintf(out, "Calls: %s%d%s, failed: %s%d%s, elapsed: %s%s%s\n",
		ui.ColorCyan(), len(agg.Outcomes), ui.ColorReset(),
		failedColor(agg.Failed()), agg.Failed(), ui.ColorReset(),
		ui.ColorYellow(), FormatExecutionDuration(agg.Elapsed), ui.ColorReset())

	if usesValues(agg.Policy) {
		if len(agg.Values) == 0 {
			fmt.Fprintf(out, "%s(no values)%s\n", ui.ColorDim(), ui.ColorReset())
			return
		}
		for i, v := range agg.Values {
			fmt.Fprintf(out, "%3d. %s%s%s\n", i+1, ui.ColorGreen(), v, ui.ColorReset())
		}
		return
	}
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorGreen(), agg.Joined, ui.ColorReset())
}

func failedColor(n int) string {
	if n > 0 {
		return ui.ColorRed()
	}
	return ui.ColorGreen()
}

// usesValues reports whether policy produces a list rather than a joined string.
func usesValues(policy orchestration.Policy) bool {
	return policy == orchestration.CompletionOrder || policy == orchestration.FailPartial
}

// FormatDuration formats a duration for display.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return FormatExecutionDuration(d)
}

// HandleError prints a one-line diagnosis of err and returns the matching
// exit code. A nil error returns apperrors.ExitSuccess without output.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	code := apperrors.ExitCode(err)

	var (
		argErr     apperrors.InvalidArgumentError
		workerErr  apperrors.WorkerError
		timeoutErr apperrors.TimeoutError
	)
	switch {
	case errors.As(err, &argErr):
		fmt.Fprintf(out, "%sInvalid batch:%s %d workers but %d inputs; nothing was dispatched.\n",
			ui.ColorRed(), ui.ColorReset(), argErr.Workers, argErr.Inputs)
	case errors.As(err, &timeoutErr):
		fmt.Fprintf(out, "%sTimeout:%s %s (%d/%d calls settled, after %s).\n",
			ui.ColorYellow(), ui.ColorReset(), timeoutErr.Operation, timeoutErr.Settled, timeoutErr.Total,
			FormatExecutionDuration(duration))
	case code == apperrors.ExitErrorCanceled:
		fmt.Fprintf(out, "%sCanceled:%s %v\n", ui.ColorYellow(), ui.ColorReset(), err)
	case errors.As(err, &workerErr):
		fmt.Fprintf(out, "%sWorker failure:%s %s%s%s (slot %d): %v\n",
			ui.ColorRed(), ui.ColorReset(), ui.ColorBold(), workerErr.WorkerID, ui.ColorReset(),
			workerErr.Index, workerErr.Cause)
	default:
		fmt.Fprintf(out, "%sError:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
	}
	return code
}
