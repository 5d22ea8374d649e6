// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayProgress], [DisplayQuietAggregate].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietAggregate], [FormatExecutionDuration].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteAggregateToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/ui"
)

// OutputConfig holds configuration for aggregate output.
type OutputConfig struct {
	// OutputFile is the path to save the report (empty for no file output).
	OutputFile string
	// Quiet prints only the aggregate value.
	Quiet bool
	// Verbose adds the per-call outcome table.
	Verbose bool
}

// WriteAggregateToFile writes a plain-text report of agg to config.OutputFile,
// creating parent directories as needed.
func WriteAggregateToFile(agg orchestration.Aggregate, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Fan-out Aggregate\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Run: %s\n", agg.RunID)
	fmt.Fprintf(file, "# Policy: %s\n", agg.Policy)
	fmt.Fprintf(file, "# Calls: %d\n", len(agg.Outcomes))
	fmt.Fprintf(file, "# Failed: %d\n", agg.Failed())
	fmt.Fprintf(file, "# Elapsed: %s\n", agg.Elapsed)
	fmt.Fprintf(file, "\n")
	for _, o := range agg.Outcomes {
		if o.Succeeded() {
			fmt.Fprintf(file, "%d\t%s\tok\t%s\n", o.Index, o.WorkerID, o.Value)
		} else {
			fmt.Fprintf(file, "%d\t%s\tfailed\t%v\n", o.Index, o.WorkerID, o.Err)
		}
	}
	fmt.Fprintf(file, "\n%s\n", FormatQuietAggregate(agg))

	return file.Close()
}

// FormatQuietAggregate formats an aggregate for scripting: the joined string,
// or one value per line for list-valued policies.
func FormatQuietAggregate(agg orchestration.Aggregate) string {
	if usesValues(agg.Policy) {
		return strings.Join(agg.Values, "\n")
	}
	return agg.Joined
}

// DisplayQuietAggregate outputs an aggregate in quiet mode.
func DisplayQuietAggregate(out io.Writer, agg orchestration.Aggregate) {
	fmt.Fprintln(out, FormatQuietAggregate(agg))
}

// DisplayAggregateWithConfig displays agg according to config and saves the
// report when an output file is configured.
func DisplayAggregateWithConfig(out io.Writer, agg orchestration.Aggregate, config OutputConfig) error {
	presenter := CLIResultPresenter{}
	if config.Quiet {
		DisplayQuietAggregate(out, agg)
	} else {
		if config.Verbose {
			presenter.PresentOutcomeTable(agg.Outcomes, out)
		}
		presenter.PresentAggregate(agg, out)
	}

	if config.OutputFile != "" {
		if err := WriteAggregateToFile(agg, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}

// PrintExecutionConfig displays the batch about to be dispatched.
func PrintExecutionConfig(req orchestration.Request, timeout time.Duration, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Policy %s%s%s over %s%d%s workers with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), req.Policy, ui.ColorReset(),
		ui.ColorCyan(), len(req.Workers), ui.ColorReset(),
		ui.ColorYellow(), timeout, ui.ColorReset())
	ids := make([]string, len(req.Workers))
	for i, w := range req.Workers {
		ids[i] = w.ID()
	}
	fmt.Fprintf(out, "Workers: %s\n", strings.Join(ids, ", "))
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
