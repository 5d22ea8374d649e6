package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/ui"
	"github.com/agbru/fanout/internal/worker"
)

func sampleAggregate() orchestration.Aggregate {
	return orchestration.Aggregate{
		RunID:  "run-1",
		Policy: orchestration.FailSoft,
		Joined: "OK:MSG1, FALLBACK",
		Outcomes: []orchestration.Outcome{
			{Index: 0, WorkerID: "OK", Input: "msg1", Value: "OK:MSG1", Duration: 3 * time.Millisecond},
			{Index: 1, WorkerID: "FAIL", Input: "msg2", Err: errors.New("Service failed"), Duration: 2 * time.Millisecond},
		},
		Elapsed: 4 * time.Millisecond,
	}
}

func TestWriteAggregateToFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	testCases := []struct {
		name       string
		outputFile string
		checkFunc  func(t *testing.T, filePath string)
	}{
		{
			name:       "Write report to file",
			outputFile: filepath.Join(tmpDir, "report.txt"),
			checkFunc: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				if err != nil {
					t.Fatalf("Failed to read output file: %v", err)
				}
				for _, want := range []string{"# Policy: fail-soft", "# Failed: 1", "FAIL\tfailed\tService failed", "OK:MSG1, FALLBACK"} {
					if !strings.Contains(string(content), want) {
						t.Errorf("File should contain %q, got:\n%s", want, content)
					}
				}
			},
		},
		{
			name:       "Empty output file (no write)",
			outputFile: "",
		},
		{
			name:       "Create nested directory",
			outputFile: filepath.Join(tmpDir, "nested", "dir", "report.txt"),
			checkFunc: func(t *testing.T, filePath string) {
				if _, err := os.Stat(filePath); err != nil {
					t.Errorf("File should exist in nested directory: %v", err)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := WriteAggregateToFile(sampleAggregate(), OutputConfig{OutputFile: tc.outputFile})
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tc.outputFile != "" && tc.checkFunc != nil {
				tc.checkFunc(t, tc.outputFile)
			}
		})
	}
}

func TestFormatQuietAggregate(t *testing.T) {
	t.Parallel()
	if got := FormatQuietAggregate(sampleAggregate()); got != "OK:MSG1, FALLBACK" {
		t.Errorf("joined policy: got %q", got)
	}
	partial := orchestration.Aggregate{Policy: orchestration.FailPartial, Values: []string{"A", "B"}}
	if got := FormatQuietAggregate(partial); got != "A\nB" {
		t.Errorf("list policy: got %q", got)
	}
}

func TestDisplayAggregateWithConfig(t *testing.T) {
	prev := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	defer ui.SetCurrentTheme(prev)

	t.Run("Quiet prints only the value", func(t *testing.T) {
		var buf bytes.Buffer
		if err := DisplayAggregateWithConfig(&buf, sampleAggregate(), OutputConfig{Quiet: true}); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "OK:MSG1, FALLBACK\n" {
			t.Errorf("unexpected quiet output %q", buf.String())
		}
	})

	t.Run("Verbose adds the outcome table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := DisplayAggregateWithConfig(&buf, sampleAggregate(), OutputConfig{Verbose: true}); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{"--- Outcomes ---", "Service failed", "--- Aggregate (fail-soft) ---", "OK:MSG1, FALLBACK"} {
			if !strings.Contains(output, want) {
				t.Errorf("output should contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("Saves report", func(t *testing.T) {
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "out.txt")
		if err := DisplayAggregateWithConfig(&buf, sampleAggregate(), OutputConfig{OutputFile: path}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Report saved to: "+path) {
			t.Errorf("missing save notice in %q", buf.String())
		}
	})
}

func TestPrintExecutionConfig(t *testing.T) {
	prev := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	defer ui.SetCurrentTheme(prev)

	req := orchestration.Request{
		Policy:  orchestration.Process,
		Workers: []worker.Worker{worker.NewService("A"), worker.NewService("B")},
	}
	var buf bytes.Buffer
	PrintExecutionConfig(req, time.Second, &buf)
	output := buf.String()
	for _, want := range []string{"Policy process over 2 workers", "timeout of 1s", "Workers: A, B"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got:\n%s", want, output)
		}
	}
}
