package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/fanout/internal/errors"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "FANOUT_"

// Default values for the command-line flags.
const (
	DefaultPolicy   = "process"
	DefaultInput    = "msg"
	DefaultFallback = "FALLBACK"
	DefaultMaxDelay = 30 * time.Millisecond
	DefaultTimeout  = 5 * time.Second
	DefaultLogLevel = "warn"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Policy is the aggregation policy name (see orchestration.Policies).
	Policy string
	// Workers lists the identity tags of the backends to fan out to.
	Workers []string
	// Inputs holds one input per worker. When empty, Input is broadcast.
	Inputs []string
	// Input is the request broadcast to every worker when Inputs is empty.
	Input string
	// Fail lists worker identities replaced by always-failing doubles.
	Fail []string
	// Delays overrides the simulated latency of individual workers.
	Delays map[string]time.Duration
	// Fallback substitutes failed slots under the fail-soft policy.
	Fallback string
	// MaxDelay is the upper bound of the random simulated latency.
	MaxDelay time.Duration
	// Timeout bounds the whole aggregation.
	Timeout time.Duration
	// BatchFile is an optional YAML file describing the batch.
	BatchFile string
	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string
	// OutputFile, when set, receives a report of the aggregate.
	OutputFile string
	// LogLevel is the zerolog level name for diagnostic logs.
	LogLevel string
	// Verbose prints the per-call outcome table.
	Verbose bool
	// Quiet prints only the aggregate.
	Quiet bool
	// NoColor disables ANSI colours.
	NoColor bool
	// TUI runs the batch inside the interactive dashboard.
	TUI bool
}

// stringList is a flag.Value accepting comma-separated lists.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = splitList(v)
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// inputList is a flag.Value for comma-separated inputs. Segments are kept
// verbatim, so "a,,b" carries an empty input in the middle.
type inputList []string

func (s *inputList) String() string { return strings.Join(*s, ",") }

func (s *inputList) Set(v string) error {
	*s = splitInputs(v)
	return nil
}

// splitInputs splits on commas without trimming or dropping segments. An
// empty value means no inputs were given.
func splitInputs(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// ParseConfig parses command-line arguments into an AppConfig.
//
// Resolution order (highest priority first): explicit flags, FANOUT_*
// environment variables, the YAML batch file, defaults.
//
// Parameters:
//   - programName: The program name used in usage output.
//   - args: The command-line arguments, without the program name.
//   - errorWriter: Destination for usage and parse errors.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp, a ConfigError or a ValidationError.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{Policy: DefaultPolicy}
	var workers, fail stringList
	var inputs inputList
	fs.StringVar(&config.Policy, "policy", DefaultPolicy, "Aggregation policy: process, completion-order, fail-fast, fail-fast-short-circuit, fail-partial, fail-soft.")
	fs.Var(&workers, "workers", "Comma-separated worker identities (e.g. A,B,C).")
	fs.Var(&inputs, "inputs", "Comma-separated inputs, one per worker.")
	fs.StringVar(&config.Input, "input", DefaultInput, "Input broadcast to every worker when -inputs is not set.")
	fs.Var(&fail, "fail", "Comma-separated worker identities that always fail.")
	fs.StringVar(&config.Fallback, "fallback", DefaultFallback, "Fallback value for failed slots (fail-soft).")
	fs.DurationVar(&config.MaxDelay, "max-delay", DefaultMaxDelay, "Upper bound of the simulated worker latency.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Deadline for the whole aggregation.")
	fs.StringVar(&config.BatchFile, "batch", "", "YAML file describing the batch.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.StringVar(&config.OutputFile, "o", "", "Write an aggregate report to this file.")
	fs.StringVar(&config.OutputFile, "output", "", "Write an aggregate report to this file.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.BoolVar(&config.Verbose, "v", false, "Print the per-call outcome table.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print the per-call outcome table.")
	fs.BoolVar(&config.Quiet, "q", false, "Print only the aggregate.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the aggregate.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable coloured output.")
	fs.BoolVar(&config.TUI, "tui", false, "Run the batch in the interactive dashboard.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	config.Workers, config.Inputs, config.Fail = workers, inputs, fail

	if config.BatchFile == "" {
		config.BatchFile = getEnvString("BATCH", "")
	}
	if config.BatchFile != "" {
		batch, err := LoadBatchFile(config.BatchFile)
		if err != nil {
			return AppConfig{}, err
		}
		config = batch.applyTo(config, fs)
	}

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the semantic consistency of the configuration. Batch shape
// (workers vs inputs) is deliberately not checked here: the orchestrator
// reports it as an invalid-argument failure.
func (c AppConfig) Validate() error {
	if len(c.Workers) == 0 {
		return apperrors.ValidationError{Field: "workers", Message: "at least one worker is required"}
	}
	if c.MaxDelay < 0 {
		return apperrors.ValidationError{Field: "max-delay", Message: "must not be negative"}
	}
	if c.Timeout < 0 {
		return apperrors.ValidationError{Field: "timeout", Message: "must not be negative"}
	}
	if c.Verbose && c.Quiet {
		return apperrors.NewConfigError("-verbose and -quiet are mutually exclusive")
	}
	if c.TUI && c.Quiet {
		return apperrors.NewConfigError("-tui and -quiet are mutually exclusive")
	}
	for id, d := range c.Delays {
		if d < 0 {
			return apperrors.ValidationError{Field: "delay", Message: fmt.Sprintf("worker %s: must not be negative", id)}
		}
	}
	return nil
}

// ResolvedInputs returns the per-worker inputs, broadcasting Input when
// Inputs is empty.
func (c AppConfig) ResolvedInputs() []string {
	if len(c.Inputs) > 0 {
		return c.Inputs
	}
	inputs := make([]string, len(c.Workers))
	for i := range inputs {
		inputs[i] = c.Input
	}
	return inputs
}

// Fails reports whether the worker id is configured to fail.
func (c AppConfig) Fails(id string) bool {
	for _, f := range c.Fail {
		if f == id {
			return true
		}
	}
	return false
}
