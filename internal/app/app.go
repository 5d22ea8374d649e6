// Package app wires configuration, workers, the orchestrator and the CLI
// presenters into a runnable application.
package app

import (
	"context"
	"errors"
	"flag"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/fanout/internal/cli"
	"github.com/agbru/fanout/internal/config"
	apperrors "github.com/agbru/fanout/internal/errors"
	"github.com/agbru/fanout/internal/logging"
	"github.com/agbru/fanout/internal/metrics"
	"github.com/agbru/fanout/internal/orchestration"
	"github.com/agbru/fanout/internal/server"
	"github.com/agbru/fanout/internal/sysmon"
	"github.com/agbru/fanout/internal/tui"
	"github.com/agbru/fanout/internal/ui"
	"github.com/agbru/fanout/internal/worker"
)

// WorkerFactory builds the workers for a configuration.
type WorkerFactory func(cfg config.AppConfig) []worker.Worker

// Application represents the fanout application instance.
type Application struct {
	Config    config.AppConfig
	Workers   WorkerFactory
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithWorkerFactory replaces the simulated workers built from the configuration.
func WithWorkerFactory(f WorkerFactory) AppOption {
	return func(a *Application) { a.Workers = f }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Workers == nil {
		app.Workers = orchestration.WorkersFromConfig
	}

	programName := "fanout"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run dispatches the configured batch, prints the aggregate to out and
// returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	level := logging.ParseLevel(a.Config.LogLevel)
	zerolog.SetGlobalLevel(level)
	ui.InitTheme(a.Config.NoColor)
	logger := logging.NewConsoleLogger(a.ErrWriter, ui.GetCurrentTheme().Name == "none").WithLevel(level)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	m := metrics.NewMetrics()
	if a.Config.MetricsAddr != "" {
		stopServer := a.startMetricsServer(ctx, m, logger)
		defer stopServer()
	}

	presenter := cli.CLIResultPresenter{}
	req, err := orchestration.RequestFromConfig(a.Config)
	if err != nil {
		return presenter.HandleError(err, 0, a.ErrWriter)
	}
	req.Workers = a.Workers(a.Config)

	if a.Config.TUI {
		// The dashboard owns the terminal; console logs would corrupt it.
		opts := []orchestration.Option{
			orchestration.WithRecorder(m),
			orchestration.WithTimeout(a.Config.Timeout),
		}
		return tui.Run(ctx, req, opts, a.Config.MaxDelay, Version)
	}

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(req, a.Config.Timeout, out)
	}

	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressReporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	orch := orchestration.New(
		orchestration.WithLogger(logger),
		orchestration.WithRecorder(m),
		orchestration.WithProgressReporter(progressReporter),
		orchestration.WithProgressOutput(progressOut),
		orchestration.WithTimeout(a.Config.Timeout),
	)

	start := time.Now()
	agg, err := orch.Run(ctx, req)
	logger.Debug("memory after run", metrics.NewMemoryCollector().Snapshot().Fields()...)
	logger.Debug("system usage after run", sysmon.Sample().Fields()...)
	if err != nil {
		return presenter.HandleError(err, time.Since(start), a.ErrWriter)
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}
	if err := cli.DisplayAggregateWithConfig(out, agg, outputCfg); err != nil {
		logger.Error("saving report failed", err, logging.String("path", a.Config.OutputFile))
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// startMetricsServer serves m until the returned stop function is called.
func (a *Application) startMetricsServer(ctx context.Context, m *metrics.Metrics, logger logging.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	srv := server.NewServer(a.Config.MetricsAddr, m, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Start(ctx); err != nil {
			logger.Error("metrics server failed", err, logging.String("addr", a.Config.MetricsAddr))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
