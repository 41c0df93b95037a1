package app

import (
	"context"
	"io"
	"log"
	"os"

	"winclick/internal/config"
	"winclick/internal/infrastructure/errors"
	"winclick/internal/infrastructure/logging"
	"winclick/internal/platform"
	"winclick/internal/services"
)

// exitFailure is returned for failures that have no configurable exit code
const exitFailure = 1

// Options carries the process surroundings the App writes to and drives
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	API     platform.WindowAPI // nil selects the host backend
	Program string             // substituted for {program} in usage lines
}

// App wires configuration, logging, the windowing backend and the Clicker together
type App struct {
	cfg     *config.Config
	logger  logging.Logger
	clicker *services.Clicker
	stdout  io.Writer
	program string
}

// NewApp creates a new App with dependency injection
func NewApp(cfg *config.Config, opts Options) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Program == "" {
		opts.Program = "winclick"
	}

	// Initialize logger first (required by all other components)
	logger := logging.NewLogger(opts.Stderr, cfg.Level())
	errors.SetDefaultRetryLogger(logger)

	// Libraries that use the standard logger end up in the same JSON stream
	log.SetFlags(0)
	log.SetOutput(logging.NewStdlibAdapter(logger, "stdlib"))

	api := opts.API
	if api == nil {
		api = platform.NewWindowAPI(logger)
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		clicker: services.NewClicker(api, cfg, opts.Stdout, logger),
		stdout:  opts.Stdout,
		program: opts.Program,
	}
}

// Run dispatches on the number of positional arguments and returns the process exit code:
// none lists windows, a title lists its controls, a title and a label clicks the control.
func (a *App) Run(ctx context.Context, args []string) int {
	a.logger.Debug("Starting", "args", len(args), "click_mode", a.cfg.ClickMode, "interval", a.cfg.Interval.String())

	switch len(args) {
	case 0:
		if _, err := a.clicker.ListWindows(ctx, a.stdout, a.cfg.Verbose); err != nil {
			return a.failure(err, "list_windows")
		}
		return a.cfg.ExitCodes.ListWindows

	case 1:
		if _, err := a.clicker.ListControls(ctx, a.stdout, args[0], a.cfg.Verbose); err != nil {
			if errors.IsWindowNotFound(err) {
				a.logger.Debug("Window not found for control listing", "window", args[0])
				return a.cfg.ExitCodes.WindowNotFound
			}
			return a.failure(err, "list_controls")
		}
		return 0

	case 2:
		result, err := a.clicker.LocateAndClick(ctx, args[0], args[1])
		if err != nil {
			if services.GaveUp(err) {
				logging.LogAutomationError(a.logger, err, "locate_and_click", nil)
				return a.cfg.ExitCodes.GaveUp
			}
			return a.failure(err, "locate_and_click")
		}
		a.logger.Debug("Clicked", "window", args[0], "control", args[1], "attempts", result.Attempts)
		return 0

	default:
		a.logger.Debug("Invalid arguments", "error", errors.HandleInvalidArgs("dispatch", len(args)))
		a.Usage()
		return a.cfg.ExitCodes.Usage
	}
}

// Usage prints the configured usage lines to stdout
func (a *App) Usage() {
	for _, line := range a.cfg.Messages.Usage {
		io.WriteString(a.stdout, config.Render(line, "program", a.program)+"\n")
	}
}

func (a *App) failure(err error, operation string) int {
	if errors.IsCancelled(err) {
		a.logger.Info("Interrupted", "operation", operation)
		return a.cfg.ExitCodes.Cancelled
	}
	logging.LogAutomationError(a.logger, err, operation, nil)
	return exitFailure
}
