package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"winclick/internal/app"
	"winclick/internal/config"
	"winclick/internal/platform"
)

// version is overridden at build time with -ldflags "-X winclick/internal/cli.version=..."
var version = "dev"

// exitFailure covers configuration errors, which happen before exit codes are known
const exitFailure = 1

type options struct {
	configPath  string
	interval    time.Duration
	timeout     time.Duration
	maxAttempts int
	post        bool
	verbose     bool
	logLevel    string
}

// exitError carries a non-zero exit status out of RunE
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// flagError marks a command-line parsing failure
type flagError struct {
	err error
}

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

func newRootCmd(program string, stdout, stderr io.Writer, api platform.WindowAPI) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   program + " [window-title [button-name]]",
		Short: "Find a window by title and click one of its buttons",
		Long: `winclick locates a top-level window by its exact title, finds a direct child
control by its exact label and clicks it once the control is enabled.

  winclick                      list the titles of all top-level windows
  winclick <window-title>       list the labels of the window's controls
  winclick <window-title> <btn> wait for the control and click it

Lookups are retried until they succeed unless --timeout or --max-attempts is set.
Titles that begin with a dash must follow "--".`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			application := app.NewApp(cfg, app.Options{
				Stdout:  stdout,
				Stderr:  stderr,
				API:     api,
				Program: program,
			})

			if code := application.Run(cmd.Context(), args); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &flagError{err: err}
	})

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML configuration file (default $"+config.EnvConfigPath+")")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "wait between lookups (default 50ms)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up clicking after this long, 0 waits forever")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "give up clicking after this many lookups, 0 waits forever")
	cmd.Flags().BoolVar(&opts.post, "post", false, "queue the click instead of waiting for the window to process it")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "add process and control details to listings")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default warn)")

	return cmd
}

// loadConfig layers explicitly set flags over file and environment configuration
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.Interval = opts.interval
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = opts.maxAttempts
	}
	if flags.Changed("post") {
		if opts.post {
			cfg.ClickMode = platform.ClickPost.String()
		} else {
			cfg.ClickMode = platform.ClickSend.String()
		}
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command with signal-aware cancellation and returns the exit status
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	program := filepath.Base(os.Args[0])
	program = program[:len(program)-len(filepath.Ext(program))]
	return run(ctx, program, os.Args[1:], os.Stdout, os.Stderr, nil)
}

func run(ctx context.Context, program string, args []string, stdout, stderr io.Writer, api platform.WindowAPI) int {
	cmd := newRootCmd(program, stdout, stderr, api)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	fmt.Fprintln(stderr, err)

	var flagErr *flagError
	if errors.As(err, &flagErr) {
		defaults := config.DefaultConfig()
		for _, line := range defaults.Messages.Usage {
			fmt.Fprintln(stdout, config.Render(line, "program", program))
		}
		return defaults.ExitCodes.Usage
	}
	return exitFailure
}
