package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "winclick/internal/infrastructure/errors"
	"winclick/internal/infrastructure/logging"
	"winclick/internal/platform"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no --config flag is given
const EnvConfigPath = "WINCLICK_CONFIG"

// parseBoolEnv reads an environment variable and parses it as a boolean.
// Returns the parsed value and a boolean indicating if the variable was present.
// Supports common boolean representations: true/false, 1/0, yes/no, on/off, t/f, y/n (case-insensitive).
func parseBoolEnv(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}

	// First try strconv.ParseBool which handles: true/false, 1/0, t/f (case-insensitive)
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed, true
	}

	// Handle additional common variants not supported by strconv.ParseBool
	switch strings.ToLower(value) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// Messages holds the operator-facing text. Placeholders {window}, {control}, {title}
// and {program} are substituted when a message is printed; an empty message is not printed.
type Messages struct {
	WindowNotFound     string   `yaml:"window_not_found"`      // locate-and-click, window lookup failed
	ControlNotFound    string   `yaml:"control_not_found"`     // locate-and-click, control lookup failed
	ControlDisabled    string   `yaml:"control_disabled"`      // locate-and-click, control found but disabled
	ListWindowNotFound string   `yaml:"list_window_not_found"` // control listing, window lookup failed
	ListEntry          string   `yaml:"list_entry"`            // one line of a window or control listing
	Usage              []string `yaml:"usage"`                 // printed on a bad argument count
}

// ExitCodes holds the process exit status for each outcome
type ExitCodes struct {
	ListWindows    int `yaml:"list_windows"`     // zero-argument window listing
	WindowNotFound int `yaml:"window_not_found"` // control listing could not resolve its window
	Usage          int `yaml:"usage"`            // bad argument count
	GaveUp         int `yaml:"gave_up"`          // bounded locate-and-click ran out of attempts or time
	Cancelled      int `yaml:"cancelled"`        // interrupted by a signal
}

// Config holds all winclick configuration options
type Config struct {
	// Polling settings
	Interval    time.Duration `yaml:"interval"`     // Wait between lookups
	Timeout     time.Duration `yaml:"timeout"`      // Upper bound for locate-and-click, 0 = none
	MaxAttempts int           `yaml:"max_attempts"` // Upper bound on lookups, 0 = none

	// Dispatch settings
	ClickMode string `yaml:"click_mode"` // send or post

	// Output settings
	Verbose  bool   `yaml:"verbose"`   // Add process and state columns to listings
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	Messages  Messages  `yaml:"messages"`
	ExitCodes ExitCodes `yaml:"exit_codes"`
}

// DefaultConfig returns a configuration that reproduces the classic click.exe behavior:
// unbounded polling every 50ms, synchronous clicks, and its message wording
func DefaultConfig() *Config {
	return &Config{
		Interval:    apperrors.DefaultPollInterval,
		Timeout:     0,
		MaxAttempts: 0,

		ClickMode: platform.ClickSend.String(),

		Verbose:  false,
		LogLevel: "warn",

		Messages: Messages{
			WindowNotFound:     "Error: Failed to find window {window}",
			ControlNotFound:    "Error: failed to find window/button |{window}| |{control}|",
			ControlDisabled:    "Button not enabled",
			ListWindowNotFound: "Error: failed to find window |{window}|",
			ListEntry:          "|{title}|",
			Usage: []string{
				"Usage to click buttons: {program} <window-title> <button-name>",
				"Usage to identify buttons: {program} <window-title>",
				"Usage to identify windows: {program} ",
			},
		},

		ExitCodes: ExitCodes{
			ListWindows:    0,
			WindowNotFound: 1,
			Usage:          1,
			GaveUp:         2,
			Cancelled:      130,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if any) and the environment,
// then validates it. An empty path falls back to $WINCLICK_CONFIG; no file at all is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewAutomationErrorWithContext("load_config", err, apperrors.ErrCodeConfig, map[string]string{
				"path": path,
			})
		}
		if err := cfg.Decode(bytes.NewReader(data)); err != nil {
			return nil, apperrors.NewAutomationErrorWithContext("load_config", err, apperrors.ErrCodeConfig, map[string]string{
				"path": path,
			})
		}
	}

	if err := cfg.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Decode overlays YAML from r onto c. Unknown keys are rejected so typos do not pass silently.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty document keeps the defaults
		}
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadFromEnvironment loads configuration from environment variables.
// A malformed WINCLICK_INTERVAL, WINCLICK_TIMEOUT or WINCLICK_MAX_ATTEMPTS is a CONFIG error.
func (c *Config) LoadFromEnvironment() error {
	if interval := os.Getenv("WINCLICK_INTERVAL"); interval != "" {
		val, err := time.ParseDuration(interval)
		if err != nil || val <= 0 {
			return envError("WINCLICK_INTERVAL", interval, "a positive duration")
		}
		c.Interval = val
	}

	if timeout := os.Getenv("WINCLICK_TIMEOUT"); timeout != "" {
		val, err := time.ParseDuration(timeout)
		if err != nil || val < 0 {
			return envError("WINCLICK_TIMEOUT", timeout, "a non-negative duration")
		}
		c.Timeout = val
	}

	if maxAttempts := os.Getenv("WINCLICK_MAX_ATTEMPTS"); maxAttempts != "" {
		val, err := strconv.Atoi(maxAttempts)
		if err != nil || val < 0 {
			return envError("WINCLICK_MAX_ATTEMPTS", maxAttempts, "a non-negative integer")
		}
		c.MaxAttempts = val
	}

	if post, present := parseBoolEnv("WINCLICK_POST"); present {
		if post {
			c.ClickMode = platform.ClickPost.String()
		} else {
			c.ClickMode = platform.ClickSend.String()
		}
	}

	if verbose, present := parseBoolEnv("WINCLICK_VERBOSE"); present {
		c.Verbose = verbose
	}

	if logLevel := os.Getenv("WINCLICK_LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}

	return nil
}

func envError(key, value, want string) error {
	return apperrors.HandleConfigError("load_environment", key, fmt.Sprintf("expected %s, got %q", want, value))
}

// Validate validates the configuration parameters
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return apperrors.HandleConfigError("validate_config", "interval", fmt.Sprintf("must be positive, got %v", c.Interval))
	}

	if c.Timeout < 0 {
		return apperrors.HandleConfigError("validate_config", "timeout", fmt.Sprintf("cannot be negative, got %v", c.Timeout))
	}

	if c.MaxAttempts < 0 {
		return apperrors.HandleConfigError("validate_config", "max_attempts", fmt.Sprintf("cannot be negative, got %d", c.MaxAttempts))
	}

	if _, err := platform.ParseClickMode(c.ClickMode); err != nil {
		return apperrors.HandleConfigError("validate_config", "click_mode", err.Error())
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.HandleConfigError("validate_config", "log_level", err.Error())
	}

	codes := map[string]int{
		"exit_codes.list_windows":     c.ExitCodes.ListWindows,
		"exit_codes.window_not_found": c.ExitCodes.WindowNotFound,
		"exit_codes.usage":            c.ExitCodes.Usage,
		"exit_codes.gave_up":          c.ExitCodes.GaveUp,
		"exit_codes.cancelled":        c.ExitCodes.Cancelled,
	}
	for field, code := range codes {
		if code < 0 || code > 255 {
			return apperrors.HandleConfigError("validate_config", field, fmt.Sprintf("must be within 0-255, got %d", code))
		}
	}

	return nil
}

// Mode returns the parsed click mode. Call after Validate.
func (c *Config) Mode() platform.ClickMode {
	mode, _ := platform.ParseClickMode(c.ClickMode)
	return mode
}

// Level returns the parsed log level. Call after Validate.
func (c *Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// RetryConfig converts the polling settings into the retry policy for locate-and-click
func (c *Config) RetryConfig() *apperrors.RetryConfig {
	rc := apperrors.DefaultRetryConfig()
	rc.MaxAttempts = c.MaxAttempts
	rc.InitialDelay = c.Interval
	rc.MaxDelay = c.Interval
	return rc
}

// Render substitutes {key} placeholders in tmpl using alternating key/value pairs
func Render(tmpl string, pairs ...string) string {
	if len(pairs)%2 != 0 {
		pairs = pairs[:len(pairs)-1]
	}

	oldnew := make([]string, 0, len(pairs))
	for i := 0; i < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(tmpl)
}
