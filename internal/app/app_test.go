package app

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"winclick/internal/config"
	"winclick/internal/platform"
)

func newTestApp(api platform.WindowAPI, cfg *config.Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Interval = time.Millisecond
	}
	var stdout, stderr bytes.Buffer
	a := NewApp(cfg, Options{Stdout: &stdout, Stderr: &stderr, API: api, Program: "click"})
	return a, &stdout, &stderr
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected int
	}{
		{"list windows", nil, 0},
		{"list controls", []string{"Setup"}, 0},
		{"list controls of missing window", []string{"Missing"}, 1},
		{"click", []string{"Setup", "OK"}, 0},
		{"too many arguments", []string{"a", "b", "c"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := platform.NewFakeAPI()
			w := api.AddWindow("Setup", 1)
			api.AddChild(w, "OK", true)

			a, _, _ := newTestApp(api, nil)
			if got := a.Run(context.Background(), tt.args); got != tt.expected {
				t.Errorf("Run(%q) = %d, expected %d", tt.args, got, tt.expected)
			}
		})
	}
}

func TestRun_ConfiguredExitCodes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Interval = time.Millisecond
	cfg.Timeout = 10 * time.Millisecond
	cfg.ExitCodes = config.ExitCodes{ListWindows: 3, WindowNotFound: 4, Usage: 5, GaveUp: 6, Cancelled: 7}

	a, _, _ := newTestApp(platform.NewFakeAPI(), cfg)

	if got := a.Run(context.Background(), nil); got != 3 {
		t.Errorf("Expected list windows code 3, got %d", got)
	}
	if got := a.Run(context.Background(), []string{"Missing"}); got != 4 {
		t.Errorf("Expected window not found code 4, got %d", got)
	}
	if got := a.Run(context.Background(), []string{"a", "b", "c"}); got != 5 {
		t.Errorf("Expected usage code 5, got %d", got)
	}
	if got := a.Run(context.Background(), []string{"Missing", "OK"}); got != 6 {
		t.Errorf("Expected gave up code 6, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := a.Run(ctx, []string{"Missing", "OK"}); got != 7 {
		t.Errorf("Expected cancelled code 7, got %d", got)
	}
}

func TestUsage_RendersProgram(t *testing.T) {
	a, stdout, _ := newTestApp(platform.NewFakeAPI(), nil)
	a.Usage()

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 usage lines, got %d", len(lines))
	}
	if lines[0] != "Usage to click buttons: click <window-title> <button-name>" {
		t.Errorf("Unexpected first line %q", lines[0])
	}
	if lines[2] != "Usage to identify windows: click " {
		t.Errorf("Unexpected last line %q", lines[2])
	}
}

func TestRun_DebugLogging(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "debug"

	api := platform.NewFakeAPI()
	w := api.AddWindow("Setup", 1)
	api.AddChild(w, "OK", true)

	a, _, stderr := newTestApp(api, cfg)
	if got := a.Run(context.Background(), []string{"Setup", "OK"}); got != 0 {
		t.Fatalf("Expected success, got %d", got)
	}

	logs := stderr.String()
	if !strings.Contains(logs, "State transition") {
		t.Errorf("Expected state transitions in debug log, got %q", logs)
	}
	if !strings.Contains(logs, "Operation completed: locate_and_click") {
		t.Errorf("Expected operation summary in debug log, got %q", logs)
	}
}

func TestNewApp_StdlibLogRouted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "info"

	_, _, stderr := newTestApp(platform.NewFakeAPI(), cfg)

	log.Print("something happened")
	if !strings.Contains(stderr.String(), `"source":"stdlib"`) {
		t.Errorf("Expected standard logger output to be routed, got %q", stderr.String())
	}
}
