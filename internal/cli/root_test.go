package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"winclick/internal/platform"
)

// isolateEnv clears every variable the configuration layer reads
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WINCLICK_CONFIG", "WINCLICK_INTERVAL", "WINCLICK_TIMEOUT", "WINCLICK_MAX_ATTEMPTS",
		"WINCLICK_POST", "WINCLICK_VERBOSE", "WINCLICK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func runWith(t *testing.T, ctx context.Context, api platform.WindowAPI, args ...string) (int, string, string) {
	t.Helper()
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	code := run(ctx, "winclick", args, &stdout, &stderr, api)
	return code, stdout.String(), stderr.String()
}

func TestRun_ListWindows(t *testing.T) {
	api := platform.NewFakeAPI()
	api.AddWindow("Notepad", 1)
	api.AddWindow("Calculator", 2)

	code, stdout, _ := runWith(t, context.Background(), api)
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if stdout != "|Notepad|\n|Calculator|\n" {
		t.Errorf("Unexpected listing %q", stdout)
	}
}

func TestRun_ListControls(t *testing.T) {
	api := platform.NewFakeAPI()
	w := api.AddWindow("Setup", 1)
	api.AddChild(w, "OK", true)
	api.AddChild(w, "Cancel", false)

	code, stdout, _ := runWith(t, context.Background(), api, "Setup")
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if stdout != "|OK|\n|Cancel|\n" {
		t.Errorf("Unexpected listing %q", stdout)
	}
}

func TestRun_ListControlsVerboseFlag(t *testing.T) {
	api := platform.NewFakeAPI()
	w := api.AddWindow("Setup", 1)
	api.AddChild(w, "Cancel", false)

	code, stdout, _ := runWith(t, context.Background(), api, "-v", "Setup")
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if stdout != "|Cancel|\tenabled=false class=Button\n" {
		t.Errorf("Unexpected listing %q", stdout)
	}
}

func TestRun_ListControlsWindowMissing(t *testing.T) {
	code, stdout, _ := runWith(t, context.Background(), platform.NewFakeAPI(), "Missing")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if strings.TrimSpace(stdout) != "Error: failed to find window |Missing|" {
		t.Errorf("Unexpected diagnostic %q", stdout)
	}
}

func TestRun_Click(t *testing.T) {
	api := platform.NewFakeAPI()
	w := api.AddWindow("Setup", 1)
	ok := api.AddChild(w, "OK", true)

	code, stdout, _ := runWith(t, context.Background(), api, "--post", "Setup", "OK")
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if api.Clicks(ok) != 1 {
		t.Errorf("Expected one click, got %d", api.Clicks(ok))
	}
	if modes := api.ClickModes(); len(modes) != 1 || modes[0] != platform.ClickPost {
		t.Errorf("Expected a single posted click, got %v", modes)
	}
	if stdout != "" {
		t.Errorf("Expected no output, got %q", stdout)
	}
}

func TestRun_GivesUpAfterMaxAttempts(t *testing.T) {
	api := platform.NewFakeAPI()

	code, stdout, stderr := runWith(t, context.Background(), api, "--interval", "1ms", "--max-attempts", "3", "Setup", "OK")
	if code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
	if api.FindWindowCalls() != 3 {
		t.Errorf("Expected 3 lookups, got %d", api.FindWindowCalls())
	}
	if strings.TrimSpace(stdout) != "Error: Failed to find window Setup" {
		t.Errorf("Expected one window diagnostic, got %q", stdout)
	}
	if !strings.Contains(stderr, `"level":"ERROR"`) {
		t.Errorf("Expected the failure to be logged, got %q", stderr)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, _, _ := runWith(t, ctx, platform.NewFakeAPI(), "Setup", "OK")
	if code != 130 {
		t.Errorf("Expected exit code 130, got %d", code)
	}
}

func TestRun_WrongArgumentCount(t *testing.T) {
	code, stdout, _ := runWith(t, context.Background(), platform.NewFakeAPI(), "a", "b", "c")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}

	want := "Usage to click buttons: winclick <window-title> <button-name>\n" +
		"Usage to identify buttons: winclick <window-title>\n" +
		"Usage to identify windows: winclick \n"
	if stdout != want {
		t.Errorf("Usage = %q, expected %q", stdout, want)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	code, stdout, stderr := runWith(t, context.Background(), platform.NewFakeAPI(), "--bogus")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "bogus") {
		t.Errorf("Expected flag error on stderr, got %q", stderr)
	}
	if !strings.HasPrefix(stdout, "Usage to click buttons") {
		t.Errorf("Expected usage on stdout, got %q", stdout)
	}
}

func TestRun_InvalidFlagValue(t *testing.T) {
	code, _, stderr := runWith(t, context.Background(), platform.NewFakeAPI(), "--log-level", "loud")
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "log_level") {
		t.Errorf("Expected validation error naming log_level, got %q", stderr)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "winclick.yaml")
	content := "messages:\n  list_entry: \"* {title}\"\nexit_codes:\n  list_windows: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	api := platform.NewFakeAPI()
	api.AddWindow("Notepad", 1)

	code, stdout, _ := runWith(t, context.Background(), api, "--config", path)
	if code != 7 {
		t.Errorf("Expected configured exit code 7, got %d", code)
	}
	if stdout != "* Notepad\n" {
		t.Errorf("Unexpected listing %q", stdout)
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	code, _, stderr := runWith(t, context.Background(), platform.NewFakeAPI(), "--config", missing)
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if stderr == "" {
		t.Error("Expected an error on stderr")
	}
}

func TestRun_FlagsOverrideEnvironment(t *testing.T) {
	api := platform.NewFakeAPI()

	isolateEnv(t)
	t.Setenv("WINCLICK_MAX_ATTEMPTS", "50")
	t.Setenv("WINCLICK_INTERVAL", "1ms")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), "winclick", []string{"--max-attempts", "2", "Setup", "OK"}, &stdout, &stderr, api)
	if code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
	if api.FindWindowCalls() != 2 {
		t.Errorf("Expected the flag to win with 2 lookups, got %d", api.FindWindowCalls())
	}
}

func TestRun_MalformedEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WINCLICK_INTERVAL", "soon")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), "winclick", nil, &stdout, &stderr, platform.NewFakeAPI())
	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "WINCLICK_INTERVAL") {
		t.Errorf("Expected error naming WINCLICK_INTERVAL, got %q", stderr.String())
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runWith(t, context.Background(), platform.NewFakeAPI(), "--version")
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if !strings.Contains(stdout, version) {
		t.Errorf("Expected version in output, got %q", stdout)
	}
}

func TestRun_DashedTitleAfterSeparator(t *testing.T) {
	api := platform.NewFakeAPI()
	api.AddWindow("-Console-", 1)

	code, stdout, _ := runWith(t, context.Background(), api, "--", "-Console-")
	if code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
	if stdout != "" {
		t.Errorf("Expected empty control listing, got %q", stdout)
	}
}
