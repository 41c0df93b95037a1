package logging

import (
	"bytes"
	"strings"
)

// StdlibAdapter adapts our structured logger to the io.Writer the standard log package writes to,
// so output from libraries that call log.Printf ends up as JSON entries on the same stream
type StdlibAdapter struct {
	logger Logger
	source string
}

// NewStdlibAdapter creates a new adapter using our structured logger
func NewStdlibAdapter(logger Logger, source string) *StdlibAdapter {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &StdlibAdapter{
		logger: logger,
		source: source,
	}
}

// Write logs each non-empty line of p at INFO level. Lines that look like warnings or errors
// are promoted.
func (a *StdlibAdapter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte{'\n'}) {
		msg := strings.TrimSpace(string(line))
		if msg == "" {
			continue
		}

		lower := strings.ToLower(msg)
		switch {
		case strings.HasPrefix(lower, "error"), strings.Contains(lower, "[error]"):
			a.logger.Error(msg, "source", a.source)
		case strings.HasPrefix(lower, "warn"), strings.Contains(lower, "[warn"):
			a.logger.Warn(msg, "source", a.source)
		default:
			a.logger.Info(msg, "source", a.source)
		}
	}
	return len(p), nil
}
