package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rebeliceyang/lazyjson/internal/config"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps that writes to w
// and filters messages below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took once it is done
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Loaded orders.json (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// sessionLogger returns the logger used while the terminal UI owns the
// screen. Output goes to log.file, or nowhere when it is unset. The
// returned closer must be called after the UI exits.
func (c *CLI) sessionLogger(cfg *config.Config) (*log.Logger, func() error, error) {
	level := log.InfoLevel
	if cfg.Log.Level != "" {
		parsed, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log.level %q: %w", cfg.Log.Level, err)
		}
		level = parsed
	}
	if c.verbose {
		level = log.DebugLevel
	}

	if cfg.Log.File == "" {
		return newLogger(io.Discard, level), func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, level), f.Close, nil
}
