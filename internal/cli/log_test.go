package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/rebeliceyang/lazyjson/internal/config"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Info("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("logger output = %q, want it to contain the message", buf.String())
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Loaded orders.json")

	out := buf.String()
	if !strings.Contains(out, "Loaded orders.json (") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestSessionLoggerDiscardsWithoutFile(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cfg := config.GetDefaults()

	logger, closeLog, err := c.sessionLogger(cfg)
	if err != nil {
		t.Fatalf("sessionLogger() error = %v", err)
	}
	defer closeLog()

	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
}

func TestSessionLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazyjson.log")
	c := New(&bytes.Buffer{}, LogInfo)
	cfg := config.GetDefaults()
	cfg.Log.File = path
	cfg.Log.Level = "warn"

	logger, closeLog, err := c.sessionLogger(cfg)
	if err != nil {
		t.Fatalf("sessionLogger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn message missing from log file")
	}
}

func TestSessionLoggerVerboseForcesDebug(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.SetLogLevel(LogDebug)
	cfg := config.GetDefaults()
	cfg.Log.Level = "error"

	logger, closeLog, err := c.sessionLogger(cfg)
	if err != nil {
		t.Fatalf("sessionLogger() error = %v", err)
	}
	defer closeLog()

	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
}

func TestSessionLoggerInvalidLevel(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	cfg := config.GetDefaults()
	cfg.Log.Level = "loud"

	if _, _, err := c.sessionLogger(cfg); err == nil {
		t.Error("sessionLogger() should reject an unknown level")
	}
}
