package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/rebeliceyang/lazyjson/internal/config"
	"github.com/rebeliceyang/lazyjson/internal/export"
	"github.com/rebeliceyang/lazyjson/internal/source"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newCLI returns a CLI whose config directory is a temp dir
func newCLI(t *testing.T, logs *bytes.Buffer) *CLI {
	t.Helper()
	if logs == nil {
		logs = &bytes.Buffer{}
	}
	c := New(logs, LogInfo)
	c.dataDir = t.TempDir()
	return c
}

// run executes the root command with a minimal config file
func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	cfgPath := writeFile(t, "config.yaml", "ui:\n  theme: default\n")

	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--config", cfgPath))
	err := root.Execute()
	return out.String(), err
}

func TestApplyViewFlags(t *testing.T) {
	tests := []struct {
		name     string
		opts     viewOptions
		wantMode string
		wantSize int
		wantErr  bool
	}{
		{name: "no flags", opts: viewOptions{}, wantMode: "input", wantSize: 50},
		{name: "mode", opts: viewOptions{mode: "table"}, wantMode: "table", wantSize: 50},
		{name: "raw alias", opts: viewOptions{mode: "raw"}, wantMode: "raw", wantSize: 50},
		{name: "page size", opts: viewOptions{pageSize: "10"}, wantMode: "input", wantSize: 10},
		{name: "all", opts: viewOptions{pageSize: "all"}, wantMode: "input", wantSize: 0},
		{name: "bad mode", opts: viewOptions{mode: "grid"}, wantErr: true},
		{name: "bad page size", opts: viewOptions{pageSize: "7"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetDefaults()
			err := applyViewFlags(cfg, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("applyViewFlags() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyViewFlags() error = %v", err)
			}
			if cfg.UI.DefaultMode != tt.wantMode {
				t.Errorf("mode = %q, want %q", cfg.UI.DefaultMode, tt.wantMode)
			}
			if cfg.Data.DefaultPageSize != tt.wantSize {
				t.Errorf("page size = %d, want %d", cfg.Data.DefaultPageSize, tt.wantSize)
			}
		})
	}
}

func TestNewSource(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		c := newCLI(t, nil)
		src, err := c.newSource([]string{"orders.json"})
		if err != nil {
			t.Fatal(err)
		}
		f, ok := src.(*source.File)
		if !ok || f.Path != "orders.json" {
			t.Errorf("newSource() = %#v, want file orders.json", src)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		c := newCLI(t, nil)
		c.stdin = strings.NewReader(`{"a":1}`)
		src, err := c.newSource(nil)
		if err != nil {
			t.Fatal(err)
		}
		if src.Name() != "stdin" {
			t.Errorf("Name() = %q, want stdin", src.Name())
		}
		doc, err := c.load(t.Context(), src, config.GetDefaults())
		if err != nil {
			t.Fatalf("load() error = %v", err)
		}
		if doc.String() != `{"a":1}` {
			t.Errorf("doc = %s", doc.String())
		}
	})

	t.Run("postgres", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/app")
		c := newCLI(t, nil)
		c.pg = pgFlags{query: "SELECT doc FROM events", allRows: true, timeout: time.Second}

		src, err := c.newSource([]string{"ignored.json"})
		if err != nil {
			t.Fatal(err)
		}
		pg, ok := src.(*source.Postgres)
		if !ok {
			t.Fatalf("newSource() = %T, want *source.Postgres", src)
		}
		if pg.Config.DSN != "postgres://localhost/app" {
			t.Errorf("DSN = %q, want DATABASE_URL", pg.Config.DSN)
		}
		if !pg.AllRows || pg.Timeout != time.Second {
			t.Errorf("flags not carried over: %+v", pg)
		}
	})
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := c.loadConfig(); err == nil {
		t.Error("loadConfig() should fail for a missing --config file")
	}
}

func TestLoadConfigDateDetection(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.configPath = writeFile(t, "config.yaml", "data:\n  max_length: 80\n")
	c.dateDetection = true

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if !cfg.Data.DateDetection {
		t.Error("--date-detection should enable date detection")
	}
	if cfg.Data.MaxLength != 80 {
		t.Errorf("MaxLength = %d, want 80", cfg.Data.MaxLength)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, out string
		want        export.Format
		wantErr     bool
	}{
		{"", "", export.FormatJSON, false},
		{"", "rows.csv", export.FormatCSV, false},
		{"yaml", "rows.csv", export.FormatYAML, false},
		{"xml", "", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.format, tt.out)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveFormat(%q, %q) error = %v", tt.format, tt.out, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.format, tt.out, got, tt.want)
		}
	}
}

func TestExportCommandToStdout(t *testing.T) {
	in := writeFile(t, "rows.json", `[{"a":1,"b":"x"},{"a":2}]`)
	c := newCLI(t, nil)

	out, err := run(t, c, "export", in, "--format", "csv")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if want := "a,b\n1,x\n2,\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestExportCommandToFile(t *testing.T) {
	in := writeFile(t, "doc.json", `{"name": "Ada", "tags": ["x"]}`)
	dest := filepath.Join(t.TempDir(), "doc.json")
	var logs bytes.Buffer
	c := newCLI(t, &logs)

	if _, err := run(t, c, "export", in, "-o", dest); err != nil {
		t.Fatalf("export error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"name":"Ada","tags":["x"]}`+"\n" {
		t.Errorf("exported = %q", data)
	}
	if !strings.Contains(logs.String(), "Exported") {
		t.Errorf("logs = %q, want export progress", logs.String())
	}
}

func TestExportCommandNotTabular(t *testing.T) {
	in := writeFile(t, "scalar.json", `42`)
	c := newCLI(t, nil)

	if _, err := run(t, c, "export", in, "--format", "csv"); err == nil {
		t.Error("csv export of a scalar should fail")
	}
}

func TestThemesCommand(t *testing.T) {
	c := newCLI(t, nil)
	out, err := run(t, c, "themes")
	if err != nil {
		t.Fatalf("themes error = %v", err)
	}
	for _, name := range []string{"catppuccin-mocha", "default"} {
		if !strings.Contains(out, name) {
			t.Errorf("themes output %q missing %q", out, name)
		}
	}
}

func TestRecentCommand(t *testing.T) {
	good := writeFile(t, "orders.json", `[1, 2, 3]`)
	bad := writeFile(t, "broken.json", `{"a":`)
	c := newCLI(t, nil)

	out, err := run(t, c, "recent")
	if err != nil {
		t.Fatalf("recent error = %v", err)
	}
	if !strings.Contains(out, "No documents opened yet") {
		t.Errorf("empty history output = %q", out)
	}

	if _, err := run(t, c, "export", good); err != nil {
		t.Fatalf("export error = %v", err)
	}
	if _, err := run(t, c, "export", bad); err == nil {
		t.Fatal("export of malformed JSON should fail")
	}

	out, err = run(t, c, "recent")
	if err != nil {
		t.Fatalf("recent error = %v", err)
	}
	for _, want := range []string{"orders.json", "broken.json", "file", "3", "ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("recent output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, c, "recent", "--search", "orders")
	if err != nil {
		t.Fatalf("recent --search error = %v", err)
	}
	if strings.Contains(out, "broken.json") {
		t.Errorf("search should filter entries:\n%s", out)
	}
}

func TestHistoryDisabled(t *testing.T) {
	c := newCLI(t, nil)
	cfg := config.GetDefaults()
	cfg.History.Enabled = false

	src := source.NewStdin(strings.NewReader(`{}`))
	if _, err := c.load(t.Context(), src, cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(c.dataDir, "history.db")); !os.IsNotExist(err) {
		t.Errorf("history.db should not exist when history is disabled, stat err = %v", err)
	}
}

func TestQueriesCommands(t *testing.T) {
	keyring.MockInit()
	c := newCLI(t, nil)

	if _, err := run(t, c, "queries", "add", "events"); err == nil {
		t.Error("queries add without --pg-query should fail")
	}

	_, err := run(t, c, "queries", "add", "events",
		"--pg-dsn", "postgres://ada:pw@db.local:5432/app",
		"--pg-query", "SELECT doc FROM events",
		"--tag", "audit")
	if err != nil {
		t.Fatalf("queries add error = %v", err)
	}

	out, err := run(t, c, "queries", "list", "audit")
	if err != nil {
		t.Fatalf("queries list error = %v", err)
	}
	for _, want := range []string{"events", "ada@db.local:5432/app", "SELECT doc FROM events"} {
		if !strings.Contains(out, want) {
			t.Errorf("queries list missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "pw@") {
		t.Errorf("password leaked into listing:\n%s", out)
	}

	c.pg = pgFlags{saved: "EVENTS", allRows: true, timeout: time.Second}
	src, err := c.newSource(nil)
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}
	pg, ok := src.(*source.Postgres)
	if !ok {
		t.Fatalf("newSource() = %T, want *source.Postgres", src)
	}
	if pg.Config.Password != "pw" || pg.Query != "SELECT doc FROM events" || !pg.AllRows {
		t.Errorf("saved source = %+v", pg)
	}
	c.pg = pgFlags{}

	if _, err := run(t, c, "queries", "rm", "events"); err != nil {
		t.Fatalf("queries rm error = %v", err)
	}
	out, err = run(t, c, "queries", "list")
	if err != nil {
		t.Fatalf("queries list error = %v", err)
	}
	if !strings.Contains(out, "No saved queries") {
		t.Errorf("list after remove = %q", out)
	}

	c.pg = pgFlags{saved: "events"}
	if _, err := c.newSource(nil); err == nil {
		t.Error("unknown saved query should fail")
	}
}
