// Package cli implements the lazyjson command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/config"
	"github.com/rebeliceyang/lazyjson/internal/pagination"
	"github.com/rebeliceyang/lazyjson/internal/view"
)

// Log levels exported for use in main.go
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Version is set at build time
var Version = "dev"

// CLI holds shared state for all commands
type CLI struct {
	Logger *log.Logger

	verbose bool
	stdin   io.Reader
	dataDir string // config directory override, set by tests

	// Shared flags
	configPath    string
	dateDetection bool
	pg            pgFlags
}

// New creates a CLI whose diagnostics go to w
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdin:  os.Stdin,
	}
}

// SetLogLevel updates the logger's level
func (c *CLI) SetLogLevel(level log.Level) {
	c.verbose = level == log.DebugLevel
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command. Run without a subcommand it opens
// the viewer.
func (c *CLI) RootCommand() *cobra.Command {
	var opts viewOptions

	root := &cobra.Command{
		Use:   "lazyjson [file]",
		Short: "lazyjson views and edits JSON documents in the terminal",
		Long: `lazyjson shows a JSON document as indented text, as an expandable tree or
as a table, and keeps every presentation in sync while you edit.

The document is read from a file, from standard input ("-" or no argument),
or from the first column of a PostgreSQL query.`,
		Args:         cobra.MaximumNArgs(1),
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: search the user config dir)")
	pf.BoolVar(&c.dateDetection, "date-detection", false, "parse date strings into date values")
	c.pg.register(pf)

	f := root.Flags()
	f.StringVar(&opts.title, "title", "", "panel title (default: the source name)")
	f.StringVar(&opts.mode, "mode", "", "initial view mode: input, tree or table")
	f.StringVar(&opts.pageSize, "page-size", "", "array elements per page: 10, 25, 50, 100 or all")
	f.StringVarP(&opts.out, "out", "o", "", "file written with Ctrl+W (format from extension)")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.themesCommand())
	root.AddCommand(c.recentCommand())
	root.AddCommand(c.queriesCommand())
	return root
}

// loadConfig reads the config file and applies the shared flags
func (c *CLI) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
		if err != nil {
			return nil, err
		}
	} else if cfg, err = config.Load(); err != nil {
		c.Logger.Warn("could not load config, using defaults", "err", err)
		cfg = config.GetDefaults()
	}

	if c.dateDetection {
		cfg.Data.DateDetection = true
	}
	return cfg, nil
}

// applyViewFlags overrides the config with per-run flags
func applyViewFlags(cfg *config.Config, opts viewOptions) error {
	if opts.mode != "" {
		if _, err := view.ParseMode(opts.mode); err != nil {
			return err
		}
		cfg.UI.DefaultMode = opts.mode
	}
	if opts.pageSize != "" {
		r, err := pagination.ParseResultsPerPage(opts.pageSize)
		if err != nil {
			return err
		}
		cfg.Data.DefaultPageSize = r.Count()
	}
	return cfg.Validate()
}
