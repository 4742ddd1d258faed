package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/rebeliceyang/lazyjson/internal/config"
	"github.com/rebeliceyang/lazyjson/internal/credentials"
	"github.com/rebeliceyang/lazyjson/internal/favorites"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/source"
)

// pgFlags select a PostgreSQL query as the document source
type pgFlags struct {
	dsn     string
	query   string
	saved   string
	allRows bool
	timeout time.Duration
}

func (f *pgFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.dsn, "pg-dsn", "", "PostgreSQL connection string (also read from DATABASE_URL)")
	fs.StringVar(&f.query, "pg-query", "", "query whose first column holds the JSON document")
	fs.StringVar(&f.saved, "pg-saved", "", "run a query saved with 'lazyjson queries add'")
	fs.BoolVar(&f.allRows, "pg-all-rows", false, "load every row as an array instead of the first row")
	fs.DurationVar(&f.timeout, "pg-timeout", 30*time.Second, "query timeout")
}

func (f *pgFlags) enabled() bool {
	return f.query != "" || f.saved != ""
}

// connection returns the --pg-dsn flag, falling back to DATABASE_URL
func (f *pgFlags) connection() source.ConnectionConfig {
	dsn := f.dsn
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	return source.ConnectionConfig{DSN: dsn}
}

// newSource picks the document source from the flags and arguments
func (c *CLI) newSource(args []string) (source.Source, error) {
	if c.pg.saved != "" {
		return c.savedSource(c.pg.saved)
	}
	if c.pg.enabled() {
		return &source.Postgres{
			Config:  c.pg.connection(),
			Query:   c.pg.query,
			AllRows: c.pg.allRows,
			Timeout: c.pg.timeout,
		}, nil
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	f := source.NewFile(path)
	if f.Path == source.Stdin {
		f = source.NewStdin(c.stdin)
	}
	return f, nil
}

func (c *CLI) savedQueries() (*favorites.Manager, error) {
	dir, err := c.configDir()
	if err != nil {
		return nil, err
	}
	return favorites.NewManager(dir, credentials.NewPasswordStore())
}

func (c *CLI) savedSource(name string) (source.Source, error) {
	m, err := c.savedQueries()
	if err != nil {
		return nil, err
	}
	fav, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	src, err := m.Source(fav, c.pg.timeout)
	if err != nil {
		return nil, err
	}
	if c.pg.allRows {
		src.AllRows = true
	}
	if err := m.RecordUsage(fav.ID); err != nil {
		c.Logger.Warn("could not record query usage", "err", err)
	}
	return src, nil
}

// configDir is where saved queries and the default history live
func (c *CLI) configDir() (string, error) {
	if c.dataDir != "" {
		return c.dataDir, nil
	}
	dir, err := config.GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return dir, nil
}

// load reads the document with the decode options the config asks for and
// records the attempt in the history
func (c *CLI) load(ctx context.Context, src source.Source, cfg *config.Config) (*jsonb.Value, error) {
	p := newProgress(c.Logger)
	doc, err := src.Load(ctx, cfg.ParseOptions()...)
	c.record(cfg, src, p.start, doc, err)
	if err != nil {
		return nil, err
	}
	p.done("Loaded " + src.Name())
	return doc, nil
}
