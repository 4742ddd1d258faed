package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
)

// ConnectionConfig describes a PostgreSQL server. A DSN, when set, wins
// over the individual fields.
type ConnectionConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnectionString returns the libpq string pgx is given
func (c ConnectionConfig) ConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s database=%s sslmode=%s",
		c.Host,
		port,
		c.User,
		c.Database,
		sslMode,
	)
	if c.Password != "" {
		connStr += fmt.Sprintf(" password=%s", c.Password)
	}
	return connStr
}

// ParseDSN splits a URL or keyword/value connection string into its fields
func ParseDSN(dsn string) (ConnectionConfig, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return ConnectionConfig{}, apperrors.NewInputError("invalid connection string", err)
	}
	return ConnectionConfig{
		Host:     cfg.Host,
		Port:     int(cfg.Port),
		Database: cfg.Database,
		User:     cfg.User,
		Password: cfg.Password,
		SSLMode:  sslMode(dsn),
	}, nil
}

// sslMode pulls sslmode out of dsn, pgx only keeps the resulting TLS config
func sslMode(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if u, err := url.Parse(dsn); err == nil {
			return u.Query().Get("sslmode")
		}
		return ""
	}
	for _, field := range strings.Fields(dsn) {
		if v, ok := strings.CutPrefix(field, "sslmode="); ok {
			return v
		}
	}
	return ""
}

// PoolConfig parses the connection string and applies the pool settings
func (c ConnectionConfig) PoolConfig() (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(c.ConnectionString())
	if err != nil {
		return nil, apperrors.NewInputError("failed to parse connection config", err)
	}

	// One query per session, no need for more
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	return poolConfig, nil
}

// Postgres loads a document from a query. The first column must hold json,
// jsonb or text. By default only the first row is used; with AllRows every
// row becomes one element of a top-level array.
type Postgres struct {
	Config  ConnectionConfig
	Query   string
	Args    []any
	AllRows bool
	Timeout time.Duration
}

func (p *Postgres) Name() string {
	cfg, err := pgx.ParseConfig(p.Config.ConnectionString())
	if err != nil || cfg.Database == "" {
		return "postgres"
	}
	return fmt.Sprintf("%s@%s", cfg.Database, cfg.Host)
}

func (p *Postgres) Load(ctx context.Context, opts ...jsonb.DecodeOption) (*jsonb.Value, error) {
	if p.Query == "" {
		return nil, apperrors.NewInputError("no query given", apperrors.ErrEmptyInput)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	poolConfig, err := p.Config.PoolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperrors.NewInputError("failed to create connection pool", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, p.Query, p.Args...)
	if err != nil {
		return nil, apperrors.NewInputError("query failed", err)
	}
	texts, err := pgx.CollectRows(rows, firstColumn)
	if err != nil {
		return nil, apperrors.NewInputError("cannot read query result", err)
	}
	return Assemble(texts, p.AllRows, opts...)
}

// firstColumn scans the first column as raw text. Further columns are
// ignored.
func firstColumn(row pgx.CollectableRow) ([]byte, error) {
	values := row.RawValues()
	if len(values) == 0 {
		return nil, fmt.Errorf("query returned no columns")
	}
	dest := make([]any, len(values))
	var text []byte
	dest[0] = &text
	for i := 1; i < len(dest); i++ {
		dest[i] = new(any)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return text, nil
}

// Assemble parses query results into one document: the first row alone, or
// an array of every row when allRows is set. SQL NULL decodes as null.
func Assemble(texts [][]byte, allRows bool, opts ...jsonb.DecodeOption) (*jsonb.Value, error) {
	if len(texts) == 0 {
		return nil, apperrors.NewInputError("query returned no rows", apperrors.ErrEmptyInput)
	}
	if !allRows {
		return parseCell(texts[0], 0, opts)
	}

	arr := jsonb.NewArray()
	for i, text := range texts {
		v, err := parseCell(text, i, opts)
		if err != nil {
			return nil, err
		}
		arr.Append(v)
	}
	return arr, nil
}

func parseCell(text []byte, row int, opts []jsonb.DecodeOption) (*jsonb.Value, error) {
	if text == nil {
		return jsonb.Null(), nil
	}
	v, err := jsonb.Parse(string(text), opts...)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("row %d does not hold JSON", row+1), err)
	}
	return v, nil
}
