package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/config"
	"github.com/rebeliceyang/lazyjson/internal/history"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/source"
)

func (c *CLI) historyPath(cfg *config.Config) (string, error) {
	if cfg.History.File != "" {
		return cfg.History.File, nil
	}
	dir, err := c.configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

func (c *CLI) openHistory(cfg *config.Config) (*history.Store, error) {
	path, err := c.historyPath(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return history.NewStore(path)
}

// record adds a load attempt to the history. Failures only warn.
func (c *CLI) record(cfg *config.Config, src source.Source, start time.Time, doc *jsonb.Value, loadErr error) {
	if !cfg.History.Enabled {
		return
	}
	store, err := c.openHistory(cfg)
	if err != nil {
		c.Logger.Warn("history unavailable", "err", err)
		return
	}
	defer store.Close()

	entry := history.Entry{
		Source:   src.Name(),
		Kind:     sourceKind(src),
		OpenedAt: start,
		Duration: time.Since(start),
		Success:  loadErr == nil,
	}
	if loadErr != nil {
		entry.ErrorMessage = loadErr.Error()
	} else {
		entry.Documents = documentCount(doc)
	}
	if err := store.Add(entry); err != nil {
		c.Logger.Warn("could not record history", "err", err)
	}
}

func sourceKind(src source.Source) string {
	switch s := src.(type) {
	case *source.Postgres:
		return "postgres"
	case *source.File:
		if s.Path == source.Stdin {
			return "stdin"
		}
		return "file"
	default:
		return "text"
	}
}

// documentCount is the top-level array length, or 1 for any other document
func documentCount(doc *jsonb.Value) int {
	if doc.IsArray() {
		return doc.Len()
	}
	return 1
}

func (c *CLI) recentCommand() *cobra.Command {
	var (
		limit  int
		search string
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.openHistory(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []history.Entry
			if search != "" {
				entries, err = store.Search(search, limit)
			} else {
				entries, err = store.GetRecent(limit)
			}
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No documents opened yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	cmd.Flags().StringVar(&search, "search", "", "only entries whose source contains this text")
	return cmd
}

func renderHistory(entries []history.Entry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("OPENED", "KIND", "SOURCE", "DOCS", "TIME", "STATUS")
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = e.ErrorMessage
		}
		t.Row(
			e.OpenedAt.Local().Format("2006-01-02 15:04"),
			e.Kind,
			e.Source,
			strconv.Itoa(e.Documents),
			e.Duration.String(),
			status,
		)
	}
	return t.String()
}
