package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazyjson/internal/app"
	"github.com/rebeliceyang/lazyjson/internal/source"
)

// viewOptions are the flags of the root command
type viewOptions struct {
	title    string
	mode     string
	pageSize string
	out      string
}

func (c *CLI) runView(ctx context.Context, args []string, opts viewOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := applyViewFlags(cfg, opts); err != nil {
		return err
	}

	src, err := c.newSource(args)
	if err != nil {
		return err
	}
	doc, err := c.load(ctx, src, cfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := c.sessionLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	title := opts.title
	if title == "" {
		title = src.Name()
	}
	model, err := app.New(cfg, doc, app.Options{Title: title, OutPath: opts.out, Logger: logger})
	if err != nil {
		return err
	}

	teaOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.MouseEnabled {
		teaOpts = append(teaOpts, tea.WithMouseCellMotion())
	}
	// Keys cannot come from stdin once the document has been read from it
	if f, ok := src.(*source.File); ok && f.Path == source.Stdin {
		teaOpts = append(teaOpts, tea.WithInputTTY())
	}

	if _, err := tea.NewProgram(model, teaOpts...).Run(); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}
