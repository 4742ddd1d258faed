package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/export"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

func (c *CLI) exportCommand() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Convert a document to CSV, JSON or YAML without opening the viewer",
		Long: `Export reads a document like the viewer does and writes it in another format.

CSV uses the table projection: one column per key, one line per element.`,
		Example: `  lazyjson export orders.json --format csv
  lazyjson export --pg-query "SELECT doc FROM events" --pg-all-rows -o events.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			src, err := c.newSource(args)
			if err != nil {
				return err
			}
			doc, err := c.load(cmd.Context(), src, cfg)
			if err != nil {
				return err
			}

			if out == "" {
				return export.Write(cmd.OutOrStdout(), doc, f)
			}
			p := newProgress(c.Logger)
			if err := export.ExportToFile(doc, out, f); err != nil {
				return err
			}
			p.done(fmt.Sprintf("Exported %s to %s", src.Name(), out))
			return nil
		},
	}

	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+strings.Join(names, ", ")+" (default: from --out, else json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

// resolveFormat prefers an explicit --format, then the --out extension
func resolveFormat(format, out string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if out != "" {
		return export.FormatForPath(out), nil
	}
	return export.FormatJSON, nil
}

func (c *CLI) themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the color themes usable as ui.theme",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range theme.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
