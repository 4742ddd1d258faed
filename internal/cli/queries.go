package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/favorites"
)

func (c *CLI) queriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Manage saved PostgreSQL queries",
		Long: `Saved queries remember a connection and a query under a name, to be
opened again with --pg-saved NAME. Passwords are kept in the OS keyring.`,
	}
	cmd.AddCommand(c.queriesListCommand())
	cmd.AddCommand(c.queriesAddCommand())
	cmd.AddCommand(c.queriesRemoveCommand())
	return cmd
}

func (c *CLI) queriesListCommand() *cobra.Command {
	var mostUsed int

	cmd := &cobra.Command{
		Use:   "list [search]",
		Short: "List saved queries, optionally filtered by name, description or tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.savedQueries()
			if err != nil {
				return err
			}

			var favs []favorites.Favorite
			switch {
			case mostUsed > 0:
				favs = m.GetMostUsed(mostUsed)
			case len(args) == 1:
				favs = m.Search(args[0])
			default:
				favs = m.GetAll()
			}
			if len(favs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved queries")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFavorites(favs))
			return nil
		},
	}
	cmd.Flags().IntVar(&mostUsed, "top", 0, "show only the N most used queries")
	return cmd
}

func (c *CLI) queriesAddCommand() *cobra.Command {
	var (
		description string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add NAME --pg-query QUERY",
		Short: "Save the --pg-query and --pg-dsn flags under NAME",
		Example: `  lazyjson queries add events --pg-dsn postgres://ada@db/app \
    --pg-query "SELECT doc FROM events ORDER BY id DESC LIMIT 100" --pg-all-rows`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.pg.query == "" {
				return fmt.Errorf("--pg-query is required")
			}
			m, err := c.savedQueries()
			if err != nil {
				return err
			}
			fav, err := m.Add(args[0], description, c.pg.query, c.pg.connection(), c.pg.allRows, tags)
			if err != nil {
				return err
			}
			c.Logger.Info("Saved query", "name", fav.Name, "id", fav.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "free text shown by 'queries list'")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag for searching, repeatable")
	return cmd
}

func (c *CLI) queriesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a saved query and its stored password",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.savedQueries()
			if err != nil {
				return err
			}
			if err := m.Delete(args[0]); err != nil {
				return err
			}
			c.Logger.Info("Removed query", "name", args[0])
			return nil
		},
	}
}

func renderFavorites(favs []favorites.Favorite) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "SERVER", "QUERY", "USED", "TAGS")
	for _, f := range favs {
		conn := f.Connection
		server := fmt.Sprintf("%s@%s:%d/%s", conn.User, conn.Host, conn.Port, conn.Database)
		query := f.Query
		if f.AllRows {
			query += " (all rows)"
		}
		t.Row(f.Name, server, query, strconv.Itoa(f.UsageCount), strings.Join(f.Tags, ","))
	}
	return t.String()
}
