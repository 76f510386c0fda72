package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-bestsellers/config"
	"github.com/aluiziolira/go-bestsellers/models"
	"github.com/aluiziolira/go-bestsellers/store"
)

var queryCmd = &cobra.Command{
	Use:   "query [--category <name>] [--sort Rank|Rating|Price|Length] [--dir ASC|DESC]",
	Short: "Print the top books of a category from the scraped database.",
	RunE:  runQuery,
}

func init() {
	def := config.DefaultConfig()
	flags := queryCmd.Flags()
	flags.String("db", def.DBPath, "SQLite database path")
	flags.String("category", store.AllCategories, "Category to show, or All")
	flags.String("sort", store.DefaultSort, "Sort field: Rank, Rating, Price or Length")
	flags.String("dir", "ASC", "Sort direction: ASC or DESC")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	category, _ := flags.GetString("category")
	sort, _ := flags.GetString("sort")
	dir, _ := flags.GetString("dir")

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.Query(cmd.Context(), store.Query{Category: category, Sort: sort, Direction: dir})
	if err != nil {
		return err
	}
	renderRows(os.Stdout, store.ResolveSort(sort), rows)
	return nil
}

func renderRows(w io.Writer, sort string, rows []models.ResultRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Title", "Genre", "Author", sort, "Seller"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Title, r.Genre, r.Author, r.SortValue, r.Seller})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
