package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Prints the configured collection registry.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Collection", "Search Token"})

		for _, col := range config.Crawl.Collections {
			t.AppendRow(table.Row{col.Name, col.SearchName})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
