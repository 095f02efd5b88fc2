package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pagesCmd)
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Prints every page that can be extracted.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Portal", "Page", "Input"})
		for _, p := range reg.Pages() {
			t.AppendRow(table.Row{p.Portal, p.Name, p.Input})
		}
		t.Render()
	},
}
