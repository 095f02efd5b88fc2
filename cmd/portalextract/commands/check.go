package commands

import (
	"fmt"

	"portalextract/internal/fixture"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	checkDir  *string
	checkDiff *bool
)

func init() {
	checkDir = checkCmd.Flags().String("dir", "", "The fixture directory, defaults to fixtures_dir from the config.")
	checkDiff = checkCmd.Flags().Bool("diff", false, "Print the full difference of failing fixtures.")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [--dir <path/to/testdata>]",
	Short: "Runs every fixture and compares the output with the expected records.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.FixturesDir
		if cmd.Flags().Changed("dir") {
			dir = *checkDir
		}

		cases, err := fixture.Discover(dir)
		if err != nil {
			return fmt.Errorf("discover fixtures: %w", err)
		}
		outcomes := fixture.RunAll(cmd.Context(), reg, cases)

		failed := 0
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Fixture", "Result", "Detail"})
		for _, o := range outcomes {
			result := "pass"
			if !o.Ok {
				result = "FAIL"
				failed++
			}
			t.AppendRow(table.Row{o.Case.String(), result, o.Summary()})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d", len(outcomes)-failed, len(outcomes)), ""})
		t.Render()

		if *checkDiff {
			for _, o := range outcomes {
				if o.Diff == "" || o.Ok {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s (-expected +actual):\n%s", o.Case.String(), o.Diff)
			}
		}

		if failed > 0 {
			return errFailed
		}
		return nil
	},
}
