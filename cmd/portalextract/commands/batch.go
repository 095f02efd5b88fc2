package commands

import (
	"fmt"
	"time"

	"portalextract/internal/batch"
	"portalextract/internal/store"
	"portalextract/internal/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	batchWorkers *int
	batchDb      *string
	batchCharset *string
)

func init() {
	batchWorkers = batchCmd.Flags().IntP("workers", "w", 0, "The number of files extracted at once.")
	batchDb = batchCmd.Flags().String("db", "", "The sqlite database to write results to.")
	batchCharset = batchCmd.Flags().String("charset", "", "Decode every input from this charset, \"auto\" sniffs it.")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <portal> <page> <files...> [--workers <n>] [--db <path/to/results.db>]",
	Short: "Extracts many pages of the same kind and stores every outcome.",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers := config.Workers
		if cmd.Flags().Changed("workers") {
			workers = *batchWorkers
		}
		dbPath := config.Database
		if cmd.Flags().Changed("db") {
			dbPath = *batchDb
		}
		charset := config.Charset
		if cmd.Flags().Changed("charset") {
			charset = *batchCharset
		}

		db, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		files := args[2:]
		stderr := cmd.ErrOrStderr()
		bar := progressbar.NewOptions(
			len(files),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription(fmt.Sprintf("%s/%s", args[0], args[1])),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(stderr)
			}),
		)

		tel := telemetry.NewScopedAPI("batch", telemetry.SlogAPI{})
		summary, err := batch.Run(cmd.Context(), tel, reg, db, args[0], args[1], files, batch.Options{
			Workers: workers,
			Charset: charset,
			OnDone: func(batch.Item) {
				bar.Add(1)
			},
		})
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Run", "Total", "Ok", "Invalid", "Failed"})
		t.AppendRow(table.Row{summary.Run.Id, summary.Total, summary.Ok, summary.Invalid, summary.Failed})
		t.Render()

		if summary.Ok != summary.Total {
			return errFailed
		}
		return nil
	},
}
