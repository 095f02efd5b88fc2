package commands

import (
	"fmt"

	"portalextract/internal/validate"

	"github.com/spf13/cobra"
)

var (
	parseCharset *string
	parseFormat  *string
)

func init() {
	parseCharset = parseCmd.Flags().String("charset", "", "Decode the input from this charset, \"auto\" sniffs it.")
	parseFormat = parseCmd.Flags().StringP("format", "f", "", "Output format, json or yaml.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <portal> <page> [file|-]",
	Short: "Extracts a record out of a single page and prints it.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) == 3 {
			path = args[2]
		}
		charset := config.Charset
		if cmd.Flags().Changed("charset") {
			charset = *parseCharset
		}
		format := config.Format
		if cmd.Flags().Changed("format") {
			format = *parseFormat
		}

		input, err := readInput(cmd.InOrStdin(), path, charset)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		record, err := reg.Run(cmd.Context(), args[0], args[1], input)
		if issues, ok := validate.IssuesOf(err); ok {
			for _, issue := range issues {
				fmt.Fprintln(cmd.ErrOrStderr(), issue.String())
			}
			return errFailed
		}
		if err != nil {
			return err
		}
		return writeRecord(cmd.OutOrStdout(), format, record)
	},
}
