package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ukaji3/opendata-collector/pkg/collector/output"
	"github.com/ukaji3/opendata-collector/pkg/collector/parser"
)

var (
	inspectSheet   string
	inspectRange   string
	inspectPreview int
	inspectPretty  bool
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <input.xlsx>",
		Short: "Describe a workbook to help author data_location",
		Long: `inspect lists a workbook's sheets, their used dimensions, defined names and
detected table candidates. With --sheet and --range it prints the cells that
range would extract.`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().StringVar(&inspectSheet, "sheet", "", "Sheet to preview")
	cmd.Flags().StringVar(&inspectRange, "range", "", "Range or defined name to preview")
	cmd.Flags().IntVar(&inspectPreview, "preview", 10, "Rows to print with --range")
	cmd.Flags().BoolVar(&inspectPretty, "pretty", true, "Pretty-print JSON output")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	f, err := parser.OpenFile(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var v any
	if inspectRange != "" {
		if inspectSheet == "" {
			return fmt.Errorf("--range requires --sheet")
		}
		table, err := parser.ExtractFromFile(f, inspectSheet, inspectRange)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}
		v = parser.Preview(table, inspectPreview)
	} else {
		info, err := parser.Inspect(f, filepath.Base(inputPath))
		if err != nil {
			return err
		}
		v = info
	}

	jsonData, err := output.ToJSON(v, inspectPretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}
