package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/opendata-collector/pkg/collector"
	"github.com/ukaji3/opendata-collector/pkg/collector/output"
)

var (
	runOnly  []string
	runForce bool
	runLocal bool
	runJSON  bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every dataset that is due",
		Args:  cobra.NoArgs,
		RunE:  runCollector,
	}

	cmd.Flags().StringSliceVar(&runOnly, "only", nil, "Process only the named datasets")
	cmd.Flags().BoolVar(&runForce, "force", false, "Ignore update frequencies")
	cmd.Flags().BoolVar(&runLocal, "local", false, "Write to local directories and metadata_store.json instead of the configured backends")
	cmd.Flags().BoolVar(&runJSON, "json", false, "Print the run report as JSON")
	return cmd
}

func runCollector(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, runLocal)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Failed to close backends", zap.Error(err))
		}
	}()

	report := a.collector(collector.WithForce(runForce), collector.WithOnly(runOnly...)).Run(ctx)
	if err := printReport(cmd.OutOrStdout(), report, runJSON); err != nil {
		return err
	}
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d datasets failed", len(failed), len(report.Results))
	}
	return nil
}

func printReport(w io.Writer, report collector.Report, asJSON bool) error {
	if asJSON {
		data, err := output.ToJSON(report, true)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	for _, res := range report.Results {
		line := fmt.Sprintf("%-30s %-18s records=%d", res.Dataset, res.Status, res.Records)
		if res.Error != "" {
			line += "  " + res.Error
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
