package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewBatchCommand creates the batch command.
func NewBatchCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <job-file|->",
		Short: "Run jobs concurrently",
		Long: `Run jobs on a bounded worker pool (--workers).

Results are reported in input order. A safety block aborts the batch:
jobs that have not started yet are reported as cancelled.`,
		Example: `  cutlaw batch jobs.yaml --workers 8 -o json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := openJobs(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			jobs, err := DecodeJobs(rc)
			if err != nil {
				return err
			}

			app.Logger.Info("starting batch", "jobs", len(jobs), "workers", app.Config.Workers)
			results, batchErr := app.RunBatch(cmd.Context(), jobs)
			err = render(cmd.OutOrStdout(), app.Config.Output, results, func(w io.Writer) error {
				return renderBatchTable(w, results, app.Latency.Stats())
			})
			if err != nil {
				return err
			}
			if batchErr != nil {
				return fmt.Errorf("batch aborted: %w", batchErr)
			}
			return failures(results)
		},
	}
	return cmd
}
