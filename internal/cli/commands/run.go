package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// openJobs opens a job file, or stdin when path is "-".
func openJobs(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job file: %w", err)
	}
	return f, nil
}

// inlineJob builds a job from --algorithm/--action/--params.
func inlineJob(algorithm, action, params string) ([]Job, error) {
	job := Job{Algorithm: algorithm, Action: action}
	if strings.TrimSpace(params) != "" {
		if err := yaml.Unmarshal([]byte(params), &job.Params); err != nil {
			return nil, fmt.Errorf("invalid --params: %w", err)
		}
	}
	jobs := []Job{job}
	normalize(jobs)
	return jobs, nil
}

// NewRunCommand creates the run command.
func NewRunCommand(app *App) *cobra.Command {
	var (
		algorithm string
		action    string
		params    string
	)

	cmd := &cobra.Command{
		Use:   "run [job-file|-]",
		Short: "Run jobs one after another",
		Long: `Run one or more jobs sequentially through the governor.

A job file is a YAML (or JSON) stream of {id, algorithm, action, params}
documents; a document may also be a list of jobs. Use "-" to read stdin.
Without a file, the job is built from --algorithm, --action and --params.

The command exits non-zero if any job is invalid, halted, blocked or fails.`,
		Example: `  # Run jobs from a file
  cutlaw run jobs.yaml

  # Hard-gated spindle speed for one job
  cutlaw run --algorithm speed_feed --action kernel \
    --params '{cutting_speed: 200, feed_per_tooth: 0.1, axial_depth: 2, radial_depth: 5, tool_diameter: 10, number_of_teeth: 4}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				jobs []Job
				err  error
			)
			switch {
			case len(args) == 1:
				var rc io.ReadCloser
				rc, err = openJobs(cmd, args[0])
				if err != nil {
					return err
				}
				defer func() { _ = rc.Close() }()
				jobs, err = DecodeJobs(rc)
			case algorithm != "":
				jobs, err = inlineJob(algorithm, action, params)
			default:
				return errors.New("a job file or --algorithm is required")
			}
			if err != nil {
				return err
			}

			app.Logger.Debug("running jobs", "count", len(jobs))
			results := make([]JobResult, 0, len(jobs))
			for _, job := range jobs {
				results = append(results, app.RunJob(cmd.Context(), job))
			}
			if err := renderResults(cmd.OutOrStdout(), app.Config.Output, results); err != nil {
				return err
			}
			return failures(results)
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Algorithm ID for an inline job")
	cmd.Flags().StringVar(&action, "action", ActionCalculate, "Inline job action (validate|calculate|kernel)")
	cmd.Flags().StringVarP(&params, "params", "p", "", "Inline job params as a YAML or JSON mapping")
	_ = cmd.RegisterFlagCompletionFunc("algorithm", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var ids []string
		for _, m := range app.Registry.List() {
			ids = append(ids, m.ID)
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func renderResults(w io.Writer, format string, results []JobResult) error {
	if len(results) == 1 {
		return render(w, format, results[0], func(w io.Writer) error {
			return renderJobTable(w, results[0])
		})
	}
	return render(w, format, results, func(w io.Writer) error {
		for i, r := range results {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			if err := renderJobTable(w, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// failures wraps ErrJobsFailed with the count of failed jobs.
func failures(results []JobResult) error {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", ErrJobsFailed, n, len(results))
}
