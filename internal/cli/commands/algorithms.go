package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexshd/cutlaw"
)

// NewAlgorithmsCommand creates the algorithms command.
func NewAlgorithmsCommand(app *App) *cobra.Command {
	var safetyClass string

	cmd := &cobra.Command{
		Use:     "algorithms",
		Aliases: []string{"ls"},
		Short:   "List registered algorithms",
		Long: `List every registered algorithm with its safety class and formula.

Critical algorithms also expose a hard-gated kernel (action: kernel).`,
		Example: `  # List everything
  cutlaw algorithms

  # Only algorithms that drive machine motion
  cutlaw algorithms --safety-class critical -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metas := app.Registry.List()
			if safetyClass != "" {
				c := cutlaw.SafetyClass(safetyClass)
				switch c {
				case cutlaw.SafetyCritical, cutlaw.SafetyStandard, cutlaw.SafetyInformational:
				default:
					return fmt.Errorf("invalid safety class %q (want critical, standard or informational)", safetyClass)
				}
				metas = app.Registry.BySafetyClass(c)
			}
			return render(cmd.OutOrStdout(), app.Config.Output, metas, func(w io.Writer) error {
				return renderAlgorithmsTable(w, metas)
			})
		},
	}

	cmd.Flags().StringVar(&safetyClass, "safety-class", "", "Filter by safety class (critical|standard|informational)")
	_ = cmd.RegisterFlagCompletionFunc("safety-class", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"critical", "standard", "informational"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
