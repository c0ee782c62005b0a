package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexshd/cutlaw/expr"
)

// EvalResult is the output of the eval command.
type EvalResult struct {
	Expression string             `json:"expression"`
	Variables  map[string]float64 `json:"variables,omitempty"`
	Value      float64            `json:"value"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(app *App) *cobra.Command {
	var (
		rawVars   map[string]string
		functions bool
	)

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a sandboxed arithmetic expression",
		Long: `Evaluate an arithmetic expression with the restricted evaluator.

Only numbers, bound variables, + - * / % ^, parentheses, the constants pi
and e, and a fixed list of math functions are accepted.`,
		Example: `  cutlaw eval 'vc * 1000 / (pi * d)' --var vc=200 --var d=10
  cutlaw eval --functions`,
		Args: func(cmd *cobra.Command, args []string) error {
			if functions {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if functions {
				_, _ = fmt.Fprintln(out, strings.Join(expr.Functions(), " "))
				return nil
			}

			vars := make(map[string]float64, len(rawVars))
			for name, raw := range rawVars {
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("variable %s: %w", name, err)
				}
				vars[name] = v
			}

			e, err := expr.Parse(args[0])
			if err != nil {
				return err
			}
			value, err := e.Eval(vars)
			if err != nil {
				return err
			}
			app.Logger.Debug("evaluated", "expression", e.String(), "variables", e.Variables())

			res := EvalResult{Expression: e.String(), Variables: vars, Value: value}
			return render(out, app.Config.Output, res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, formatNumber(value))
				return err
			})
		},
	}

	cmd.Flags().StringToStringVar(&rawVars, "var", nil, "Bind a variable (name=value), repeatable")
	cmd.Flags().BoolVar(&functions, "functions", false, "List the allowed functions")
	return cmd
}
