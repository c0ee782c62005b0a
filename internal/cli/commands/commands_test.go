package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexshd/cutlaw/expr"
	"github.com/alexshd/cutlaw/internal/cli/config"
)

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func writeJobs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const jobsYAML = `
- id: rpm
  algorithm: speed_feed
  action: kernel
  params: {cutting_speed: 200, feed_per_tooth: 0.1, axial_depth: 2, radial_depth: 5, tool_diameter: 10, number_of_teeth: 4}
- id: finish
  algorithm: surface_finish
  params: {operation: turning, feed: 0.2, nose_radius: 0.8}
`

const blockedYAML = `
id: broken
algorithm: speed_feed
action: kernel
params: {cutting_speed: 200, feed_per_tooth: 0.1, axial_depth: 2, radial_depth: 5, tool_diameter: 0, number_of_teeth: 4}
`

func TestCommandMetadata(t *testing.T) {
	app := NewApp()

	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewVersionCommand("1.2.3"), "version", nil},
		{NewAlgorithmsCommand(app), "algorithms", []string{"safety-class"}},
		{NewRunCommand(app), "run [job-file|-]", []string{"algorithm", "action", "params"}},
		{NewBatchCommand(app), "batch <job-file|->", nil},
		{NewEvalCommand(app), "eval <expression>", []string{"var", "functions"}},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			for _, name := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(name), "flag %s", name)
			}
		})
	}

	run := NewRunCommand(app)
	assert.Equal(t, "a", run.Flags().Lookup("algorithm").Shorthand)
	assert.Equal(t, ActionCalculate, run.Flags().Lookup("action").DefValue)
	assert.Contains(t, NewAlgorithmsCommand(app).Aliases, "ls")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand("1.2.3"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cutlaw v1.2.3\n"))
	assert.Contains(t, out, "Machining physics calculations")
}

func TestAlgorithmsCommand(t *testing.T) {
	app := testApp(t)

	out, err := execute(t, NewAlgorithmsCommand(app), "")
	require.NoError(t, err)
	assert.Contains(t, out, "kienzle_cutting_force")
	assert.Contains(t, out, "Critical")
	assert.Contains(t, out, "(9 algorithms)")

	app.Config.Output = config.OutputJSON
	out, err = execute(t, NewAlgorithmsCommand(app), "", "--safety-class", "critical")
	require.NoError(t, err)
	var metas []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &metas))
	require.Len(t, metas, 4)
	for _, m := range metas {
		assert.Equal(t, "critical", m["safety_class"])
	}

	_, err = execute(t, NewAlgorithmsCommand(app), "", "--safety-class", "vital")
	assert.ErrorContains(t, err, `invalid safety class "vital"`)
}

func TestRunCommand_Inline(t *testing.T) {
	app := testApp(t)

	out, err := execute(t, NewRunCommand(app), "",
		"-a", "speed_feed",
		"-p", "{cutting_speed: 200, feed_per_tooth: 0.1, axial_depth: 2, radial_depth: 5, tool_diameter: 10, number_of_teeth: 4}")
	require.NoError(t, err)
	assert.Contains(t, out, "speed_feed/calculate  OK")
	assert.Contains(t, out, "spindle_speed")
	assert.Contains(t, out, "6,366.1977")
}

func TestRunCommand_InlineJSON(t *testing.T) {
	app := testApp(t)
	app.Config.Output = config.OutputJSON

	out, err := execute(t, NewRunCommand(app), "",
		"--algorithm", "speed_feed", "--action", "validate",
		"--params", `{"cutting_speed": -5, "feed_per_tooth": 0.1, "axial_depth": 2, "radial_depth": 5, "tool_diameter": 10, "number_of_teeth": 4}`)
	require.ErrorIs(t, err, ErrJobsFailed)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, StatusInvalid, res["status"])
	assert.Equal(t, "validate", res["action"])
}

func TestRunCommand_File(t *testing.T) {
	app := testApp(t)

	out, err := execute(t, NewRunCommand(app), "", writeJobs(t, jobsYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "rpm  speed_feed/kernel  OK")
	assert.Contains(t, out, "finish  surface_finish/calculate")
	assert.Contains(t, out, "iso_grade")
}

func TestRunCommand_Stdin(t *testing.T) {
	app := testApp(t)
	app.Config.Output = config.OutputYAML

	out, err := execute(t, NewRunCommand(app), blockedYAML, "-")
	require.ErrorIs(t, err, ErrJobsFailed)
	assert.Contains(t, out, "status: blocked")
	assert.Contains(t, out, "tool_diameter")
}

func TestRunCommand_Errors(t *testing.T) {
	app := testApp(t)

	_, err := execute(t, NewRunCommand(app), "")
	assert.ErrorContains(t, err, "a job file or --algorithm is required")

	_, err = execute(t, NewRunCommand(app), "", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open job file")

	_, err = execute(t, NewRunCommand(app), "", "-a", "speed_feed", "-p", "[1, 2")
	assert.ErrorContains(t, err, "invalid --params")
}

func TestBatchCommand(t *testing.T) {
	app := testApp(t)

	out, err := execute(t, NewBatchCommand(app), "", writeJobs(t, jobsYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "rpm")
	assert.Contains(t, out, "finish")
	assert.Contains(t, out, "(2 jobs:")
	assert.Contains(t, out, "latency p50")

	app.Config.Workers = 1
	_, err = execute(t, NewBatchCommand(app), "", writeJobs(t, blockedYAML+"---\n"+jobsYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch aborted")

	_, err = execute(t, NewBatchCommand(app), "")
	assert.Error(t, err, "a job file is required")
}

func TestEvalCommand(t *testing.T) {
	app := testApp(t)

	out, err := execute(t, NewEvalCommand(app), "", "vc * 1000 / (pi * d)", "--var", "vc=200", "--var", "d=10")
	require.NoError(t, err)
	assert.Equal(t, "6,366.1977\n", out)

	app.Config.Output = config.OutputJSON
	out, err = execute(t, NewEvalCommand(app), "", "2 ^ 10")
	require.NoError(t, err)
	var res EvalResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1024.0, res.Value)
	assert.Equal(t, "2 ^ 10", res.Expression)
}

func TestEvalCommand_Functions(t *testing.T) {
	out, err := execute(t, NewEvalCommand(testApp(t)), "", "--functions")
	require.NoError(t, err)
	assert.Contains(t, out, "sqrt")
	assert.Contains(t, out, "atan2")
}

func TestEvalCommand_Errors(t *testing.T) {
	app := testApp(t)

	_, err := execute(t, NewEvalCommand(app), "", "vc * 2")
	assert.ErrorIs(t, err, expr.ErrUnknownIdentifier)

	_, err = execute(t, NewEvalCommand(app), "", "x + 1", "--var", "x=fast")
	assert.ErrorContains(t, err, "variable x")

	_, err = execute(t, NewEvalCommand(app), "", "system(1)")
	assert.ErrorIs(t, err, expr.ErrUnknownFunction)

	_, err = execute(t, NewEvalCommand(app), "")
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1500, "1,500"},
		{6366.19772, "6,366.1977"},
		{0.25, "0.25"},
		{-2.5, "-2.5"},
		{1.5e-6, "1.5e-06"},
		{2.5e9 + 0.5, "2.5e+09"},
		{3.2e12, "3,200,000,000,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "%g", tt.in)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, "[1, 2.5]", formatValue([]any{1.0, 2.5}))
	assert.Equal(t, "{a=1 b=x}", formatValue(map[string]any{"b": "x", "a": 1.0}))

	long := make([]any, 10)
	for i := range long {
		long[i] = float64(i)
	}
	assert.Contains(t, formatValue(long), "(10 total)")
}
