package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/alexshd/cutlaw"
	"github.com/alexshd/cutlaw/internal/cli/config"
)

// maxListPreview caps how many elements of a list field are shown in a table.
const maxListPreview = 8

var (
	printer    = message.NewPrinter(language.English)
	titleCaser = cases.Title(language.English)
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderYAML round-trips through JSON so the snake_case json tags name the keys.
func renderYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func render(w io.Writer, format string, v any, table func(io.Writer) error) error {
	switch format {
	case config.OutputJSON:
		return renderJSON(w, v)
	case config.OutputYAML:
		return renderYAML(w, v)
	default:
		return table(w)
	}
}

// formatNumber prints v with digit grouping and up to four decimals.
func formatNumber(v float64) string {
	switch {
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return printer.Sprintf("%d", int64(v))
	case math.Abs(v) >= 1e-3 && math.Abs(v) < 1e9:
		return strings.TrimRight(strings.TrimRight(printer.Sprintf("%.4f", v), "0"), ".")
	}
	return fmt.Sprintf("%.4g", v)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return formatNumber(val)
	case bool:
		return fmt.Sprintf("%t", val)
	case string:
		return val
	case []any:
		parts := make([]string, 0, min(len(val), maxListPreview))
		for i, item := range val {
			if i == maxListPreview {
				parts = append(parts, fmt.Sprintf("… (%d total)", len(val)))
				break
			}
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+formatValue(val[k]))
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	return fmt.Sprint(v)
}

// flatten converts an output struct into sorted key/value rows using its json shape.
func flatten(v any) ([][2]string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "warnings" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{k, formatValue(fields[k])})
	}
	return rows, nil
}

func renderJobTable(w io.Writer, res JobResult) error {
	_, _ = fmt.Fprintf(w, "%s  %s/%s  %s\n", res.ID, res.Algorithm, res.Action, strings.ToUpper(res.Status))
	if res.Reason != "" && res.Status != StatusOK {
		_, _ = fmt.Fprintln(w, res.Reason)
	}
	if res.Error != "" && res.Error != res.Reason {
		_, _ = fmt.Fprintf(w, "error: %s\n", res.Error)
	}

	if res.Validation != nil && len(res.Validation.Issues) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Field", "Severity", "Message"})
		for _, issue := range res.Validation.Issues {
			t.AppendRow(table.Row{issue.Field, issue.Severity, issue.Message})
		}
		t.Render()
	}

	if res.Output != nil {
		rows, err := flatten(res.Output)
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Field", "Value"})
		for _, r := range rows {
			t.AppendRow(table.Row{r[0], r[1]})
		}
		t.Render()
	}

	for _, warning := range res.Warnings {
		_, _ = fmt.Fprintf(w, "⚠ %s\n", warning)
	}
	return nil
}

func renderBatchTable(w io.Writer, results []JobResult, latency LatencyStats) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Job", "Algorithm", "Action", "Status", "Warnings", "Duration"})
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status]++
		t.AppendRow(table.Row{r.ID, r.Algorithm, r.Action, r.Status, len(r.Warnings), r.Duration.Round(time.Microsecond).String()})
	}
	t.Render()

	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, printer.Sprintf("%d %s", counts[s], s))
	}
	_, _ = printer.Fprintf(w, "(%d jobs: %s)\n", len(results), strings.Join(parts, ", "))
	if latency.Count > 0 {
		_, _ = fmt.Fprintf(w, "latency p50 %s, p99 %s, max %s\n",
			latency.P50.Round(time.Microsecond), latency.P99.Round(time.Microsecond), latency.Max.Round(time.Microsecond))
	}
	return nil
}

func renderAlgorithmsTable(w io.Writer, metas []cutlaw.AlgorithmMeta) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Safety", "Domain", "Formula"})
	for _, m := range metas {
		t.AppendRow(table.Row{m.ID, m.Name, titleCaser.String(string(m.SafetyClass)), m.Domain, m.Formula})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d algorithms)\n", len(metas))
	return nil
}
