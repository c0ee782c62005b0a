package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/alexshd/cutlaw"
)

// Job actions.
const (
	ActionValidate  = "validate"
	ActionCalculate = "calculate"
	ActionKernel    = "kernel"
)

// Job statuses.
const (
	StatusOK        = "ok"
	StatusWarning   = "warning"
	StatusInvalid   = "invalid"
	StatusHalted    = "halted"
	StatusBlocked   = "blocked"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// ErrJobsFailed is returned when at least one job did not succeed.
var ErrJobsFailed = errors.New("one or more jobs failed")

// Job is one {id, algorithm, action, params} request document.
type Job struct {
	ID        string         `yaml:"id" json:"id"`
	Algorithm string         `yaml:"algorithm" json:"algorithm"`
	Action    string         `yaml:"action" json:"action"`
	Params    map[string]any `yaml:"params" json:"params"`
}

// JobResult is the outcome of one job.
type JobResult struct {
	ID         string                   `json:"id" yaml:"id"`
	Algorithm  string                   `json:"algorithm" yaml:"algorithm"`
	Action     string                   `json:"action" yaml:"action"`
	Status     string                   `json:"status" yaml:"status"`
	Decision   cutlaw.ActionType        `json:"decision,omitempty" yaml:"decision,omitempty"`
	Reason     string                   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Validation *cutlaw.ValidationResult `json:"validation,omitempty" yaml:"validation,omitempty"`
	Output     any                      `json:"output,omitempty" yaml:"output,omitempty"`
	Warnings   []string                 `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error      string                   `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   time.Duration            `json:"duration_ns" yaml:"duration_ns"`
}

// Failed reports whether the job must be treated as a failure by the host.
func (r JobResult) Failed() bool {
	switch r.Status {
	case StatusOK, StatusWarning:
		return false
	}
	return true
}

// DecodeJobs reads a YAML (or JSON) stream. Each document is either a single
// job or a sequence of jobs.
func DecodeJobs(r io.Reader) ([]Job, error) {
	dec := yaml.NewDecoder(r)
	var jobs []Job
	for i := 0; ; i++ {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if len(doc.Content) == 0 {
			continue
		}
		root := doc.Content[0]
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			continue
		}
		switch root.Kind {
		case yaml.SequenceNode:
			var batch []Job
			if err := root.Decode(&batch); err != nil {
				return nil, fmt.Errorf("document %d: %w", i, err)
			}
			jobs = append(jobs, batch...)
		case yaml.MappingNode:
			var job Job
			if err := root.Decode(&job); err != nil {
				return nil, fmt.Errorf("document %d: %w", i, err)
			}
			jobs = append(jobs, job)
		default:
			return nil, fmt.Errorf("document %d: expected a job mapping or a sequence of jobs", i)
		}
	}
	if len(jobs) == 0 {
		return nil, errors.New("no jobs found")
	}
	normalize(jobs)
	return jobs, nil
}

// normalize assigns missing IDs and the default action.
func normalize(jobs []Job) {
	for i := range jobs {
		if jobs[i].ID == "" {
			jobs[i].ID = uuid.NewString()
		}
		if jobs[i].Action == "" {
			jobs[i].Action = ActionCalculate
		}
	}
}

// applyDefaults fills configured defaults into params the job leaves unset.
func (a *App) applyDefaults(job Job) map[string]any {
	params := make(map[string]any, len(job.Params)+2)
	for k, v := range job.Params {
		params[k] = v
	}
	d := a.Config.Defaults
	setDefault := func(key string, value any) {
		if _, ok := params[key]; !ok {
			params[key] = value
		}
	}
	switch job.Algorithm {
	case cutlaw.IDSurfaceFinish:
		if d.ProcessFactor > 0 {
			setDefault("process_factor", d.ProcessFactor)
		}
	case cutlaw.IDVibration:
		if d.Window != "" {
			setDefault("window", d.Window)
		}
		if d.TopPeaks > 0 {
			setDefault("top_peaks", d.TopPeaks)
		}
	case cutlaw.IDKMeans:
		setDefault("seed", d.Seed)
		if d.Restarts > 0 {
			setDefault("restarts", d.Restarts)
		}
	case cutlaw.IDUsui:
		if d.WearSteps > 0 {
			setDefault("steps", d.WearSteps)
		}
	}
	return params
}

// RunJob executes one job. It never returns an error: every failure is
// reported through the result status.
func (a *App) RunJob(ctx context.Context, job Job) JobResult {
	res := a.runJob(ctx, job)
	if a.Latency != nil && res.Status != StatusCancelled {
		a.Latency.Record(res.Duration)
	}
	return res
}

func (a *App) runJob(ctx context.Context, job Job) JobResult {
	start := time.Now()
	res := JobResult{ID: job.ID, Algorithm: job.Algorithm, Action: job.Action}

	log := a.Logger.With("job", job.ID, "algorithm", job.Algorithm, "action", job.Action)

	fail := func(status string, err error) JobResult {
		res.Status = status
		res.Error = err.Error()
		res.Duration = time.Since(start)
		log.Error("job failed", "status", status, "err", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(StatusCancelled, err)
	}
	entry, ok := a.Registry.Get(job.Algorithm)
	if !ok {
		return fail(StatusError, fmt.Errorf("unknown algorithm %q", job.Algorithm))
	}
	params, err := json.Marshal(a.applyDefaults(job))
	if err != nil {
		return fail(StatusError, fmt.Errorf("encode params: %w", err))
	}

	var (
		out    cutlaw.WithWarnings
		action cutlaw.Action
	)
	switch job.Action {
	case ActionValidate:
		vr, err := entry.Validate(params)
		if err != nil {
			return fail(StatusError, err)
		}
		res.Validation = &vr
		res.Status = StatusOK
		if !vr.Valid {
			res.Status = StatusInvalid
		} else if len(vr.Warnings()) > 0 {
			res.Status = StatusWarning
		}
		res.Duration = time.Since(start)
		log.Debug("validated", "valid", vr.Valid, "issues", len(vr.Issues))
		return res

	case ActionCalculate:
		out, action, err = entry.Execute(a.Governor, params)
		if err != nil {
			return fail(StatusError, err)
		}

	case ActionKernel:
		out, action, err = entry.Kernel(a.Governor, params)
		if err != nil && !errors.Is(err, cutlaw.ErrSafetyBlock) {
			return fail(StatusError, err)
		}

	default:
		return fail(StatusError, fmt.Errorf("unknown action %q (want validate, calculate or kernel)", job.Action))
	}

	res.Decision = action.Type
	res.Reason = action.Reason
	switch action.Type {
	case cutlaw.ActionSafetyBlock:
		res.Status = StatusBlocked
		res.Error = action.Reason
		log.Error("safety block", "reason", action.Reason)
	case cutlaw.ActionHalt:
		res.Status = StatusHalted
		res.Validation = &cutlaw.ValidationResult{Valid: false, Issues: action.Issues}
		log.Warn("halted by validation", "issues", len(action.Issues))
	case cutlaw.ActionProceedWithWarnings:
		res.Status = StatusWarning
		res.Output = out
		res.Warnings = action.Warnings
		log.Info("completed with warnings", "warnings", len(action.Warnings))
	default:
		res.Status = StatusOK
		res.Output = out
		log.Info("completed")
	}
	res.Duration = time.Since(start)
	return res
}

// RunBatch runs jobs on a bounded worker pool. The first safety block cancels
// every job that has not started yet; the returned error is that block.
// Results keep the order of jobs.
func (a *App) RunBatch(ctx context.Context, jobs []Job) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.Config.Workers, 1))
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = a.RunJob(gctx, job)
			if results[i].Status == StatusBlocked {
				return fmt.Errorf("job %s: %s", job.ID, results[i].Error)
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		a.Logger.Error("batch aborted", "err", err)
	}
	if a.Latency != nil {
		s := a.Latency.Stats()
		a.Logger.Info("batch finished", "jobs", len(jobs), "p50", s.P50, "p99", s.P99, "max", s.Max)
	}
	return results, err
}
