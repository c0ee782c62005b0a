package cutlaw

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Governor sits between a host and the algorithms. It runs the
// validate → calculate control loop, classifies each outcome into an Action
// and keeps counters for reporting.
//
// Control loop:
//   - Validation error → HALT, Calculate is never called
//   - Valid input → Calculate, then PROCEED or PROCEED_WITH_WARNINGS
//   - Kernel error → SAFETY_BLOCK for a SafetyBlockError, HALT otherwise
//
// A Governor is safe for concurrent use.
type Governor struct {
	mu sync.Mutex

	proceeded     int
	warned        int
	halted        int
	safetyBlocked int
	byAlgorithm   map[string]int
}

// ActionType represents the governor's decision.
type ActionType string

const (
	ActionProceed             ActionType = "PROCEED"               // Output is clean
	ActionProceedWithWarnings ActionType = "PROCEED_WITH_WARNINGS" // Output is usable but annotated
	ActionHalt                ActionType = "HALT"                  // Input rejected by validation
	ActionSafetyBlock         ActionType = "SAFETY_BLOCK"          // Hard gate tripped, never retry
)

// Stops reports whether the pipeline that would drive a machine must stop.
func (t ActionType) Stops() bool {
	return t == ActionHalt || t == ActionSafetyBlock
}

// Action represents the governor's decision and reasoning.
type Action struct {
	Type        ActionType        `json:"type"`
	AlgorithmID string            `json:"algorithm_id"`
	Reason      string            `json:"reason"`
	Issues      []ValidationIssue `json:"issues,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewGovernor creates a governor with zeroed counters.
func NewGovernor() *Governor {
	return &Governor{byAlgorithm: make(map[string]int)}
}

// Execute validates in, and when it is valid calculates the output.
// The zero Out is returned with a HALT action on validation failure.
func Execute[In any, Out WithWarnings](g *Governor, alg Algorithm[In, Out], in In) (Out, Action) {
	id := alg.Metadata().ID
	vr := alg.Validate(in)
	if !vr.Valid {
		var zero Out
		return zero, g.record(Action{
			Type:        ActionHalt,
			AlgorithmID: id,
			Reason:      haltReason(vr),
			Issues:      vr.Issues,
		})
	}

	out := alg.Calculate(in)
	return out, g.record(classify(id, out, vr))
}

// Gate classifies the result of a hard-gated kernel call.
func (g *Governor) Gate(id string, out WithWarnings, err error) Action {
	if err != nil {
		a := Action{Type: ActionHalt, AlgorithmID: id, Reason: err.Error()}
		if errors.Is(err, ErrSafetyBlock) {
			a.Type = ActionSafetyBlock
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			a.Issues = verr.Issues
		}
		return g.record(a)
	}
	return g.record(classify(id, out, ValidationResult{Valid: true}))
}

func classify(id string, out WithWarnings, vr ValidationResult) Action {
	warnings := out.WarningList()
	advisories := vr.Warnings()
	if len(warnings) == 0 && len(advisories) == 0 {
		return Action{Type: ActionProceed, AlgorithmID: id, Reason: "output within all bounds"}
	}
	return Action{
		Type:        ActionProceedWithWarnings,
		AlgorithmID: id,
		Reason:      fmt.Sprintf("%d output warning(s), %d input advisory(ies)", len(warnings), len(advisories)),
		Issues:      advisories,
		Warnings:    warnings,
	}
}

func haltReason(vr ValidationResult) string {
	errs := vr.Errors()
	lines := make([]string, 0, len(errs))
	for _, issue := range errs {
		lines = append(lines, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("validation rejected %d field(s):\n%s", len(errs), strings.Join(lines, "\n"))
}

func (g *Governor) record(a Action) Action {
	a.Timestamp = time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()
	switch a.Type {
	case ActionProceed:
		g.proceeded++
	case ActionProceedWithWarnings:
		g.warned++
	case ActionHalt:
		g.halted++
	case ActionSafetyBlock:
		g.safetyBlocked++
	}
	if g.byAlgorithm == nil {
		g.byAlgorithm = make(map[string]int)
	}
	g.byAlgorithm[a.AlgorithmID]++
	return a
}

// Statistics returns a snapshot of the governor's counters.
func (g *Governor) Statistics() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()

	stats := map[string]int{
		"proceeded":      g.proceeded,
		"warned":         g.warned,
		"halted":         g.halted,
		"safety_blocked": g.safetyBlocked,
		"total":          g.proceeded + g.warned + g.halted + g.safetyBlocked,
	}
	for id, n := range g.byAlgorithm {
		stats["calls."+id] = n
	}
	return stats
}
