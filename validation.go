package cutlaw

import (
	"errors"
	"fmt"
	"math"
)

// Severity of a validation issue.
//
// SeverityError means the input is physically impossible or violates units;
// the caller must not call Calculate. SeverityWarning means the input is legal
// but risky; Calculate still runs.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one finding about one input field.
type ValidationIssue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is returned by Algorithm.Validate.
// Valid is true iff no issue has SeverityError.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
}

// Errors returns the issues with SeverityError.
func (r ValidationResult) Errors() []ValidationIssue {
	return r.filter(SeverityError)
}

// Warnings returns the issues with SeverityWarning.
func (r ValidationResult) Warnings() []ValidationIssue {
	return r.filter(SeverityWarning)
}

func (r ValidationResult) filter(s Severity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

// Err returns nil for a valid result, otherwise a *ValidationError.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Issues: r.Errors()}
}

// ValidationError carries the error-severity issues of a rejected input.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	return e.Unwrap().Error()
}

// Unwrap exposes each issue as its own error for errors.Join style inspection.
func (e *ValidationError) Unwrap() error {
	errs := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		errs = append(errs, fmt.Errorf("invalid %q: %s", issue.Field, issue.Message))
	}
	return errors.Join(errs...)
}

// validator collects issues while an input is checked.
type validator struct {
	issues []ValidationIssue
}

func (v *validator) errorf(field, format string, args ...any) {
	v.issues = append(v.issues, ValidationIssue{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	})
}

func (v *validator) warnf(field, format string, args ...any) {
	v.issues = append(v.issues, ValidationIssue{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	})
}

// check applies a limit from a table. Unknown fields only get the finiteness check.
func (v *validator) check(table LimitTable, field string, value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		v.errorf(field, "must be a finite number, got %v", value)
		return false
	}
	limit, ok := table[field]
	if !ok {
		return true
	}
	switch {
	case limit.Exclusive && value <= limit.Min:
		v.errorf(field, "must be greater than %g %s, got %g", limit.Min, limit.Unit, value)
		return false
	case value < limit.Min:
		v.errorf(field, "must be at least %g %s, got %g", limit.Min, limit.Unit, value)
		return false
	case limit.Max > 0 && value > limit.Max:
		v.errorf(field, "must be at most %g %s, got %g", limit.Max, limit.Unit, value)
		return false
	}
	if limit.WarnAbove > 0 && value > limit.WarnAbove {
		v.warnf(field, "%g %s is above the typical range (%g %s)", value, limit.Unit, limit.WarnAbove, limit.Unit)
	}
	if limit.WarnBelow > 0 && value < limit.WarnBelow {
		v.warnf(field, "%g %s is below the typical range (%g %s)", value, limit.Unit, limit.WarnBelow, limit.Unit)
	}
	return true
}

func (v *validator) checkTeeth(field string, teeth int) {
	if teeth < 1 {
		v.errorf(field, "must be a positive integer, got %d", teeth)
	} else if teeth > MaxTeeth {
		v.errorf(field, "must be at most %d, got %d", MaxTeeth, teeth)
	}
}

func (v *validator) result() ValidationResult {
	valid := true
	for _, issue := range v.issues {
		if issue.Severity == SeverityError {
			valid = false
			break
		}
	}
	return ValidationResult{Valid: valid, Issues: v.issues}
}

// validateConditions checks the shared cutting-condition fields.
func (v *validator) conditions(table LimitTable, c CuttingConditions) {
	v.check(table, "cutting_speed", c.CuttingSpeed)
	v.check(table, "feed_per_tooth", c.FeedPerTooth)
	v.check(table, "axial_depth", c.AxialDepth)
	radialOK := v.check(table, "radial_depth", c.RadialDepth)
	diameterOK := v.check(table, "tool_diameter", c.ToolDiameter)
	v.checkTeeth("number_of_teeth", c.NumberOfTeeth)

	if radialOK && diameterOK && c.RadialDepth > c.ToolDiameter {
		v.warnf("radial_depth", "radial depth %g mm exceeds tool diameter %g mm; treated as a full slot",
			c.RadialDepth, c.ToolDiameter)
	}
}
