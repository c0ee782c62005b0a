package cutlaw

import (
	"errors"
	"fmt"
	"math"
)

// ErrSafetyBlock matches every *SafetyBlockError via errors.Is.
var ErrSafetyBlock = errors.New("safety block")

// SafetyBlockError is returned by the hard-gate kernels (KienzleCuttingForce,
// TaylorToolLife, SpeedFeed) when an input is physically impossible.
//
// It is unrecoverable for the call that produced it: the caller must abort the
// operation that would have driven the machine. It must never be swallowed,
// replaced by a default value, or retried with the same input.
type SafetyBlockError struct {
	Field  string
	Reason string
}

func (e *SafetyBlockError) Error() string {
	return fmt.Sprintf("SAFETY BLOCK %q: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrSafetyBlock) true.
func (e *SafetyBlockError) Is(target error) bool {
	return target == ErrSafetyBlock
}

func block(field, format string, args ...any) error {
	return &SafetyBlockError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// gateFinite rejects NaN and ±Inf.
func gateFinite(field string, v float64) error {
	if math.IsNaN(v) {
		return block(field, "value is NaN")
	}
	if math.IsInf(v, 0) {
		return block(field, "value is infinite")
	}
	return nil
}

// gatePositive rejects non-finite, zero and negative values.
func gatePositive(field string, v float64) error {
	if err := gateFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return block(field, "must be strictly positive, got %g", v)
	}
	return nil
}

// gateNonNegative rejects non-finite and negative values.
func gateNonNegative(field string, v float64) error {
	if err := gateFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return block(field, "must not be negative, got %g", v)
	}
	return nil
}

// gateAtMost rejects values above a documented maximum.
func gateAtMost(field string, v, limit float64) error {
	if v > limit {
		return block(field, "must be at most %g, got %g", limit, v)
	}
	return nil
}

// gateConditions runs the unconditional precondition check on cutting conditions.
// Every numeric field is checked for finiteness before any positivity check so a
// NaN is always reported as such. Maxima come from conditionLimits.
func gateConditions(c CuttingConditions) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"cutting_speed", c.CuttingSpeed},
		{"feed_per_tooth", c.FeedPerTooth},
		{"axial_depth", c.AxialDepth},
		{"radial_depth", c.RadialDepth},
		{"tool_diameter", c.ToolDiameter},
	}
	for _, f := range fields {
		if err := gateFinite(f.name, f.value); err != nil {
			return err
		}
	}
	for _, f := range fields {
		if err := gatePositive(f.name, f.value); err != nil {
			return err
		}
	}
	for _, f := range fields {
		if err := gateAtMost(f.name, f.value, conditionLimits[f.name].Max); err != nil {
			return err
		}
	}
	if c.NumberOfTeeth < 1 {
		return block("number_of_teeth", "must be a positive integer, got %d", c.NumberOfTeeth)
	}
	if c.NumberOfTeeth > MaxTeeth {
		return block("number_of_teeth", "must be at most %d, got %d", MaxTeeth, c.NumberOfTeeth)
	}
	return nil
}
