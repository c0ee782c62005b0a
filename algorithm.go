package cutlaw

import (
	"fmt"
	"math"
	"strings"
)

// SafetyClass describes how directly an algorithm's output reaches a machine.
type SafetyClass string

const (
	SafetyCritical      SafetyClass = "critical"      // Drives machine motion or gates tool replacement
	SafetyStandard      SafetyClass = "standard"      // Informs a reviewed decision
	SafetyInformational SafetyClass = "informational" // Analytics only
)

// ParamSpec documents one input or output field.
type ParamSpec struct {
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

// AlgorithmMeta is static, descriptive metadata. It never affects behavior.
type AlgorithmMeta struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Formula     string               `json:"formula"`
	Reference   string               `json:"reference"`
	SafetyClass SafetyClass          `json:"safety_class"`
	Domain      string               `json:"domain"`
	Inputs      map[string]ParamSpec `json:"inputs"`
	Outputs     map[string]ParamSpec `json:"outputs"`
}

// WithWarnings is implemented by every algorithm output.
type WithWarnings interface {
	WarningList() []string
}

// Algorithm is the contract shared by every calculation in this package.
//
// Validate is pure. Calculate assumes Validate would pass and still must not
// panic or return non-finite values for risky input; it reports risk through
// the output's warnings instead.
type Algorithm[In any, Out WithWarnings] interface {
	Validate(in In) ValidationResult
	Calculate(in In) Out
	Metadata() AlgorithmMeta
}

// Descriptor is the type-erased view of an Algorithm used for registration.
type Descriptor interface {
	Metadata() AlgorithmMeta
}

// Warnings is embedded in every output. Each entry has the form "CODE: message".
type Warnings []string

// WarningList returns the warnings recorded on an output.
func (w Warnings) WarningList() []string {
	return []string(w)
}

// Has reports whether a warning with the given code was recorded.
func (w Warnings) Has(code string) bool {
	prefix := code + ":"
	for _, msg := range w {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func (w *Warnings) add(code, format string, args ...any) {
	*w = append(*w, code+": "+fmt.Sprintf(format, args...))
}

// ceiling returns v bounded by limit, recording code when it had to clamp.
// NaN and +Inf clamp to limit, -Inf to -limit.
func (w *Warnings) ceiling(code, name string, v, limit float64, unit string) float64 {
	switch {
	case math.IsInf(v, -1):
		w.add(code, "%s diverged; clamped to %.4g %s", name, -limit, unit)
		return -limit
	case math.IsNaN(v), v > limit:
		w.add(code, "%s %.4g %s clamped to %.4g %s", name, v, unit, limit, unit)
		return limit
	}
	return v
}

// Warning codes shared across algorithms.
const (
	WarnKcInflated        = "KC_INFLATED"
	WarnFullSlot          = "FULL_SLOT"
	WarnForceClamped      = "FORCE_CLAMPED"
	WarnTaylorCliff       = "TAYLOR_CLIFF"
	WarnLifeClamped       = "LIFE_CLAMPED"
	WarnSpindleClamped    = "SPINDLE_CLAMPED"
	WarnFeedRateClamped   = "FEED_RATE_CLAMPED"
	WarnStressClamped     = "STRESS_CLAMPED"
	WarnNearMelt          = "NEAR_MELT"
	WarnExtremeStrainRate = "EXTREME_STRAIN_RATE"
	WarnVBClamped         = "VB_CLAMPED"
	WarnLimitNotReached   = "VB_LIMIT_NOT_REACHED"
	WarnFactorCapped      = "FACTOR_CAPPED"
	WarnRaClamped         = "RA_CLAMPED"
	WarnGradeOutOfRange   = "GRADE_OUT_OF_RANGE"
	WarnTruncated         = "SIGNAL_TRUNCATED"
	WarnNoPeaks           = "NO_PEAKS"
	WarnEmptyCluster      = "EMPTY_CLUSTER"
	WarnNotConverged      = "NOT_CONVERGED"
	WarnPowerClamped      = "POWER_CLAMPED"
	WarnTorqueClamped     = "TORQUE_CLAMPED"
	WarnMRRClamped        = "MRR_CLAMPED"
	WarnRatioClamped      = "SPEED_RATIO_CLAMPED"
	WarnSpeedClamped      = "SPEED_CLAMPED"
	WarnStepsAdjusted     = "STEPS_ADJUSTED"
)
