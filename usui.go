package cutlaw

import "math"

// Usui integrator constants.
const (
	DefaultWearSteps     = 100
	DefaultVBLimit       = 0.3 // mm, ISO 3685 uniform flank wear criterion
	breakInMultiplier    = 1.5
	thermalFeedback      = 0.5  // θ_eff = θ·(1 + 0.5·VB)
	breakInVB            = 0.05 // mm
	acceleratedThreshold = 1.5
)

// Wear regimes.
const (
	RegimeBreakIn     = "break-in"
	RegimeSteadyState = "steady-state"
	RegimeAccelerated = "accelerated"
)

// WearPoint is one sample of the integrated flank-wear curve.
type WearPoint struct {
	Time     float64 `json:"time"`      // min
	VB       float64 `json:"vb"`        // mm
	WearRate float64 `json:"wear_rate"` // mm/min
}

// UsuiInput drives the adhesive-diffusion wear integrator.
// A and B are the Usui constants; Temperature is the tool-chip interface
// temperature in kelvin.
type UsuiInput struct {
	CuttingTime     float64 `json:"cutting_time"`     // min
	NormalStress    float64 `json:"normal_stress"`    // σ, MPa
	SlidingVelocity float64 `json:"sliding_velocity"` // Vs, m/min
	Temperature     float64 `json:"temperature"`      // θ, K
	A               float64 `json:"A"`
	B               float64 `json:"B"` // K
	VBLimit         float64 `json:"vb_limit,omitempty"`
	Steps           int     `json:"steps,omitempty"`
}

func (in UsuiInput) steps() int {
	n := in.Steps
	if n <= 0 {
		n = DefaultWearSteps
	}
	return min(max(n, MinWearSteps), MaxWearSteps)
}

func (in UsuiInput) vbLimit() float64 {
	if in.VBLimit > 0 {
		return in.VBLimit
	}
	return DefaultVBLimit
}

// UsuiResult is the integrated wear state.
type UsuiResult struct {
	FinalVB           float64     `json:"final_vb"`            // mm
	EstimatedToolLife float64     `json:"estimated_tool_life"` // min
	LimitReached      bool        `json:"limit_reached"`
	WearRegime        string      `json:"wear_regime"`
	AverageWearRate   float64     `json:"average_wear_rate"` // mm/min
	TimeStep          float64     `json:"time_step"`         // min
	WearHistory       []WearPoint `json:"wear_history"`
	Warnings          `json:"warnings"`
}

// UsuiWear integrates dVB/dt = A·σ·Vs·exp(−B/θ_eff) with forward Euler.
type UsuiWear struct{}

func (UsuiWear) Validate(in UsuiInput) ValidationResult {
	var v validator
	v.check(usuiLimits, "cutting_time", in.CuttingTime)
	v.check(usuiLimits, "normal_stress", in.NormalStress)
	v.check(usuiLimits, "sliding_velocity", in.SlidingVelocity)
	v.check(usuiLimits, "temperature", in.Temperature)
	v.check(usuiLimits, "A", in.A)
	v.check(usuiLimits, "B", in.B)
	if in.VBLimit != 0 {
		v.check(usuiLimits, "vb_limit", in.VBLimit)
	}
	if in.Steps < 0 {
		v.errorf("steps", "must not be negative, got %d", in.Steps)
	} else if in.Steps > MaxWearSteps {
		v.warnf("steps", "%d steps capped at %d", in.Steps, MaxWearSteps)
	} else if in.Steps > 0 && in.Steps < MinWearSteps {
		v.warnf("steps", "%d steps raised to the minimum of %d", in.Steps, MinWearSteps)
	}
	return v.result()
}

func (UsuiWear) Calculate(in UsuiInput) UsuiResult {
	var out UsuiResult

	n := in.steps()
	total := math.Max(finite(in.CuttingTime, 0), epsilon)
	dt := total / float64(n)
	limit := in.vbLimit()
	theta := math.Max(finite(in.Temperature, 0), epsilon)
	if in.Steps > MaxWearSteps || (in.Steps > 0 && in.Steps < MinWearSteps) {
		out.add(WarnStepsAdjusted, "%d steps adjusted to %d", in.Steps, n)
	}

	// Break-in runs until VB reaches breakInVB, independent of the horizon.
	rate := func(vb float64) float64 {
		thetaEff := theta * (1 + thermalFeedback*vb)
		r := in.A * in.NormalStress * in.SlidingVelocity * math.Exp(-in.B/thetaEff)
		if vb < breakInVB {
			r *= breakInMultiplier
		}
		return math.Max(finite(r, 0), 0)
	}

	history := make([]WearPoint, 0, n+1)
	vb := 0.0
	history = append(history, WearPoint{Time: 0, VB: 0, WearRate: rate(0)})

	clamped := false
	crossing := -1.0
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		r := rate(vb)
		next := vb + r*dt
		if next > MaxFlankWear {
			next = MaxFlankWear
			clamped = true
		}
		tNext := float64(i+1) * dt
		if crossing < 0 && next >= limit {
			if next > vb {
				crossing = t + (limit-vb)/(next-vb)*dt
			} else {
				crossing = tNext
			}
		}
		vb = next
		history = append(history, WearPoint{Time: tNext, VB: vb, WearRate: rate(vb)})
	}

	if clamped {
		out.add(WarnVBClamped, "flank wear capped at %.1f mm", MaxFlankWear)
	}

	avg := vb / total
	life := crossing
	if crossing < 0 {
		if avg > 0 {
			life = limit / avg
		} else {
			life = MaxWearLife
		}
		out.add(WarnLimitNotReached, "VB limit %.3g mm not reached within %.4g min; tool life extrapolated from the average rate", limit, total)
	}
	life = finite(life, MaxWearLife)
	if life > MaxWearLife {
		life = MaxWearLife
	}

	out.FinalVB = vb
	out.EstimatedToolLife = life
	out.LimitReached = crossing >= 0
	out.AverageWearRate = finite(avg, 0)
	out.TimeStep = dt
	out.WearHistory = history
	out.WearRegime = classifyWear(history)
	return out
}

// classifyWear reports break-in below 0.05 mm, accelerated when the last rate
// exceeds 1.5× the rate at mid-history, steady-state otherwise.
func classifyWear(history []WearPoint) string {
	last := history[len(history)-1]
	if last.VB < breakInVB {
		return RegimeBreakIn
	}
	mid := history[len(history)/2]
	if last.WearRate > acceleratedThreshold*mid.WearRate {
		return RegimeAccelerated
	}
	return RegimeSteadyState
}

func (UsuiWear) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDUsui,
		Name:        "Usui tool wear",
		Description: "Time-stepped flank-wear growth with thermal feedback and break-in",
		Formula:     "dVB/dt = A·σ·Vs·exp(−B/θ_eff), θ_eff = θ·(1 + 0.5·VB)",
		Reference:   "Usui, E., Shirakashi, T., Kitagawa, T. (1984) Analytical prediction of cutting tool wear",
		SafetyClass: SafetyCritical,
		Domain:      "tribology",
		Inputs: map[string]ParamSpec{
			"cutting_time":     {Unit: "min", Description: "integration horizon"},
			"normal_stress":    {Unit: "MPa", Description: "normal stress on the flank σ"},
			"sliding_velocity": {Unit: "m/min", Description: "chip sliding velocity Vs"},
			"temperature":      {Unit: "K", Description: "interface temperature θ"},
			"vb_limit":         {Unit: "mm", Description: "flank-wear criterion"},
		},
		Outputs: map[string]ParamSpec{
			"final_vb":            {Unit: "mm", Description: "flank wear at the end of the horizon"},
			"estimated_tool_life": {Unit: "min", Description: "time to reach vb_limit"},
			"wear_regime":         {Unit: "", Description: "break-in, steady-state or accelerated"},
		},
	}
}
