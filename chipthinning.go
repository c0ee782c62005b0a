package cutlaw

import "math"

const fullSlotRatio = 0.999

// ChipThinningInput describes a radial engagement. SpindleRPM and
// NumberOfTeeth are optional; when both are set the feed rates are reported.
type ChipThinningInput struct {
	FeedPerTooth  float64 `json:"feed_per_tooth"` // fz, mm
	RadialDepth   float64 `json:"radial_depth"`   // ae, mm
	ToolDiameter  float64 `json:"tool_diameter"`  // D, mm
	SpindleRPM    float64 `json:"spindle_rpm,omitempty"`
	NumberOfTeeth int     `json:"number_of_teeth,omitempty"`
}

// ChipThinningResult is the Martellotti compensation.
type ChipThinningResult struct {
	EngagementRatio         float64 `json:"engagement_ratio"`          // ae/D
	EngagementAngle         float64 `json:"engagement_angle"`          // φe, deg
	EquivalentChipThickness float64 `json:"equivalent_chip_thickness"` // hex, mm
	ChipThinningFactor      float64 `json:"chip_thinning_factor"`
	CompensatedFeedPerTooth float64 `json:"compensated_feed_per_tooth"` // mm
	OriginalFeedRate        float64 `json:"original_feed_rate,omitempty"`
	CompensatedFeedRate     float64 `json:"compensated_feed_rate,omitempty"`
	Warnings                `json:"warnings"`
}

// ChipThinning raises the programmed feed so the equivalent chip thickness at
// light radial engagement matches the nominal feed per tooth.
type ChipThinning struct{}

func (ChipThinning) Validate(in ChipThinningInput) ValidationResult {
	var v validator
	v.check(chipThinningLimits, "feed_per_tooth", in.FeedPerTooth)
	aeOK := v.check(chipThinningLimits, "radial_depth", in.RadialDepth)
	dOK := v.check(chipThinningLimits, "tool_diameter", in.ToolDiameter)
	v.check(chipThinningLimits, "spindle_rpm", in.SpindleRPM)
	if in.NumberOfTeeth < 0 || in.NumberOfTeeth > MaxTeeth {
		v.errorf("number_of_teeth", "must be between 0 and %d, got %d", MaxTeeth, in.NumberOfTeeth)
	}
	if aeOK && dOK && in.RadialDepth > in.ToolDiameter {
		v.warnf("radial_depth", "radial depth %g mm exceeds tool diameter %g mm; treated as a full slot", in.RadialDepth, in.ToolDiameter)
	}
	return v.result()
}

func (ChipThinning) Calculate(in ChipThinningInput) ChipThinningResult {
	var out ChipThinningResult

	d := math.Max(in.ToolDiameter, epsilon)
	ratio := math.Max(finite(in.RadialDepth/d, 0), 0)
	out.EngagementRatio = ratio

	bounded := math.Min(ratio, 1)
	phi := math.Acos(1 - 2*bounded)
	out.EngagementAngle = phi * 180 / math.Pi

	fz := in.FeedPerTooth
	factor := 1.0
	hex := fz
	if ratio < fullSlotRatio {
		if phi >= minAngle {
			hex = fz * (1 - math.Cos(phi)) / phi
		}
		if hex > epsilon {
			factor = fz / hex
		}
	}
	if !isFinite(factor) || factor > MaxThinningFactor {
		out.add(WarnFactorCapped, "chip thinning factor %.2f capped at %.0f×", factor, MaxThinningFactor)
		factor = MaxThinningFactor
	}

	out.EquivalentChipThickness = finite(hex, 0)
	out.ChipThinningFactor = factor
	out.CompensatedFeedPerTooth = out.ceiling(WarnFactorCapped, "compensated feed per tooth", fz*factor, MaxCompensatedFeed, "mm")

	if in.SpindleRPM > 0 && in.NumberOfTeeth > 0 {
		teeth := float64(in.NumberOfTeeth)
		out.OriginalFeedRate = out.ceiling(WarnFeedRateClamped, "feed rate", fz*teeth*in.SpindleRPM, MaxFeedRate, "mm/min")
		out.CompensatedFeedRate = out.ceiling(WarnFeedRateClamped, "compensated feed rate", out.CompensatedFeedPerTooth*teeth*in.SpindleRPM, MaxFeedRate, "mm/min")
	}
	return out
}

func (ChipThinning) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDChipThinning,
		Name:        "Chip thinning compensation",
		Description: "Martellotti equivalent chip thickness and compensated feed for partial radial engagement",
		Formula:     "φe = arccos(1 − 2·ae/D); hex = fz·(1 − cos φe)/φe; factor = fz/hex",
		Reference:   "Martellotti, M. E. (1941) An analysis of the milling process",
		SafetyClass: SafetyStandard,
		Domain:      "kinematics",
		Inputs: map[string]ParamSpec{
			"feed_per_tooth": {Unit: "mm", Description: "programmed feed per tooth"},
			"radial_depth":   {Unit: "mm", Description: "radial engagement ae"},
			"tool_diameter":  {Unit: "mm", Description: "tool diameter D"},
		},
		Outputs: map[string]ParamSpec{
			"chip_thinning_factor":       {Unit: "", Description: "fz/hex, capped at 5"},
			"compensated_feed_per_tooth": {Unit: "mm", Description: "feed restoring the nominal chip load"},
		},
	}
}
