package cutlaw

import "math"

// SpeedFeedResult is the spindle speed and table feed for a milling cut.
type SpeedFeedResult struct {
	SpindleSpeed        float64 `json:"spindle_speed"`         // rpm
	FeedRate            float64 `json:"feed_rate"`             // mm/min
	FeedPerRevolution   float64 `json:"feed_per_revolution"`   // mm/rev
	MaterialRemovalRate float64 `json:"material_removal_rate"` // cm³/min
	EffectiveSpeed      float64 `json:"effective_speed"`       // m/min after spindle clamping
	Warnings            `json:"warnings"`
}

// SpeedFeed is the hard-gated kernel that converts cutting speed and feed per
// tooth into machine units. Its output is written straight into feed/speed
// words, so every input is checked before anything is computed.
func SpeedFeed(c CuttingConditions) (SpeedFeedResult, error) {
	if err := gateConditions(c); err != nil {
		return SpeedFeedResult{}, err
	}
	return speedFeed(c), nil
}

func speedFeed(c CuttingConditions) SpeedFeedResult {
	var out SpeedFeedResult

	d := math.Max(c.ToolDiameter, epsilon)
	rpm := 1000 * c.CuttingSpeed / (math.Pi * d)
	if !isFinite(rpm) || rpm > MaxSpindleSpeed {
		out.add(WarnSpindleClamped, "spindle speed %.0f rpm clamped to %.0f rpm; effective cutting speed reduced", rpm, MaxSpindleSpeed)
		rpm = MaxSpindleSpeed
	}

	fr := out.ceiling(WarnFeedRateClamped, "feed per revolution", float64(c.NumberOfTeeth)*c.FeedPerTooth, MaxFeedPerRev, "mm")
	vf := fr * rpm
	if !isFinite(vf) || vf > MaxFeedRate {
		out.add(WarnFeedRateClamped, "feed rate %.0f mm/min clamped to %.0f mm/min", vf, MaxFeedRate)
		vf = MaxFeedRate
	}

	ae := math.Min(c.RadialDepth, c.ToolDiameter)

	out.SpindleSpeed = rpm
	out.FeedRate = vf
	out.FeedPerRevolution = fr
	out.MaterialRemovalRate = out.ceiling(WarnMRRClamped, "material removal rate", c.AxialDepth*ae*vf/1000, MaxRemovalRate, "cm³/min")
	out.EffectiveSpeed = math.Pi * d * rpm / 1000
	return out
}

// SpeedFeedAlgorithm is the advisory form of SpeedFeed.
type SpeedFeedAlgorithm struct{}

func (SpeedFeedAlgorithm) Validate(c CuttingConditions) ValidationResult {
	var v validator
	v.conditions(conditionLimits, c)
	if c.ToolDiameter > 0 && c.CuttingSpeed > 0 {
		if rpm := 1000 * c.CuttingSpeed / (math.Pi * c.ToolDiameter); rpm > MaxSpindleSpeed {
			v.warnf("cutting_speed", "requires %.0f rpm, above the %.0f rpm ceiling", rpm, MaxSpindleSpeed)
		}
	}
	return v.result()
}

func (SpeedFeedAlgorithm) Calculate(c CuttingConditions) SpeedFeedResult {
	return speedFeed(c)
}

func (SpeedFeedAlgorithm) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDSpeedFeed,
		Name:        "Spindle speed and feed rate",
		Description: "Converts cutting speed and feed per tooth into spindle rpm and table feed",
		Formula:     "n = 1000·V/(π·D); vf = fz·z·n; Q = ap·ae·vf/1000",
		Reference:   "ISO 3002-1",
		SafetyClass: SafetyCritical,
		Domain:      "kinematics",
		Inputs: map[string]ParamSpec{
			"cutting_speed":   {Unit: "m/min", Description: "cutting speed V"},
			"feed_per_tooth":  {Unit: "mm", Description: "feed per tooth fz"},
			"tool_diameter":   {Unit: "mm", Description: "tool diameter D"},
			"number_of_teeth": {Unit: "", Description: "tooth count z"},
		},
		Outputs: map[string]ParamSpec{
			"spindle_speed":         {Unit: "rpm", Description: "spindle speed n"},
			"feed_rate":             {Unit: "mm/min", Description: "table feed vf"},
			"material_removal_rate": {Unit: "cm³/min", Description: "removal rate Q"},
		},
	}
}
