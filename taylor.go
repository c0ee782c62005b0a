package cutlaw

import "math"

// Taylor cliff thresholds.
const (
	TaylorCliffLife  = 5.0  // min
	TaylorCliffSpeed = 0.95 // fraction of C
)

// TaylorInput is the input of TaylorToolLife and TaylorAlgorithm.
// Feed and DepthOfCut are only used by the extended form.
type TaylorInput struct {
	CuttingSpeed      float64            `json:"cutting_speed"` // m/min
	Feed              float64            `json:"feed,omitempty"`
	DepthOfCut        float64            `json:"depth_of_cut,omitempty"`
	TargetLifeMinutes float64            `json:"target_life_minutes,omitempty"`
	Coefficients      TaylorCoefficients `json:"coefficients"`
}

func (in TaylorInput) extended() bool {
	return in.Coefficients.FeedExponent != 0 || in.Coefficients.DepthExponent != 0
}

// TaylorResult is the predicted tool life.
type TaylorResult struct {
	ToolLifeMinutes  float64 `json:"tool_life_minutes"`
	SpeedRatio       float64 `json:"speed_ratio"`                 // V/C
	RecommendedSpeed float64 `json:"recommended_speed,omitempty"` // m/min for TargetLifeMinutes
	Extended         bool    `json:"extended"`
	Warnings         `json:"warnings"`
}

// TaylorToolLife is the hard-gated kernel for V·T^n·f^a·d^b = C.
func TaylorToolLife(in TaylorInput) (TaylorResult, error) {
	co := in.Coefficients
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"cutting_speed", in.CuttingSpeed},
		{"feed", in.Feed},
		{"depth_of_cut", in.DepthOfCut},
		{"target_life_minutes", in.TargetLifeMinutes},
		{"C", co.C},
		{"n", co.N},
		{"feed_exponent", co.FeedExponent},
		{"depth_exponent", co.DepthExponent},
	} {
		if err := gateFinite(f.name, f.value); err != nil {
			return TaylorResult{}, err
		}
	}
	if err := gatePositive("cutting_speed", in.CuttingSpeed); err != nil {
		return TaylorResult{}, err
	}
	if err := gatePositive("C", co.C); err != nil {
		return TaylorResult{}, err
	}
	if err := gatePositive("n", co.N); err != nil {
		return TaylorResult{}, err
	}
	if err := gateNonNegative("target_life_minutes", in.TargetLifeMinutes); err != nil {
		return TaylorResult{}, err
	}
	if err := gateNonNegative("feed", in.Feed); err != nil {
		return TaylorResult{}, err
	}
	if err := gateNonNegative("depth_of_cut", in.DepthOfCut); err != nil {
		return TaylorResult{}, err
	}
	if err := gateAtMost("cutting_speed", in.CuttingSpeed, taylorLimits["cutting_speed"].Max); err != nil {
		return TaylorResult{}, err
	}
	if err := gateAtMost("C", co.C, taylorLimits["C"].Max); err != nil {
		return TaylorResult{}, err
	}
	if co.FeedExponent != 0 {
		if err := gatePositive("feed", in.Feed); err != nil {
			return TaylorResult{}, err
		}
	}
	if co.DepthExponent != 0 {
		if err := gatePositive("depth_of_cut", in.DepthOfCut); err != nil {
			return TaylorResult{}, err
		}
	}
	return taylor(in), nil
}

// taylorGeometry returns f^a · d^b, 1 for the basic form.
func taylorGeometry(in TaylorInput) float64 {
	g := 1.0
	if a := in.Coefficients.FeedExponent; a != 0 {
		g *= math.Pow(math.Max(in.Feed, epsilon), a)
	}
	if b := in.Coefficients.DepthExponent; b != 0 {
		g *= math.Pow(math.Max(in.DepthOfCut, epsilon), b)
	}
	return g
}

func taylor(in TaylorInput) TaylorResult {
	var out TaylorResult
	co := in.Coefficients

	v := math.Max(in.CuttingSpeed, epsilon)
	n := math.Max(co.N, epsilon)
	geom := taylorGeometry(in)

	base := co.C / (v * geom)
	life := math.Pow(base, 1/n)
	if !isFinite(life) || life > MaxToolLife {
		out.add(WarnLifeClamped, "tool life %.4g min clamped to %.0f min", life, MaxToolLife)
		life = MaxToolLife
	}

	out.ToolLifeMinutes = life
	out.SpeedRatio = out.ceiling(WarnRatioClamped, "speed ratio", in.CuttingSpeed/co.C, MaxSpeedRatio, "")
	out.Extended = in.extended()

	if life < TaylorCliffLife || in.CuttingSpeed >= TaylorCliffSpeed*co.C {
		out.add(WarnTaylorCliff, "V=%.4g m/min is %.1f%% of C=%.4g, tool life %.3g min; the curve is near-vertical, small speed increases cause disproportionate life loss",
			in.CuttingSpeed, 100*out.SpeedRatio, co.C, life)
	}

	if in.TargetLifeMinutes > 0 {
		speed := co.C / (math.Pow(in.TargetLifeMinutes, n) * geom)
		out.RecommendedSpeed = out.ceiling(WarnSpeedClamped, "recommended speed", speed, MaxCuttingSpeed, "m/min")
	}
	return out
}

// TaylorAlgorithm is the advisory form of the Taylor tool-life law.
type TaylorAlgorithm struct{}

func (TaylorAlgorithm) Validate(in TaylorInput) ValidationResult {
	var v validator
	co := in.Coefficients
	v.check(taylorLimits, "cutting_speed", in.CuttingSpeed)
	v.check(taylorLimits, "C", co.C)
	v.check(taylorLimits, "n", co.N)
	v.check(taylorLimits, "feed_exponent", co.FeedExponent)
	v.check(taylorLimits, "depth_exponent", co.DepthExponent)
	v.check(taylorLimits, "target_life", in.TargetLifeMinutes)
	if v.check(taylorLimits, "feed", in.Feed) && co.FeedExponent != 0 && in.Feed <= 0 {
		v.errorf("feed", "extended form requires a positive feed")
	}
	if v.check(taylorLimits, "depth_of_cut", in.DepthOfCut) && co.DepthExponent != 0 && in.DepthOfCut <= 0 {
		v.errorf("depth_of_cut", "extended form requires a positive depth of cut")
	}
	if co.C > 0 && in.CuttingSpeed >= TaylorCliffSpeed*co.C {
		v.warnf("cutting_speed", "speed within %.0f%% of C; tool life is extremely sensitive here", 100*(1-TaylorCliffSpeed))
	}
	return v.result()
}

func (TaylorAlgorithm) Calculate(in TaylorInput) TaylorResult {
	return taylor(in)
}

func (TaylorAlgorithm) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDTaylor,
		Name:        "Taylor tool life",
		Description: "Tool life from cutting speed, optionally extended with feed and depth exponents",
		Formula:     "T = (C / (V·f^a·d^b))^(1/n)",
		Reference:   "Taylor, F. W. (1907) On the Art of Cutting Metals",
		SafetyClass: SafetyCritical,
		Domain:      "tribology",
		Inputs: map[string]ParamSpec{
			"cutting_speed": {Unit: "m/min", Description: "cutting speed V"},
			"feed":          {Unit: "mm", Description: "feed f (extended form)"},
			"depth_of_cut":  {Unit: "mm", Description: "depth of cut d (extended form)"},
			"C":             {Unit: "m/min", Description: "Taylor constant"},
			"n":             {Unit: "", Description: "Taylor exponent"},
		},
		Outputs: map[string]ParamSpec{
			"tool_life_minutes": {Unit: "min", Description: "predicted tool life"},
			"recommended_speed": {Unit: "m/min", Description: "speed for the target life"},
		},
	}
}
