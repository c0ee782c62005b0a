package cutlaw

import "math"

// Algorithm IDs.
const (
	IDKienzle       = "kienzle_cutting_force"
	IDTaylor        = "taylor_tool_life"
	IDSpeedFeed     = "speed_feed"
	IDJohnsonCook   = "johnson_cook_flow_stress"
	IDUsui          = "usui_tool_wear"
	IDChipThinning  = "chip_thinning"
	IDSurfaceFinish = "surface_finish"
	IDVibration     = "fft_vibration"
	IDKMeans        = "kmeans_clustering"
)

// ForceRatios are Ff/Fc and Fp/Fc for one ISO group.
type ForceRatios struct {
	Feed    float64 `json:"feed"`
	Passive float64 `json:"passive"`
}

// forceRatioTable depends only on the ISO group.
var forceRatioTable = map[ISOGroup]ForceRatios{
	ISOSteel:      {Feed: 0.40, Passive: 0.30},
	ISOStainless:  {Feed: 0.45, Passive: 0.35},
	ISONonFerrous: {Feed: 0.30, Passive: 0.20},
	ISOSuperalloy: {Feed: 0.50, Passive: 0.40},
}

var defaultForceRatios = ForceRatios{Feed: 0.40, Passive: 0.30}

// ForceRatiosFor returns the fixed Ff/Fc and Fp/Fc pair for an ISO group.
func ForceRatiosFor(g ISOGroup) ForceRatios {
	if r, ok := forceRatioTable[g]; ok {
		return r
	}
	return defaultForceRatios
}

// KienzleInput bundles conditions and coefficients for the Algorithm form.
type KienzleInput struct {
	Conditions   CuttingConditions   `json:"conditions"`
	Coefficients KienzleCoefficients `json:"coefficients"`
}

// KienzleResult is the per-tooth cutting force estimate.
type KienzleResult struct {
	ChipThickness     float64 `json:"chip_thickness"`      // h, mm (mean)
	ChipWidth         float64 `json:"chip_width"`          // b, mm
	ChipArea          float64 `json:"chip_area"`           // b·h, mm²
	EngagementAngle   float64 `json:"engagement_angle"`    // φe, deg
	SpecificForce     float64 `json:"specific_force"`      // kc, N/mm²
	CuttingForce      float64 `json:"cutting_force"`       // Fc, N
	FeedForce         float64 `json:"feed_force"`          // Ff, N
	PassiveForce      float64 `json:"passive_force"`       // Fp, N
	FeedForceRatio    float64 `json:"feed_force_ratio"`    // Ff/Fc
	PassiveForceRatio float64 `json:"passive_force_ratio"` // Fp/Fc
	Power             float64 `json:"power"`               // W
	PowerKW           float64 `json:"power_kw"`            // kW
	Torque            float64 `json:"torque"`              // N·m at the tool radius
	Warnings          `json:"warnings"`
}

// KienzleCuttingForce is the hard-gated kernel. Any non-finite, non-positive or
// out-of-range field returns a *SafetyBlockError and no value.
func KienzleCuttingForce(c CuttingConditions, k KienzleCoefficients) (KienzleResult, error) {
	if err := gateConditions(c); err != nil {
		return KienzleResult{}, err
	}
	if err := gatePositive("kc1_1", k.Kc11); err != nil {
		return KienzleResult{}, err
	}
	if err := gateAtMost("kc1_1", k.Kc11, kienzleLimits["kc1_1"].Max); err != nil {
		return KienzleResult{}, err
	}
	if err := gateNonNegative("mc", k.Mc); err != nil {
		return KienzleResult{}, err
	}
	if k.Mc >= 1 {
		return KienzleResult{}, block("mc", "exponent must be below 1, got %g", k.Mc)
	}
	return kienzle(c, k), nil
}

// meanChipThickness is the Martellotti arc-averaged chip thickness for a
// radial engagement ratio in [0, 1].
func meanChipThickness(fz, ratio float64) (h, phi float64) {
	phi = math.Acos(1 - 2*ratio)
	if phi < minAngle {
		return fz, phi
	}
	return fz * (1 - math.Cos(phi)) / phi, phi
}

func kienzle(c CuttingConditions, k KienzleCoefficients) KienzleResult {
	var out KienzleResult

	ratio := c.EngagementRatio()
	h, phi := meanChipThickness(c.FeedPerTooth, ratio)
	h = math.Max(finite(h, minChipThickness), minChipThickness)
	b := math.Max(finite(c.AxialDepth, 0), 0)

	if c.ToolDiameter > 0 && c.RadialDepth/c.ToolDiameter < 0.01 {
		out.add(WarnKcInflated, "radial engagement %.3f%% of diameter; h^(-mc) diverges as chip thickness approaches zero",
			100*c.RadialDepth/c.ToolDiameter)
	}
	if c.ToolDiameter > 0 && c.RadialDepth >= c.ToolDiameter {
		out.add(WarnFullSlot, "radial depth %.3g mm equals or exceeds tool diameter %.3g mm", c.RadialDepth, c.ToolDiameter)
	}

	kc := k.Kc11 * math.Pow(h, -k.Mc)
	fc := kc * b * h
	if !isFinite(fc) || fc > MaxCuttingForce {
		out.add(WarnForceClamped, "cutting force %.0f N clamped to %.0f N", fc, MaxCuttingForce)
		fc = MaxCuttingForce
	}
	if fc < 0 {
		fc = 0
	}

	ratios := ForceRatiosFor(k.ISOGroup)
	power := fc * c.CuttingSpeed / 60

	out.ChipThickness = h
	out.ChipWidth = b
	out.ChipArea = finite(b*h, 0)
	out.EngagementAngle = phi * 180 / math.Pi
	out.SpecificForce = out.ceiling(WarnForceClamped, "specific cutting force", kc, MaxSpecificForce, "N/mm²")
	out.CuttingForce = fc
	out.FeedForce = fc * ratios.Feed
	out.PassiveForce = fc * ratios.Passive
	out.FeedForceRatio = ratios.Feed
	out.PassiveForceRatio = ratios.Passive
	out.Power = out.ceiling(WarnPowerClamped, "cutting power", power, MaxPower, "W")
	out.PowerKW = out.Power / 1000
	out.Torque = out.ceiling(WarnTorqueClamped, "spindle torque", fc*c.ToolDiameter/2000, MaxTorque, "N·m")
	return out
}

// KienzleAlgorithm is the advisory (validate-then-calculate) form of the
// Kienzle force model.
type KienzleAlgorithm struct{}

func (KienzleAlgorithm) Validate(in KienzleInput) ValidationResult {
	var v validator
	v.conditions(kienzleLimits, in.Conditions)
	v.check(kienzleLimits, "kc1_1", in.Coefficients.Kc11)
	v.check(kienzleLimits, "mc", in.Coefficients.Mc)
	if in.Coefficients.ISOGroup != "" && !in.Coefficients.ISOGroup.Valid() {
		v.warnf("iso_group", "unknown ISO group %q; default force ratios used", in.Coefficients.ISOGroup)
	}
	c := in.Conditions
	if c.ToolDiameter > 0 && c.RadialDepth > 0 && c.RadialDepth/c.ToolDiameter < 0.01 {
		v.warnf("radial_depth", "engagement below 1%% of diameter inflates specific cutting force")
	}
	return v.result()
}

func (KienzleAlgorithm) Calculate(in KienzleInput) KienzleResult {
	return kienzle(in.Conditions, in.Coefficients)
}

func (KienzleAlgorithm) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDKienzle,
		Name:        "Kienzle cutting force",
		Description: "Per-tooth cutting force from specific cutting force and mean chip thickness",
		Formula:     "Fc = kc1.1 · h^(−mc) · b · h; P = Fc·V/60",
		Reference:   "Kienzle, O. (1952) Die Bestimmung von Kräften und Leistungen an spanenden Werkzeugen",
		SafetyClass: SafetyCritical,
		Domain:      "mechanics",
		Inputs: map[string]ParamSpec{
			"conditions": {Unit: "", Description: "cutting conditions"},
			"kc1_1":      {Unit: "N/mm²", Description: "specific cutting force at h = 1 mm"},
			"mc":         {Unit: "", Description: "chip-thickness exponent"},
			"iso_group":  {Unit: "", Description: "ISO 513 material group"},
		},
		Outputs: map[string]ParamSpec{
			"cutting_force":  {Unit: "N", Description: "tangential force Fc"},
			"feed_force":     {Unit: "N", Description: "feed force Ff"},
			"passive_force":  {Unit: "N", Description: "passive force Fp"},
			"specific_force": {Unit: "N/mm²", Description: "kc at the mean chip thickness"},
			"power":          {Unit: "W", Description: "cutting power"},
		},
	}
}
