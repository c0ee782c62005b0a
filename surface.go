package cutlaw

import (
	"math"
	"slices"
)

// Operation selects the kinematic roughness formula and the Rz/Ra ratio.
type Operation string

const (
	OpTurning  Operation = "turning"
	OpMilling  Operation = "milling"
	OpGrinding Operation = "grinding"
	OpBoring   Operation = "boring"
	OpReaming  Operation = "reaming"
)

// DefaultProcessFactor scales theoretical roughness to what shops measure.
const DefaultProcessFactor = 2.0

// Rz/Ra ratios per operation (ISO 4287 practice).
var rzRatio = map[Operation]float64{
	OpTurning:  4.0,
	OpMilling:  5.5,
	OpGrinding: 6.5,
	OpBoring:   4.2,
	OpReaming:  3.8,
}

// Valid reports whether the operation has a roughness model.
func (o Operation) Valid() bool {
	_, ok := rzRatio[o]
	return ok
}

// ISOGrade is one roughness class of ISO 1302.
type ISOGrade struct {
	Grade string  `json:"grade"`
	MaxRa float64 `json:"max_ra"` // μm
}

// ISOGrades is ordered from finest to coarsest.
var ISOGrades = []ISOGrade{
	{"N1", 0.025}, {"N2", 0.05}, {"N3", 0.1}, {"N4", 0.2},
	{"N5", 0.4}, {"N6", 0.8}, {"N7", 1.6}, {"N8", 3.2},
	{"N9", 6.3}, {"N10", 12.5}, {"N11", 25}, {"N12", 50},
}

// GradeFor returns the smallest ISO N grade whose bound ra satisfies.
// ok is false above N12.
func GradeFor(ra float64) (grade string, ok bool) {
	i := slices.IndexFunc(ISOGrades, func(g ISOGrade) bool { return ra <= g.MaxRa })
	if i < 0 {
		return ">" + ISOGrades[len(ISOGrades)-1].Grade, false
	}
	return ISOGrades[i].Grade, true
}

// SurfaceInput describes a finishing pass. RadialDepth and ToolDiameter are
// used by milling only; ProcessFactor defaults to 2.
type SurfaceInput struct {
	Operation     Operation `json:"operation"`
	Feed          float64   `json:"feed"`        // mm/rev, or fz for milling
	NoseRadius    float64   `json:"nose_radius"` // mm
	RadialDepth   float64   `json:"radial_depth,omitempty"`
	ToolDiameter  float64   `json:"tool_diameter,omitempty"`
	ProcessFactor float64   `json:"process_factor,omitempty"`
}

func (in SurfaceInput) factor() float64 {
	if in.ProcessFactor > 0 {
		return in.ProcessFactor
	}
	return DefaultProcessFactor
}

// SurfaceResult is the predicted roughness profile.
type SurfaceResult struct {
	RaTheoretical float64 `json:"ra_theoretical"` // μm
	RaActual      float64 `json:"ra_actual"`      // μm
	Rz            float64 `json:"rz"`             // μm
	Rt            float64 `json:"rt"`             // μm
	RzRatio       float64 `json:"rz_ratio"`
	ISOGrade      string  `json:"iso_grade"`
	Warnings      `json:"warnings"`
}

// SurfaceFinish predicts Ra, Rz and Rt from the feed mark geometry.
type SurfaceFinish struct{}

func (SurfaceFinish) Validate(in SurfaceInput) ValidationResult {
	var v validator
	if !in.Operation.Valid() {
		v.errorf("operation", "unknown operation %q", in.Operation)
	}
	v.check(surfaceLimits, "feed", in.Feed)
	v.check(surfaceLimits, "nose_radius", in.NoseRadius)
	v.check(surfaceLimits, "process_factor", in.ProcessFactor)
	aeOK := v.check(surfaceLimits, "radial_depth", in.RadialDepth)
	dOK := v.check(surfaceLimits, "tool_diameter", in.ToolDiameter)
	if in.Operation == OpMilling {
		if aeOK && in.RadialDepth <= 0 {
			v.errorf("radial_depth", "milling requires a positive radial depth")
		}
		if dOK && in.ToolDiameter <= 0 {
			v.errorf("tool_diameter", "milling requires a positive tool diameter")
		}
	}
	if in.NoseRadius > 0 && in.Feed > 2*in.NoseRadius {
		v.warnf("feed", "feed %g mm exceeds twice the nose radius; the parabolic approximation breaks down", in.Feed)
	}
	return v.result()
}

func (SurfaceFinish) Calculate(in SurfaceInput) SurfaceResult {
	var out SurfaceResult

	r := math.Max(in.NoseRadius, epsilon)
	f2 := in.Feed * in.Feed
	var raMM float64
	if in.Operation == OpMilling {
		d := math.Max(in.ToolDiameter, epsilon)
		raMM = f2 * in.RadialDepth / (32 * d * r)
	} else {
		raMM = f2 / (32 * r)
	}
	theoretical := finite(raMM*1000, MaxRoughness)

	actual := theoretical * in.factor()
	if !isFinite(actual) || actual > MaxRoughness {
		out.add(WarnRaClamped, "Ra %.4g μm capped at %.0f μm", actual, MaxRoughness)
		actual = MaxRoughness
	}

	ratio, ok := rzRatio[in.Operation]
	if !ok {
		ratio = rzRatio[OpTurning]
	}

	out.RaTheoretical = math.Min(theoretical, MaxRoughness)
	out.RaActual = actual
	out.RzRatio = ratio
	out.Rz = actual * ratio
	out.Rt = 1.3 * out.Rz

	grade, inRange := GradeFor(actual)
	if !inRange {
		out.add(WarnGradeOutOfRange, "Ra %.4g μm is coarser than %s", actual, ISOGrades[len(ISOGrades)-1].Grade)
	}
	out.ISOGrade = grade
	return out
}

func (SurfaceFinish) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDSurfaceFinish,
		Name:        "Surface finish",
		Description: "Kinematic feed-mark roughness scaled by a process factor and mapped to an ISO N grade",
		Formula:     "Ra = f²/(32·R) (turning); Ra = f²·ae/(32·D·R) (milling); Rz = Ra·ratio; Rt = 1.3·Rz",
		Reference:   "ISO 4287, ISO 1302",
		SafetyClass: SafetyStandard,
		Domain:      "surface",
		Inputs: map[string]ParamSpec{
			"operation":      {Unit: "", Description: "turning, milling, grinding, boring or reaming"},
			"feed":           {Unit: "mm", Description: "feed per revolution or per tooth"},
			"nose_radius":    {Unit: "mm", Description: "tool nose radius R"},
			"process_factor": {Unit: "", Description: "empirical multiplier, default 2"},
		},
		Outputs: map[string]ParamSpec{
			"ra_actual": {Unit: "μm", Description: "arithmetic mean roughness, capped at 100"},
			"rz":        {Unit: "μm", Description: "mean roughness depth"},
			"rt":        {Unit: "μm", Description: "total profile height"},
			"iso_grade": {Unit: "", Description: "ISO N class"},
		},
	}
}
