package cutlaw

// CuttingConditions is the immutable set of process parameters for one cut.
type CuttingConditions struct {
	CuttingSpeed  float64 `json:"cutting_speed"`   // V, m/min
	FeedPerTooth  float64 `json:"feed_per_tooth"`  // fz, mm
	AxialDepth    float64 `json:"axial_depth"`     // ap, mm
	RadialDepth   float64 `json:"radial_depth"`    // ae, mm
	ToolDiameter  float64 `json:"tool_diameter"`   // D, mm
	NumberOfTeeth int     `json:"number_of_teeth"` // z
}

// EngagementRatio returns ae/D limited to [0, 1].
func (c CuttingConditions) EngagementRatio() float64 {
	if c.ToolDiameter <= 0 {
		return 0
	}
	r := c.RadialDepth / c.ToolDiameter
	switch {
	case r > 1:
		return 1
	case r >= 0:
		return r
	}
	return 0
}

// ISOGroup is the ISO 513 workpiece material group.
type ISOGroup string

const (
	ISOSteel      ISOGroup = "P"
	ISOStainless  ISOGroup = "M"
	ISOCastIron   ISOGroup = "K"
	ISONonFerrous ISOGroup = "N"
	ISOSuperalloy ISOGroup = "S"
	ISOHardened   ISOGroup = "H"
)

// Valid reports whether g is one of the six ISO 513 groups.
func (g ISOGroup) Valid() bool {
	switch g {
	case ISOSteel, ISOStainless, ISOCastIron, ISONonFerrous, ISOSuperalloy, ISOHardened:
		return true
	}
	return false
}

// KienzleCoefficients come from the material registry.
type KienzleCoefficients struct {
	Kc11     float64  `json:"kc1_1"` // specific cutting force at h = b = 1 mm, N/mm²
	Mc       float64  `json:"mc"`    // chip-thickness exponent
	ISOGroup ISOGroup `json:"iso_group"`
}

// TaylorCoefficients come from the tool registry.
// FeedExponent and DepthExponent select the extended form when non-zero.
type TaylorCoefficients struct {
	C             float64 `json:"C"`
	N             float64 `json:"n"`
	ToolMaterial  string  `json:"tool_material"`
	FeedExponent  float64 `json:"feed_exponent,omitempty"`
	DepthExponent float64 `json:"depth_exponent,omitempty"`
}

// JohnsonCookCoefficients come from the material registry.
// Temperatures are in °C.
type JohnsonCookCoefficients struct {
	A             float64 `json:"A"`      // yield stress, MPa
	B             float64 `json:"B"`      // hardening modulus, MPa
	N             float64 `json:"n"`      // hardening exponent
	C             float64 `json:"C"`      // strain-rate coefficient
	M             float64 `json:"m"`      // thermal-softening exponent
	TMelt         float64 `json:"T_melt"` // melting temperature
	TRef          float64 `json:"T_ref,omitempty"`
	RefStrainRate float64 `json:"ref_strain_rate,omitempty"`
}

// Defaults applied when the registry leaves reference values unset.
const (
	DefaultReferenceTemperature = 20.0 // °C
	DefaultReferenceStrainRate  = 1.0  // 1/s
)

func (j JohnsonCookCoefficients) reference() (tRef, rate0 float64) {
	tRef, rate0 = j.TRef, j.RefStrainRate
	if tRef == 0 {
		tRef = DefaultReferenceTemperature
	}
	if rate0 <= 0 {
		rate0 = DefaultReferenceStrainRate
	}
	return tRef, rate0
}
