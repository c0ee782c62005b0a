package cutlaw

import "math"

// Limit is one row of a bound table.
//
// Values below Min (or equal to it when Exclusive) and above Max (when Max > 0)
// are validation errors. WarnAbove and WarnBelow, when non-zero, bound the
// advisory band.
type Limit struct {
	Unit      string  `json:"unit"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Exclusive bool    `json:"exclusive"`
	WarnBelow float64 `json:"warn_below,omitempty"`
	WarnAbove float64 `json:"warn_above,omitempty"`
}

// LimitTable maps an input field name to its bounds.
type LimitTable map[string]Limit

// Safety ceilings. Outputs above these are clamped and a warning is appended.
const (
	MaxCuttingForce   = 100_000.0   // N
	MaxToolLife       = 100_000.0   // min
	MaxSpindleSpeed   = 60_000.0    // rpm
	MaxFeedRate       = 50_000.0    // mm/min
	MaxFlowStress     = 10_000.0    // MPa
	MaxFlankWear      = 2.0         // mm
	MaxWearLife       = 1_000_000.0 // min
	MaxThinningFactor = 5.0
	MaxRoughness      = 100.0 // μm
	MaxTeeth          = 64
	MaxFFTLength      = 1 << 20
	MaxClusterPoints  = 20_000
	MaxClusterDims    = 64
	MaxClusterK       = 50
	MaxWearSteps      = 100_000
	MinWearSteps      = 10
)

// Ceilings on derived outputs. Inputs inside the limit tables stay below
// these; they bind only when Calculate runs on unvalidated input.
const (
	MaxCuttingSpeed    = 2_000.0      // m/min
	MaxSpecificForce   = 1e10         // N/mm²
	MaxPower           = 5_000_000.0  // W
	MaxTorque          = 50_000.0     // N·m
	MaxRemovalRate     = 10_000_000.0 // cm³/min
	MaxFeedPerRev      = 320.0        // mm
	MaxCompensatedFeed = 25.0         // mm
	MaxSpeedRatio      = 1_000.0
)

// Singularity floors.
const (
	minChipThickness = 1e-6 // mm
	minStrain        = 1e-9
	minAngle         = 1e-3 // rad
	epsilon          = 1e-12
)

var conditionLimits = LimitTable{
	"cutting_speed":  {Unit: "m/min", Min: 0, Max: MaxCuttingSpeed, Exclusive: true, WarnAbove: 1000},
	"feed_per_tooth": {Unit: "mm", Min: 0, Max: 5, Exclusive: true, WarnAbove: 1},
	"axial_depth":    {Unit: "mm", Min: 0, Max: 200, Exclusive: true, WarnAbove: 50},
	"radial_depth":   {Unit: "mm", Min: 0, Max: 500, Exclusive: true},
	"tool_diameter":  {Unit: "mm", Min: 0, Max: 500, Exclusive: true, WarnBelow: 0.5},
}

var kienzleLimits = merge(conditionLimits, LimitTable{
	"kc1_1": {Unit: "N/mm²", Min: 0, Max: 10000, Exclusive: true},
	"mc":    {Unit: "", Min: 0, Max: 1, WarnAbove: 0.5},
})

var taylorLimits = LimitTable{
	"cutting_speed":  {Unit: "m/min", Min: 0, Max: MaxCuttingSpeed, Exclusive: true},
	"C":              {Unit: "m/min", Min: 0, Max: 10000, Exclusive: true},
	"n":              {Unit: "", Min: 0, Max: 1, Exclusive: true},
	"feed":           {Unit: "mm", Min: 0, Max: 5},
	"depth_of_cut":   {Unit: "mm", Min: 0, Max: 200},
	"feed_exponent":  {Unit: "", Min: 0, Max: 2},
	"depth_exponent": {Unit: "", Min: 0, Max: 2},
	"target_life":    {Unit: "min", Min: 0, Max: MaxToolLife},
}

var johnsonCookLimits = LimitTable{
	"strain":          {Unit: "", Min: 0, Max: 100, WarnAbove: 5},
	"strain_rate":     {Unit: "1/s", Min: 0, Max: 1e9, WarnAbove: 1e6},
	"temperature":     {Unit: "°C", Min: -273.15, Max: 5000},
	"A":               {Unit: "MPa", Min: 0, Max: 10000},
	"B":               {Unit: "MPa", Min: 0, Max: 10000},
	"n":               {Unit: "", Min: 0, Max: 2},
	"C":               {Unit: "", Min: 0, Max: 1},
	"m":               {Unit: "", Min: 0, Max: 5, Exclusive: true},
	"T_melt":          {Unit: "°C", Min: 0, Max: 5000, Exclusive: true},
	"ref_strain_rate": {Unit: "1/s", Min: 0, Max: 1e6},
}

var usuiLimits = LimitTable{
	"cutting_time":     {Unit: "min", Min: 0, Max: 100_000, Exclusive: true},
	"normal_stress":    {Unit: "MPa", Min: 0, Max: 10_000, Exclusive: true},
	"sliding_velocity": {Unit: "m/min", Min: 0, Max: 5000, Exclusive: true},
	"temperature":      {Unit: "K", Min: 0, Max: 3000, Exclusive: true, WarnAbove: 1500},
	"A":                {Unit: "", Min: 0, Max: 1, Exclusive: true},
	"B":                {Unit: "K", Min: 0, Max: 1e6},
	"vb_limit":         {Unit: "mm", Min: 0, Max: MaxFlankWear, Exclusive: true},
}

var chipThinningLimits = LimitTable{
	"feed_per_tooth": {Unit: "mm", Min: 0, Max: 5, Exclusive: true},
	"radial_depth":   {Unit: "mm", Min: 0, Max: 500, Exclusive: true},
	"tool_diameter":  {Unit: "mm", Min: 0, Max: 500, Exclusive: true},
	"spindle_rpm":    {Unit: "rpm", Min: 0, Max: MaxSpindleSpeed},
}

var surfaceLimits = LimitTable{
	"feed":           {Unit: "mm", Min: 0, Max: 5, Exclusive: true},
	"nose_radius":    {Unit: "mm", Min: 0, Max: 50, Exclusive: true, WarnBelow: 0.1},
	"radial_depth":   {Unit: "mm", Min: 0, Max: 500},
	"tool_diameter":  {Unit: "mm", Min: 0, Max: 500},
	"process_factor": {Unit: "", Min: 0, Max: 10, WarnAbove: 5},
}

var vibrationLimits = LimitTable{
	"sample_rate":   {Unit: "Hz", Min: 0, Max: 1e7, Exclusive: true},
	"min_frequency": {Unit: "Hz", Min: 0, Max: 1e7},
	"max_frequency": {Unit: "Hz", Min: 0, Max: 1e7},
}

var clusterLimits = LimitTable{}

// Limits returns a copy of the bound table for an algorithm ID.
func Limits(id string) (LimitTable, bool) {
	var table LimitTable
	switch id {
	case IDKienzle:
		table = kienzleLimits
	case IDSpeedFeed:
		table = conditionLimits
	case IDTaylor:
		table = taylorLimits
	case IDJohnsonCook:
		table = johnsonCookLimits
	case IDUsui:
		table = usuiLimits
	case IDChipThinning:
		table = chipThinningLimits
	case IDSurfaceFinish:
		table = surfaceLimits
	case IDVibration:
		table = vibrationLimits
	case IDKMeans:
		table = clusterLimits
	default:
		return nil, false
	}
	return merge(table), true
}

func merge(tables ...LimitTable) LimitTable {
	out := make(LimitTable)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// finite replaces NaN and ±Inf with a fallback. Used as a last line of defence
// on computed values.
func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
