package cutlaw

import "math"

// Johnson-Cook thresholds.
const (
	maxHomologousTemperature = 0.999
	nearMeltThreshold        = 0.8
	extremeStrainRate        = 1e6 // 1/s
)

// JohnsonCookInput is a single material point.
type JohnsonCookInput struct {
	Strain       float64                 `json:"strain"`
	StrainRate   float64                 `json:"strain_rate"` // 1/s
	Temperature  float64                 `json:"temperature"` // °C
	Coefficients JohnsonCookCoefficients `json:"coefficients"`
}

// JohnsonCookResult is the flow stress and its three factors.
type JohnsonCookResult struct {
	FlowStress            float64 `json:"flow_stress"`            // MPa
	StrainTerm            float64 `json:"strain_term"`            // A + B·ε^n
	RateTerm              float64 `json:"rate_term"`              // 1 + C·ln(ε̇/ε̇₀)
	ThermalTerm           float64 `json:"thermal_term"`           // 1 − T*^m
	HomologousTemperature float64 `json:"homologous_temperature"` // T*
	Warnings              `json:"warnings"`
}

// JohnsonCook is the flow-stress model. It has no hard gate; it is used on
// reviewed paths.
type JohnsonCook struct{}

func (JohnsonCook) Validate(in JohnsonCookInput) ValidationResult {
	var v validator
	co := in.Coefficients
	v.check(johnsonCookLimits, "strain", in.Strain)
	v.check(johnsonCookLimits, "strain_rate", in.StrainRate)
	tempOK := v.check(johnsonCookLimits, "temperature", in.Temperature)
	v.check(johnsonCookLimits, "A", co.A)
	v.check(johnsonCookLimits, "B", co.B)
	v.check(johnsonCookLimits, "n", co.N)
	v.check(johnsonCookLimits, "C", co.C)
	v.check(johnsonCookLimits, "m", co.M)
	v.check(johnsonCookLimits, "ref_strain_rate", co.RefStrainRate)
	meltOK := v.check(johnsonCookLimits, "T_melt", co.TMelt)

	tRef, _ := co.reference()
	if meltOK && co.TMelt <= tRef {
		v.errorf("T_melt", "melting temperature %g °C must exceed reference temperature %g °C", co.TMelt, tRef)
		meltOK = false
	}
	if tempOK && meltOK {
		if in.Temperature >= co.TMelt {
			v.errorf("temperature", "temperature %g °C is at or above the melting point %g °C", in.Temperature, co.TMelt)
		} else if homologous(in.Temperature, tRef, co.TMelt) > nearMeltThreshold {
			v.warnf("temperature", "temperature is above %.0f%% of the melting range", 100*nearMeltThreshold)
		}
	}
	return v.result()
}

func homologous(t, tRef, tMelt float64) float64 {
	span := tMelt - tRef
	if span <= epsilon {
		return maxHomologousTemperature
	}
	ts := (t - tRef) / span
	if !(ts > 0) {
		return 0
	}
	return math.Min(ts, maxHomologousTemperature)
}

func (JohnsonCook) Calculate(in JohnsonCookInput) JohnsonCookResult {
	var out JohnsonCookResult
	co := in.Coefficients
	tRef, rate0 := co.reference()

	strain := math.Max(in.Strain, minStrain)
	strainTerm := co.A + co.B*math.Pow(strain, co.N)

	rateRatio := math.Max(in.StrainRate/rate0, 1)
	rateTerm := 1 + co.C*math.Log(rateRatio)

	ts := homologous(in.Temperature, tRef, co.TMelt)
	thermalTerm := 1 - math.Pow(ts, co.M)

	if ts > nearMeltThreshold {
		out.add(WarnNearMelt, "homologous temperature %.3f above %.1f; thermal softening dominates", ts, nearMeltThreshold)
	}
	if in.StrainRate > extremeStrainRate {
		out.add(WarnExtremeStrainRate, "strain rate %.3g /s exceeds %.0g /s; model is extrapolated", in.StrainRate, extremeStrainRate)
	}

	stress := strainTerm * rateTerm * thermalTerm
	if !isFinite(stress) || stress > MaxFlowStress {
		out.add(WarnStressClamped, "flow stress %.0f MPa capped at %.0f MPa", stress, MaxFlowStress)
		stress = MaxFlowStress
	}
	if stress < 0 {
		stress = 0
	}

	out.FlowStress = stress
	out.StrainTerm = finite(strainTerm, 0)
	out.RateTerm = finite(rateTerm, 1)
	out.ThermalTerm = finite(thermalTerm, 0)
	out.HomologousTemperature = ts
	return out
}

func (JohnsonCook) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDJohnsonCook,
		Name:        "Johnson-Cook flow stress",
		Description: "Flow stress as a function of strain, strain rate and temperature",
		Formula:     "σ = [A + B·ε^n]·[1 + C·ln(ε̇/ε̇₀)]·[1 − T*^m]",
		Reference:   "Johnson, G. R., Cook, W. H. (1983) A constitutive model and data for metals",
		SafetyClass: SafetyStandard,
		Domain:      "thermomechanics",
		Inputs: map[string]ParamSpec{
			"strain":      {Unit: "", Description: "equivalent plastic strain ε"},
			"strain_rate": {Unit: "1/s", Description: "strain rate ε̇"},
			"temperature": {Unit: "°C", Description: "workpiece temperature T"},
		},
		Outputs: map[string]ParamSpec{
			"flow_stress":  {Unit: "MPa", Description: "flow stress σ, capped at 10000"},
			"thermal_term": {Unit: "", Description: "thermal softening factor"},
		},
	}
}
