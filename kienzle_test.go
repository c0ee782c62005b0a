package cutlaw

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 4140 annealed, ISO P.
var steel4140 = KienzleCoefficients{Kc11: 1700, Mc: 0.25, ISOGroup: ISOSteel}

func slotConditions() CuttingConditions {
	return CuttingConditions{
		CuttingSpeed:  200,
		FeedPerTooth:  0.1,
		AxialDepth:    2,
		RadialDepth:   6,
		ToolDiameter:  12,
		NumberOfTeeth: 4,
	}
}

func TestKienzle_Steel4140(t *testing.T) {
	out, err := KienzleCuttingForce(slotConditions(), steel4140)
	require.NoError(t, err)

	assert.Greater(t, out.CuttingForce, 0.0)
	assert.Greater(t, out.Power, 0.0)
	assert.Equal(t, 0.40, out.FeedForceRatio)
	assert.Equal(t, 0.30, out.PassiveForceRatio)
	assert.InDelta(t, 0.40, out.FeedForce/out.CuttingForce, 1e-12)
	assert.InDelta(t, 0.30, out.PassiveForce/out.CuttingForce, 1e-12)

	// Half immersion: φe = 90°, h = fz·2/π.
	assert.InDelta(t, 90, out.EngagementAngle, 1e-9)
	assert.InDelta(t, 0.2/math.Pi, out.ChipThickness, 1e-12)
	assert.InDelta(t, out.CuttingForce*200/60, out.Power, 1e-9)
	assert.InDelta(t, out.Power/1000, out.PowerKW, 1e-12)
	AssertNoWarnings(t, out)
	AssertFinite(t, out)
}

func TestKienzle_ForceRatiosByGroup(t *testing.T) {
	tests := []struct {
		group         ISOGroup
		feed, passive float64
	}{
		{ISOSteel, 0.40, 0.30},
		{ISOStainless, 0.45, 0.35},
		{ISONonFerrous, 0.30, 0.20},
		{ISOSuperalloy, 0.50, 0.40},
		{ISOCastIron, 0.40, 0.30},
		{ISOHardened, 0.40, 0.30},
		{"", 0.40, 0.30},
	}
	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			co := steel4140
			co.ISOGroup = tt.group
			out, err := KienzleCuttingForce(slotConditions(), co)
			require.NoError(t, err)
			assert.Equal(t, tt.feed, out.FeedForceRatio)
			assert.Equal(t, tt.passive, out.PassiveForceRatio)
		})
	}
}

func TestKienzle_AluminumBelowSteel(t *testing.T) {
	al := KienzleCoefficients{Kc11: 700, Mc: 0.25, ISOGroup: ISONonFerrous}

	steel, err := KienzleCuttingForce(slotConditions(), steel4140)
	require.NoError(t, err)
	alu, err := KienzleCuttingForce(slotConditions(), al)
	require.NoError(t, err)

	assert.Less(t, alu.SpecificForce, steel.SpecificForce)
	assert.Less(t, alu.CuttingForce, steel.CuttingForce)
}

func TestKienzle_Warnings(t *testing.T) {
	t.Run("light engagement inflates kc", func(t *testing.T) {
		c := slotConditions()
		c.RadialDepth = 0.1
		out, err := KienzleCuttingForce(c, steel4140)
		require.NoError(t, err)
		AssertWarning(t, out, WarnKcInflated)
		AssertFinite(t, out)
	})

	t.Run("full slot", func(t *testing.T) {
		c := slotConditions()
		c.RadialDepth = c.ToolDiameter
		out, err := KienzleCuttingForce(c, steel4140)
		require.NoError(t, err)
		AssertWarning(t, out, WarnFullSlot)
		assert.InDelta(t, 180, out.EngagementAngle, 1e-9)
	})

	t.Run("force clamped", func(t *testing.T) {
		c := CuttingConditions{CuttingSpeed: 100, FeedPerTooth: 4.9, AxialDepth: 199, RadialDepth: 20, ToolDiameter: 20, NumberOfTeeth: 2}
		out, err := KienzleCuttingForce(c, KienzleCoefficients{Kc11: 9999, Mc: 0})
		require.NoError(t, err)
		AssertWarning(t, out, WarnForceClamped)
		assert.Equal(t, MaxCuttingForce, out.CuttingForce)
	})
}

func TestKienzle_SafetyBlock(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CuttingConditions, *KienzleCoefficients)
		field  string
	}{
		{"negative axial depth", func(c *CuttingConditions, _ *KienzleCoefficients) { c.AxialDepth = -1 }, "axial_depth"},
		{"zero diameter", func(c *CuttingConditions, _ *KienzleCoefficients) { c.ToolDiameter = 0 }, "tool_diameter"},
		{"NaN speed", func(c *CuttingConditions, _ *KienzleCoefficients) { c.CuttingSpeed = math.NaN() }, "cutting_speed"},
		{"infinite feed", func(c *CuttingConditions, _ *KienzleCoefficients) { c.FeedPerTooth = math.Inf(1) }, "feed_per_tooth"},
		{"zero teeth", func(c *CuttingConditions, _ *KienzleCoefficients) { c.NumberOfTeeth = 0 }, "number_of_teeth"},
		{"zero kc", func(_ *CuttingConditions, k *KienzleCoefficients) { k.Kc11 = 0 }, "kc1_1"},
		{"negative mc", func(_ *CuttingConditions, k *KienzleCoefficients) { k.Mc = -0.1 }, "mc"},
		{"mc of one", func(_ *CuttingConditions, k *KienzleCoefficients) { k.Mc = 1 }, "mc"},
		{"speed above max", func(c *CuttingConditions, _ *KienzleCoefficients) { c.CuttingSpeed = 1e307 }, "cutting_speed"},
		{"diameter above max", func(c *CuttingConditions, _ *KienzleCoefficients) { c.ToolDiameter = 1e12 }, "tool_diameter"},
		{"kc above max", func(_ *CuttingConditions, k *KienzleCoefficients) { k.Kc11 = 1e6 }, "kc1_1"},
		// NaN is reported before a negative value elsewhere.
		{"NaN after negative", func(c *CuttingConditions, _ *KienzleCoefficients) {
			c.CuttingSpeed = -5
			c.ToolDiameter = math.NaN()
		}, "tool_diameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, k := slotConditions(), steel4140
			tt.mutate(&c, &k)
			out, err := KienzleCuttingForce(c, k)
			AssertSafetyBlock(t, err, tt.field)
			assert.Zero(t, out.CuttingForce)
		})
	}
}

func TestKienzleAlgorithm_Validate(t *testing.T) {
	alg := KienzleAlgorithm{}

	vr := alg.Validate(KienzleInput{Conditions: slotConditions(), Coefficients: steel4140})
	assert.True(t, vr.Valid)
	assert.Empty(t, vr.Issues)

	c := slotConditions()
	c.AxialDepth = -2
	AssertRejected(t, alg.Validate(KienzleInput{Conditions: c, Coefficients: steel4140}), "axial_depth")

	c = slotConditions()
	c.RadialDepth = 14
	vr = alg.Validate(KienzleInput{Conditions: c, Coefficients: steel4140})
	assert.True(t, vr.Valid)
	require.Len(t, vr.Warnings(), 1)
	assert.Equal(t, "radial_depth", vr.Warnings()[0].Field)

	vr = alg.Validate(KienzleInput{Conditions: slotConditions(), Coefficients: KienzleCoefficients{Kc11: 1700, Mc: 0.25, ISOGroup: "X"}})
	assert.True(t, vr.Valid)
	assert.Len(t, vr.Warnings(), 1)
}

func TestKienzleAlgorithm_CalculateMatchesKernel(t *testing.T) {
	in := KienzleInput{Conditions: slotConditions(), Coefficients: steel4140}
	kernel, err := KienzleCuttingForce(in.Conditions, in.Coefficients)
	require.NoError(t, err)
	assert.Equal(t, kernel, KienzleAlgorithm{}.Calculate(in))
}

func TestKienzleAlgorithm_CalculateNeverNonFinite(t *testing.T) {
	// Calculate is reachable without Validate; it must still stay finite.
	in := KienzleInput{
		Conditions:   CuttingConditions{CuttingSpeed: 100, FeedPerTooth: 0, AxialDepth: 1, RadialDepth: 0, ToolDiameter: 0},
		Coefficients: KienzleCoefficients{Kc11: 1500, Mc: 0.9},
	}
	AssertFinite(t, KienzleAlgorithm{}.Calculate(in))
}

func TestKienzleAlgorithm_DerivedOutputsClamped(t *testing.T) {
	t.Run("power", func(t *testing.T) {
		c := slotConditions()
		c.CuttingSpeed = 1e307
		out := KienzleAlgorithm{}.Calculate(KienzleInput{Conditions: c, Coefficients: steel4140})
		AssertWarning(t, out, WarnPowerClamped)
		assert.Equal(t, MaxPower, out.Power)
		assert.Equal(t, MaxPower/1000, out.PowerKW)
		AssertFinite(t, out)
	})

	t.Run("torque", func(t *testing.T) {
		c := slotConditions()
		c.ToolDiameter = 1e12
		c.RadialDepth = 1e11
		out := KienzleAlgorithm{}.Calculate(KienzleInput{Conditions: c, Coefficients: steel4140})
		AssertWarning(t, out, WarnTorqueClamped)
		assert.Equal(t, MaxTorque, out.Torque)
		AssertFinite(t, out)
	})
}
