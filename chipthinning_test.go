package cutlaw

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChipThinning_LightEngagement(t *testing.T) {
	out := ChipThinning{}.Calculate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 1.2, ToolDiameter: 12})

	phi := math.Acos(0.8)
	hex := 0.1 * 0.2 / phi
	assert.InDelta(t, 0.10, out.EngagementRatio, 1e-12)
	assert.InDelta(t, phi*180/math.Pi, out.EngagementAngle, 1e-9)
	assert.InDelta(t, hex, out.EquivalentChipThickness, 1e-12)
	assert.InDelta(t, 0.1/hex, out.ChipThinningFactor, 1e-9)
	assert.InDelta(t, 3.2175, out.ChipThinningFactor, 1e-4)
	assert.InDelta(t, 0.1*out.ChipThinningFactor, out.CompensatedFeedPerTooth, 1e-12)
	assert.Zero(t, out.OriginalFeedRate)
	AssertNoWarnings(t, out)
}

func TestChipThinning_FullSlot(t *testing.T) {
	for _, ae := range []float64{12, 11.99, 15} {
		out := ChipThinning{}.Calculate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: ae, ToolDiameter: 12})
		assert.Equal(t, 1.0, out.ChipThinningFactor, "ae=%g", ae)
		assert.Equal(t, 0.1, out.CompensatedFeedPerTooth, "ae=%g", ae)
	}
}

func TestChipThinning_FactorCapped(t *testing.T) {
	out := ChipThinning{}.Calculate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 0.05, ToolDiameter: 12})
	assert.Equal(t, MaxThinningFactor, out.ChipThinningFactor)
	AssertWarning(t, out, WarnFactorCapped)

	// A vanishing engagement hits the angle floor and stays finite.
	tiny := ChipThinning{}.Calculate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 1e-12, ToolDiameter: 12})
	AssertFinite(t, tiny)
	assert.LessOrEqual(t, tiny.ChipThinningFactor, MaxThinningFactor)
}

func TestChipThinning_FeedRates(t *testing.T) {
	out := ChipThinning{}.Calculate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 1.2, ToolDiameter: 12, SpindleRPM: 1000, NumberOfTeeth: 4})
	assert.InDelta(t, 400, out.OriginalFeedRate, 1e-9)
	assert.InDelta(t, 400*out.ChipThinningFactor, out.CompensatedFeedRate, 1e-9)
}

func TestChipThinning_Validate(t *testing.T) {
	alg := ChipThinning{}
	assert.True(t, alg.Validate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 1.2, ToolDiameter: 12}).Valid)

	AssertRejected(t, alg.Validate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 1.2, ToolDiameter: 0}), "tool_diameter")
	AssertRejected(t, alg.Validate(ChipThinningInput{FeedPerTooth: 0, RadialDepth: 1.2, ToolDiameter: 12}), "feed_per_tooth")
	AssertRejected(t, alg.Validate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 1.2, ToolDiameter: 12, NumberOfTeeth: -2}), "number_of_teeth")

	vr := alg.Validate(ChipThinningInput{FeedPerTooth: 0.1, RadialDepth: 14, ToolDiameter: 12})
	assert.True(t, vr.Valid)
	assert.Len(t, vr.Warnings(), 1)
}
