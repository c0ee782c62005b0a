package cutlaw

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

func sine(n int, fs float64, tones ...[2]float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		ts := float64(i) / fs
		for _, tone := range tones {
			out[i] += tone[1] * math.Sin(2*math.Pi*tone[0]*ts)
		}
	}
	return out
}

func TestVibration_DominantPeak(t *testing.T) {
	in := VibrationInput{Signal: sine(1024, 1000, [2]float64{120, 1}), SampleRate: 1000}
	require.True(t, Vibration{}.Validate(in).Valid)

	out := Vibration{}.Calculate(in)
	assert.Equal(t, 1024, out.NFFT)
	assert.Equal(t, WindowHann, out.Window)
	assert.InDelta(t, 1000.0/1024, out.FrequencyResolution, 1e-12)
	assert.InDelta(t, 120, out.DominantFrequency, 0.98)
	assert.InDelta(t, 1, out.DominantMagnitude, 0.2)
	assert.InDelta(t, 1/math.Sqrt2, out.RMS, 1e-2)
	assert.LessOrEqual(t, len(out.Peaks), DefaultTopPeaks)
	AssertFinite(t, out)
}

func TestVibration_Harmonics(t *testing.T) {
	in := VibrationInput{
		Signal:     sine(1024, 1024, [2]float64{128, 1}, [2]float64{256, 0.5}),
		SampleRate: 1024,
		Window:     WindowRectangular,
	}
	out := Vibration{}.Calculate(in)

	require.GreaterOrEqual(t, len(out.Peaks), 2)
	assert.Equal(t, 128.0, out.Peaks[0].Frequency)
	assert.InDelta(t, 1, out.Peaks[0].Magnitude, 1e-9)
	assert.False(t, out.Peaks[0].IsHarmonic)

	second := out.Peaks[1]
	assert.Equal(t, 256.0, second.Frequency)
	assert.InDelta(t, 0.5, second.Magnitude, 1e-9)
	assert.True(t, second.IsHarmonic)
	assert.Equal(t, 128.0, second.HarmonicOf)
	assert.Equal(t, 2, second.HarmonicOrder)
}

func TestVibration_Band(t *testing.T) {
	in := VibrationInput{
		Signal:       sine(1024, 1024, [2]float64{128, 1}, [2]float64{300, 0.5}),
		SampleRate:   1024,
		Window:       WindowRectangular,
		MinFrequency: 200,
	}
	out := Vibration{}.Calculate(in)
	require.NotEmpty(t, out.Peaks)
	assert.Equal(t, 300.0, out.DominantFrequency)
	for _, p := range out.Peaks {
		assert.GreaterOrEqual(t, p.Frequency, 200.0)
	}
}

func TestVibration_MatchesReferenceFFT(t *testing.T) {
	const n = 256
	signal := make([]float64, n)
	for i := range signal {
		x := float64(i)
		signal[i] = math.Sin(0.3*x) + 0.25*math.Cos(1.7*x) + 0.1*math.Sin(0.05*x*x)
	}

	buf := make([]complex128, n)
	for i, x := range signal {
		buf[i] = complex(x, 0)
	}
	fft(buf)

	ref := fourier.NewFFT(n).Coefficients(nil, signal)
	require.Len(t, ref, n/2+1)
	for k, c := range ref {
		assert.InDelta(t, cmplx.Abs(c), cmplx.Abs(buf[k]), 1e-9, "bin %d", k)
	}

	// The one-sided spectrum is the scaled reference magnitude.
	out := Vibration{}.Calculate(VibrationInput{Signal: signal, SampleRate: n, Window: WindowRectangular, IncludeSpectrum: true, IncludePSD: true})
	require.Len(t, out.Magnitudes, n/2+1)
	require.Len(t, out.PSD, n/2+1)
	for k, c := range ref {
		want := cmplx.Abs(c) / n
		if k != 0 && k != n/2 {
			want *= 2
		}
		assert.InDelta(t, want, out.Magnitudes[k], 1e-9, "bin %d", k)
		assert.InDelta(t, want*want/2, out.PSD[k], 1e-9, "bin %d", k)
	}
}

func TestVibration_ZeroPadding(t *testing.T) {
	out := Vibration{}.Calculate(VibrationInput{Signal: sine(1000, 1000, [2]float64{50, 1}), SampleRate: 1000})
	assert.Equal(t, 1024, out.NFFT)
	assert.Equal(t, 1000, out.SamplesUsed)
	assert.InDelta(t, 50, out.DominantFrequency, 1000.0/1024)
}

func TestVibration_NoPeaks(t *testing.T) {
	flat := make([]float64, 256)
	for i := range flat {
		flat[i] = 3
	}
	out := Vibration{}.Calculate(VibrationInput{Signal: flat, SampleRate: 256, Window: WindowRectangular})
	assert.Empty(t, out.Peaks)
	assert.NotNil(t, out.Peaks)
	assert.Zero(t, out.DominantFrequency)
	AssertWarning(t, out, WarnNoPeaks)
	AssertFinite(t, out)
}

func TestVibration_Truncates(t *testing.T) {
	if testing.Short() {
		t.Skip("large transform")
	}
	out := Vibration{}.Calculate(VibrationInput{Signal: make([]float64, MaxFFTLength+1), SampleRate: 1000})
	AssertWarning(t, out, WarnTruncated)
	assert.Equal(t, MaxFFTLength, out.SamplesUsed)
	assert.Equal(t, MaxFFTLength, out.NFFT)
}

func TestWindow_Coefficients(t *testing.T) {
	for _, w := range []Window{WindowRectangular, WindowHann, WindowHamming, WindowBlackman, WindowFlatTop} {
		t.Run(string(w), func(t *testing.T) {
			c := w.Coefficients(9)
			require.Len(t, c, 9)
			// Symmetric windows peak at the centre.
			for i := range c {
				assert.InDelta(t, c[i], c[len(c)-1-i], 1e-12)
			}
			assert.InDelta(t, 1, c[4], 1e-6)
		})
	}
	hann := WindowHann.Coefficients(9)
	assert.InDelta(t, 0, hann[0], 1e-12)
	assert.Equal(t, []float64{1}, WindowBlackman.Coefficients(1))
}

func TestVibration_Validate(t *testing.T) {
	alg := Vibration{}
	good := sine(64, 100, [2]float64{10, 1})

	assert.True(t, alg.Validate(VibrationInput{Signal: good, SampleRate: 100}).Valid)
	AssertRejected(t, alg.Validate(VibrationInput{Signal: good, SampleRate: 0}), "sample_rate")
	AssertRejected(t, alg.Validate(VibrationInput{Signal: []float64{1}, SampleRate: 100}), "signal")
	AssertRejected(t, alg.Validate(VibrationInput{Signal: good, SampleRate: 100, Window: "kaiser"}), "window")
	AssertRejected(t, alg.Validate(VibrationInput{Signal: good, SampleRate: 100, MinFrequency: 40, MaxFrequency: 20}), "min_frequency")

	withNaN := append([]float64(nil), good...)
	withNaN[7] = math.NaN()
	AssertRejected(t, alg.Validate(VibrationInput{Signal: withNaN, SampleRate: 100}), "signal")

	vr := alg.Validate(VibrationInput{Signal: good, SampleRate: 100, MaxFrequency: 80})
	assert.True(t, vr.Valid)
	assert.Len(t, vr.Warnings(), 1)
}
