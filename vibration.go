package cutlaw

import (
	"cmp"
	"math"
	"math/bits"
	"math/cmplx"
	"slices"
)

// Window is a spectral tapering function.
type Window string

const (
	WindowRectangular Window = "rectangular"
	WindowHann        Window = "hann"
	WindowHamming     Window = "hamming"
	WindowBlackman    Window = "blackman"
	WindowFlatTop     Window = "flattop"
)

// Analyzer defaults.
const (
	DefaultWindow   = WindowHann
	DefaultTopPeaks = 5
	harmonicTol     = 0.05
)

// Valid reports whether w is a known window. The empty window means the default.
func (w Window) Valid() bool {
	switch w {
	case "", WindowRectangular, WindowHann, WindowHamming, WindowBlackman, WindowFlatTop:
		return true
	}
	return false
}

// Coefficients returns the n window weights.
func (w Window) Coefficients(n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = 1
		return out
	}
	den := float64(n - 1)
	for i := range out {
		x := 2 * math.Pi * float64(i) / den
		switch w {
		case WindowRectangular:
			out[i] = 1
		case WindowHamming:
			out[i] = 0.54 - 0.46*math.Cos(x)
		case WindowBlackman:
			out[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		case WindowFlatTop:
			out[i] = 0.21557895 - 0.41663158*math.Cos(x) + 0.277263158*math.Cos(2*x) -
				0.083578947*math.Cos(3*x) + 0.006947368*math.Cos(4*x)
		default:
			out[i] = 0.5 - 0.5*math.Cos(x)
		}
	}
	return out
}

// FFTPeak is one local maximum of the one-sided magnitude spectrum.
// HarmonicOf is the strongest peak's frequency when IsHarmonic is set.
type FFTPeak struct {
	Frequency     float64 `json:"frequency"` // Hz
	Magnitude     float64 `json:"magnitude"`
	PhaseDeg      float64 `json:"phase_deg"`
	IsHarmonic    bool    `json:"is_harmonic"`
	HarmonicOf    float64 `json:"harmonic_of,omitempty"`
	HarmonicOrder int     `json:"harmonic_order,omitempty"`
}

// VibrationInput is a uniformly sampled signal. MaxFrequency zero means the
// Nyquist frequency, TopPeaks zero means 5.
type VibrationInput struct {
	Signal          []float64 `json:"signal"`
	SampleRate      float64   `json:"sample_rate"` // Hz
	Window          Window    `json:"window,omitempty"`
	MinFrequency    float64   `json:"min_frequency,omitempty"`
	MaxFrequency    float64   `json:"max_frequency,omitempty"`
	TopPeaks        int       `json:"top_peaks,omitempty"`
	IncludePSD      bool      `json:"include_psd,omitempty"`
	IncludeSpectrum bool      `json:"include_spectrum,omitempty"`
}

// VibrationResult is the spectrum summary.
type VibrationResult struct {
	NFFT                int       `json:"n_fft"`
	SamplesUsed         int       `json:"samples_used"`
	FrequencyResolution float64   `json:"frequency_resolution"` // Hz per bin
	Window              Window    `json:"window"`
	Peaks               []FFTPeak `json:"peaks"`
	DominantFrequency   float64   `json:"dominant_frequency"`
	DominantMagnitude   float64   `json:"dominant_magnitude"`
	RMS                 float64   `json:"rms"`
	Magnitudes          []float64 `json:"magnitudes,omitempty"`
	PSD                 []float64 `json:"psd,omitempty"` // unit²/Hz
	Warnings            `json:"warnings"`
}

// Vibration is the windowed FFT peak analyzer.
type Vibration struct{}

func (Vibration) Validate(in VibrationInput) ValidationResult {
	var v validator
	rateOK := v.check(vibrationLimits, "sample_rate", in.SampleRate)
	minOK := v.check(vibrationLimits, "min_frequency", in.MinFrequency)
	maxOK := v.check(vibrationLimits, "max_frequency", in.MaxFrequency)

	switch n := len(in.Signal); {
	case n < 2:
		v.errorf("signal", "needs at least 2 samples, got %d", n)
	case n > MaxFFTLength:
		v.errorf("signal", "%d samples exceeds the maximum of %d", n, MaxFFTLength)
	}
	if i := slices.IndexFunc(in.Signal, func(x float64) bool { return !isFinite(x) }); i >= 0 {
		v.errorf("signal", "sample %d is not finite", i)
	}
	if !in.Window.Valid() {
		v.errorf("window", "unknown window %q", in.Window)
	}
	if in.TopPeaks < 0 {
		v.errorf("top_peaks", "must not be negative, got %d", in.TopPeaks)
	}
	if minOK && maxOK && in.MaxFrequency > 0 && in.MinFrequency > in.MaxFrequency {
		v.errorf("min_frequency", "band [%g, %g] Hz is empty", in.MinFrequency, in.MaxFrequency)
	}
	if rateOK && maxOK && in.MaxFrequency > in.SampleRate/2 {
		v.warnf("max_frequency", "%g Hz is above the Nyquist frequency %g Hz", in.MaxFrequency, in.SampleRate/2)
	}
	return v.result()
}

func (Vibration) Calculate(in VibrationInput) VibrationResult {
	out := VibrationResult{Window: in.Window, Peaks: []FFTPeak{}}
	if out.Window == "" || !out.Window.Valid() {
		out.Window = DefaultWindow
	}

	signal := in.Signal
	if len(signal) > MaxFFTLength {
		out.add(WarnTruncated, "signal of %d samples truncated to %d", len(signal), MaxFFTLength)
		signal = signal[:MaxFFTLength]
	}
	if len(signal) == 0 {
		out.add(WarnNoPeaks, "empty signal")
		return out
	}

	fs := math.Max(finite(in.SampleRate, 0), epsilon)
	nfft := nextPow2(max(len(signal), 2))
	df := fs / float64(nfft)
	out.NFFT = nfft
	out.SamplesUsed = len(signal)
	out.FrequencyResolution = df

	w := out.Window.Coefficients(len(signal))
	buf := make([]complex128, nfft)
	var gain, sumSq float64
	for i, x := range signal {
		x = finite(x, 0)
		sumSq += x * x
		buf[i] = complex(x*w[i], 0)
		gain += w[i]
	}
	out.RMS = math.Sqrt(sumSq / float64(len(signal)))
	if gain <= epsilon {
		gain = 1
	}

	fft(buf)

	half := nfft / 2
	mag := make([]float64, half+1)
	for k := range mag {
		m := cmplx.Abs(buf[k]) / gain
		if k != 0 && k != half {
			m *= 2
		}
		mag[k] = finite(m, 0)
	}
	if in.IncludeSpectrum {
		out.Magnitudes = mag
	}
	if in.IncludePSD {
		out.PSD = make([]float64, len(mag))
		for k, m := range mag {
			out.PSD[k] = m * m / (2 * df)
		}
	}

	lo, hi := in.MinFrequency, in.MaxFrequency
	if hi <= 0 || hi > fs/2 {
		hi = fs / 2
	}
	var peaks []FFTPeak
	for k := 1; k < half; k++ {
		f := float64(k) * df
		if f < lo || f > hi {
			continue
		}
		if mag[k] > mag[k-1] && mag[k] >= mag[k+1] && mag[k] > epsilon {
			peaks = append(peaks, FFTPeak{
				Frequency: f,
				Magnitude: mag[k],
				PhaseDeg:  finite(cmplx.Phase(buf[k])*180/math.Pi, 0),
			})
		}
	}
	if len(peaks) == 0 {
		out.add(WarnNoPeaks, "no spectral peaks in band [%g, %g] Hz", lo, hi)
		return out
	}

	slices.SortStableFunc(peaks, func(a, b FFTPeak) int {
		if c := cmp.Compare(b.Magnitude, a.Magnitude); c != 0 {
			return c
		}
		return cmp.Compare(a.Frequency, b.Frequency)
	})
	top := in.TopPeaks
	if top <= 0 {
		top = DefaultTopPeaks
	}
	peaks = peaks[:min(top, len(peaks))]

	fundamental := peaks[0].Frequency
	for i := 1; i < len(peaks); i++ {
		ratio := peaks[i].Frequency / fundamental
		order := math.Round(ratio)
		if order >= 2 && math.Abs(ratio-order) <= harmonicTol {
			peaks[i].IsHarmonic = true
			peaks[i].HarmonicOf = fundamental
			peaks[i].HarmonicOrder = int(order)
		}
	}

	out.Peaks = peaks
	out.DominantFrequency = fundamental
	out.DominantMagnitude = peaks[0].Magnitude
	return out
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// fft is an in-place iterative radix-2 Cooley-Tukey transform.
// len(x) must be a power of two.
func fft(x []complex128) {
	n := len(x)
	if n < 2 {
		return
	}
	shift := 64 - bits.Len(uint(n-1))
	for i := range x {
		j := int(bits.Reverse64(uint64(i)) >> shift)
		if j > i {
			x[i], x[j] = x[j], x[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		halfSize := size / 2
		theta := -2 * math.Pi / float64(size)
		for k := 0; k < halfSize; k++ {
			w := cmplx.Rect(1, theta*float64(k))
			for start := k; start < n; start += size {
				a := x[start]
				b := w * x[start+halfSize]
				x[start] = a + b
				x[start+halfSize] = a - b
			}
		}
	}
}

func (Vibration) Metadata() AlgorithmMeta {
	return AlgorithmMeta{
		ID:          IDVibration,
		Name:        "FFT vibration analysis",
		Description: "Windowed one-sided spectrum with band-limited peak picking and harmonic tagging",
		Formula:     "X[k] = Σ x[n]·w[n]·e^(−2πikn/N); |X| = 2·|X[k]|/Σw; PSD = |X|²/(2·Δf)",
		Reference:   "Cooley, J. W., Tukey, J. W. (1965) An algorithm for the machine calculation of complex Fourier series",
		SafetyClass: SafetyStandard,
		Domain:      "dynamics",
		Inputs: map[string]ParamSpec{
			"signal":        {Unit: "", Description: "uniformly sampled signal"},
			"sample_rate":   {Unit: "Hz", Description: "sampling frequency fs"},
			"window":        {Unit: "", Description: "rectangular, hann, hamming, blackman or flattop"},
			"min_frequency": {Unit: "Hz", Description: "lower bound of the peak band"},
			"max_frequency": {Unit: "Hz", Description: "upper bound of the peak band"},
		},
		Outputs: map[string]ParamSpec{
			"peaks":              {Unit: "", Description: "strongest local maxima, by magnitude"},
			"dominant_frequency": {Unit: "Hz", Description: "frequency of the strongest peak"},
		},
	}
}
