// Package cutlaw provides the physical calculations behind CNC feed and speed
// generation, wrapped in a two-tier safety discipline.
//
// # Overview
//
// Every calculation implements Algorithm:
//
//	type Algorithm[In any, Out WithWarnings] interface {
//	    Validate(in In) ValidationResult
//	    Calculate(in In) Out
//	    Metadata() AlgorithmMeta
//	}
//
// Validate is advisory. It returns severity-tagged issues; an error issue
// means the input is physically impossible and Calculate must not be called,
// a warning issue means the input is legal but risky. Calculate never panics
// and never returns NaN or ±Inf. Outputs beyond a documented ceiling are
// clamped and a "CODE: message" entry is appended to the output's warnings.
//
// # The Laws
//
//	Kienzle          Fc = kc1.1 · h^(1−mc) · b
//	Taylor           V · T^n · f^a · d^b = C
//	Speed/feed       n = 1000·V/(π·D),  vf = fz·z·n
//	Johnson-Cook     σ = [A + B·ε^n]·[1 + C·ln(ε̇/ε̇₀)]·[1 − T*^m]
//	Usui             dVB/dt = A·σ·Vs·exp(−B/θ_eff), θ_eff = θ·(1 + 0.5·VB)
//	Chip thinning    hex = fz·(1 − cos φe)/φe
//	Surface finish   Ra = f²/(32·R)
//	Vibration        iterative radix-2 FFT, windowed, band-limited peaks
//	Clustering       K-Means++ with restarts and elbow auto-K
//
// # The Hard Gate
//
// Three kernels feed machine motion directly and are fail-closed:
//
//	res, err := cutlaw.KienzleCuttingForce(conditions, coefficients)
//	if err != nil {
//	    // errors.Is(err, cutlaw.ErrSafetyBlock): abort, never retry
//	    return err
//	}
//
// KienzleCuttingForce, TaylorToolLife and SpeedFeed return a
// *SafetyBlockError for any non-finite, non-positive or out-of-range input
// before computing anything.
//
// # The Governor
//
// Hosts that drive a pipeline use a Governor to turn outcomes into actions:
//
//	g := cutlaw.NewGovernor()
//	out, action := cutlaw.Execute(g, cutlaw.UsuiWear{}, in)
//	if action.Type.Stops() {
//	    return fmt.Errorf("%s: %s", action.Type, action.Reason)
//	}
//
// # Registry
//
// DefaultRegistry returns a fresh registry of every built-in algorithm keyed
// by ID, with a JSON call surface for hosts that receive {id, params}
// documents. There is no global registry.
//
// # Determinism
//
// Every algorithm is a pure function of its input. Clustering takes an
// explicit seed. Probe verifies both properties under concurrent load.
package cutlaw
