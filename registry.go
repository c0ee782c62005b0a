package cutlaw

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNoKernel is returned when a hard-gated call is requested from an
// algorithm that has no kernel.
var ErrNoKernel = errors.New("algorithm has no hard-gated kernel")

// Entry is a registered algorithm with a JSON-facing call surface.
// Params are decoded strictly: unknown fields are rejected.
type Entry interface {
	Descriptor

	// HasKernel reports whether Kernel runs a hard-gated path.
	HasKernel() bool

	// Validate decodes params and runs advisory validation.
	Validate(params []byte) (ValidationResult, error)

	// Execute runs the governed validate → calculate loop.
	// A HALT is reported through the Action, not the error.
	Execute(g *Governor, params []byte) (WithWarnings, Action, error)

	// Kernel runs the hard-gated path. A safety block is returned as the
	// error and must be propagated, never retried.
	Kernel(g *Governor, params []byte) (WithWarnings, Action, error)
}

type binding[In any, Out WithWarnings] struct {
	alg    Algorithm[In, Out]
	kernel func(In) (Out, error)
}

// Bind wraps an algorithm for registration.
func Bind[In any, Out WithWarnings](alg Algorithm[In, Out]) Entry {
	return &binding[In, Out]{alg: alg}
}

// BindKernel wraps an algorithm together with its hard-gated kernel.
func BindKernel[In any, Out WithWarnings](alg Algorithm[In, Out], kernel func(In) (Out, error)) Entry {
	return &binding[In, Out]{alg: alg, kernel: kernel}
}

func (b *binding[In, Out]) Metadata() AlgorithmMeta { return b.alg.Metadata() }

func (b *binding[In, Out]) HasKernel() bool { return b.kernel != nil }

func (b *binding[In, Out]) decode(params []byte) (In, error) {
	var in In
	if len(bytes.TrimSpace(params)) == 0 {
		return in, fmt.Errorf("%s: empty params", b.alg.Metadata().ID)
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%s: decode params: %w", b.alg.Metadata().ID, err)
	}
	return in, nil
}

func (b *binding[In, Out]) Validate(params []byte) (ValidationResult, error) {
	in, err := b.decode(params)
	if err != nil {
		return ValidationResult{}, err
	}
	return b.alg.Validate(in), nil
}

func (b *binding[In, Out]) Execute(g *Governor, params []byte) (WithWarnings, Action, error) {
	in, err := b.decode(params)
	if err != nil {
		return nil, Action{}, err
	}
	out, action := Execute(g, b.alg, in)
	if action.Type == ActionHalt {
		return nil, action, nil
	}
	return out, action, nil
}

func (b *binding[In, Out]) Kernel(g *Governor, params []byte) (WithWarnings, Action, error) {
	id := b.alg.Metadata().ID
	if b.kernel == nil {
		return nil, Action{}, fmt.Errorf("%s: %w", id, ErrNoKernel)
	}
	in, err := b.decode(params)
	if err != nil {
		return nil, Action{}, err
	}
	out, err := b.kernel(in)
	action := g.Gate(id, out, err)
	if err != nil {
		return nil, action, err
	}
	return out, action, nil
}

// Registry indexes algorithms by ID. It is populated explicitly; there is no
// package-level registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// DefaultRegistry returns a new registry holding every built-in algorithm.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range []Entry{
		BindKernel[KienzleInput, KienzleResult](KienzleAlgorithm{}, func(in KienzleInput) (KienzleResult, error) {
			return KienzleCuttingForce(in.Conditions, in.Coefficients)
		}),
		BindKernel[TaylorInput, TaylorResult](TaylorAlgorithm{}, TaylorToolLife),
		BindKernel[CuttingConditions, SpeedFeedResult](SpeedFeedAlgorithm{}, SpeedFeed),
		Bind[JohnsonCookInput, JohnsonCookResult](JohnsonCook{}),
		Bind[UsuiInput, UsuiResult](UsuiWear{}),
		Bind[ChipThinningInput, ChipThinningResult](ChipThinning{}),
		Bind[SurfaceInput, SurfaceResult](SurfaceFinish{}),
		Bind[VibrationInput, VibrationResult](Vibration{}),
		Bind[ClusterInput, KMeansResult](KMeans{}),
	} {
		// IDs are distinct constants.
		_ = r.Register(e)
	}
	return r
}

// Register adds an entry. A duplicate or empty ID is an error.
func (r *Registry) Register(e Entry) error {
	id := e.Metadata().ID
	if id == "" {
		return errors.New("register: empty algorithm id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("register: algorithm %q already registered", id)
	}
	r.entries[id] = e
	return nil
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// List returns every entry's metadata, sorted by ID.
func (r *Registry) List() []AlgorithmMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metas := make([]AlgorithmMeta, 0, len(r.entries))
	for _, e := range r.entries {
		metas = append(metas, e.Metadata())
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ID < metas[j].ID
	})
	return metas
}

// BySafetyClass returns the metadata of every entry in class c, sorted by ID.
func (r *Registry) BySafetyClass(c SafetyClass) []AlgorithmMeta {
	var out []AlgorithmMeta
	for _, m := range r.List() {
		if m.SafetyClass == c {
			out = append(out, m)
		}
	}
	return out
}
