package cutlaw

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProbeConfig controls a determinism probe.
type ProbeConfig struct {
	Duration time.Duration // How long to run at each concurrency level
	Levels   []int         // Concurrency levels to test (default: [1,2,4,8])
	MaxCalls int64         // Stop a level after this many calls (0 = duration only)
	MaxProcs int           // GOMAXPROCS limit (0 = use runtime default)
}

// DefaultProbeConfig returns sensible defaults.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Duration: 200 * time.Millisecond,
		Levels:   []int{1, 2, 4, 8},
		MaxCalls: 10_000,
	}
}

// ProbeResult contains measurements from a single concurrency level.
type ProbeResult struct {
	N          int           `json:"n"`          // Number of concurrent workers
	Duration   time.Duration `json:"duration"`   // Wall time of the level
	Calls      int64         `json:"calls"`      // Calculate calls completed
	Throughput float64       `json:"throughput"` // Calls per second
	Mismatches int64         `json:"mismatches"` // Outputs differing from the reference
}

// Probe calls alg.Calculate(in) from many goroutines at each level and
// compares every output with a single-threaded reference. A pure algorithm
// reports zero mismatches at every level.
func Probe[In any, Out WithWarnings](ctx context.Context, alg Algorithm[In, Out], in In, cfg ProbeConfig) ([]ProbeResult, error) {
	if vr := alg.Validate(in); !vr.Valid {
		return nil, fmt.Errorf("probe %s: %w", alg.Metadata().ID, vr.Err())
	}
	if cfg.MaxProcs > 0 {
		old := runtime.GOMAXPROCS(cfg.MaxProcs)
		defer runtime.GOMAXPROCS(old)
	}
	levels := cfg.Levels
	if len(levels) == 0 {
		levels = DefaultProbeConfig().Levels
	}

	reference := alg.Calculate(in)
	results := make([]ProbeResult, 0, len(levels))
	for _, n := range levels {
		if n < 1 {
			return nil, fmt.Errorf("probe %s: invalid level N=%d", alg.Metadata().ID, n)
		}
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("probe %s stopped at N=%d: %w", alg.Metadata().ID, n, err)
		}
		results = append(results, probeLevel(ctx, alg, in, reference, n, cfg))
	}
	return results, nil
}

// probeLevel runs N workers until the duration elapses or MaxCalls is reached.
func probeLevel[In any, Out WithWarnings](ctx context.Context, alg Algorithm[In, Out], in In, reference Out, n int, cfg ProbeConfig) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var (
		wg         sync.WaitGroup
		calls      int64
		mismatches int64
	)

	start := time.Now()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if cfg.MaxCalls > 0 && atomic.AddInt64(&calls, 1) > cfg.MaxCalls {
					atomic.AddInt64(&calls, -1)
					return
				} else if cfg.MaxCalls <= 0 {
					atomic.AddInt64(&calls, 1)
				}
				if !reflect.DeepEqual(alg.Calculate(in), reference) {
					atomic.AddInt64(&mismatches, 1)
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	throughput := 0.0
	if s := elapsed.Seconds(); s > 0 {
		throughput = float64(calls) / s
	}
	return ProbeResult{
		N:          n,
		Duration:   elapsed,
		Calls:      calls,
		Throughput: throughput,
		Mismatches: mismatches,
	}
}
