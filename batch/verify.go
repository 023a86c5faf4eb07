// Package batch drives the sequence engine and the family classifier over
// contiguous ranges of starting values and aggregates the outcomes.
//
// A range is partitioned into fixed-size chunks fed through a channel to a
// fixed pool of workers, each with its own convergence cache; this is the
// same no-shared-state model the exploration campaign used with a process
// pool. Merging is commutative, so results are identical for any chunk size
// and any processing order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"CollatzScan/collatz"
	"CollatzScan/family"
)

// Config bundles the tunables of a verification run.
type Config struct {
	// Generators, Tolerance and MaxExponent parameterize the family
	// classifier: membership means n = a*4^j + 1 + z for a generator a,
	// j < MaxExponent and |z| <= Tolerance.
	Generators  []int64 `yaml:"generators"`
	Tolerance   int64   `yaml:"tolerance"`
	MaxExponent int     `yaml:"max_exponent"`

	// MaxSteps is the per-trajectory step budget; past it a value counts
	// as unresolved, never as an error.
	MaxSteps int `yaml:"max_steps"`

	// ChunkSize is the unit of work dispatch and of cancellation. It has
	// no effect on the aggregate figures.
	ChunkSize uint64 `yaml:"chunk_size"`

	// OddOnly restricts the walk to odd values. Even outcomes are always
	// derivable from their half, so skipping them loses no information.
	OddOnly bool `yaml:"odd_only"`

	// Workers is the pool size; zero means one per CPU.
	Workers int `yaml:"workers"`

	Verbose bool `yaml:"-"`
}

var errBadConfig = errors.New("batch: bad configuration")

// Validate checks the configuration the same way for every entry point.
func (c Config) Validate() error {
	if len(c.Generators) == 0 {
		return fmt.Errorf("%w: no generators", errBadConfig)
	}
	for _, a := range c.Generators {
		if a <= 0 {
			return fmt.Errorf("%w: generator %d must be positive", errBadConfig, a)
		}
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance %d must be non-negative", errBadConfig, c.Tolerance)
	}
	if c.MaxExponent <= 0 {
		return fmt.Errorf("%w: max exponent %d must be positive", errBadConfig, c.MaxExponent)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: step budget %d must be positive", errBadConfig, c.MaxSteps)
	}
	if c.ChunkSize == 0 {
		return fmt.Errorf("%w: chunk size must be positive", errBadConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d must be non-negative", errBadConfig, c.Workers)
	}
	return nil
}

type span struct {
	lo, hi uint64
}

// VerifyRange resolves and classifies every value in [start, end) and
// returns the merged aggregate. Cancellation is honored between chunks;
// on early exit the partial aggregate is returned along with the error.
func VerifyRange(ctx context.Context, start, end uint64, cfg Config) (Result, error) {
	var total Result
	if err := cfg.Validate(); err != nil {
		return total, err
	}
	if start < 1 || end < start {
		return total, fmt.Errorf("%w: range [%d, %d)", errBadConfig, start, end)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	tasks := make(chan span, workers)
	g.Go(func() error {
		return dispatch(ctx, start, end, cfg, tasks)
	})

	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			cache := collatz.NewCache()
			defer func() {
				mu.Lock()
				total.CacheHits += cache.Hits()
				total.CacheMisses += cache.Misses()
				mu.Unlock()
			}()
			for s := range tasks {
				r, err := verifyChunk(s.lo, s.hi, cfg, cache)
				if err != nil {
					return err
				}
				mu.Lock()
				total.Merge(r)
				mu.Unlock()
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}
			return nil
		})
	}

	err := g.Wait()
	return total, err
}

// dispatch cuts the range into chunks and feeds them to the workers,
// logging coarse progress when asked to.
func dispatch(ctx context.Context, start, end uint64, cfg Config, tasks chan<- span) error {
	defer close(tasks)
	totalChunks := (end - start + cfg.ChunkSize - 1) / cfg.ChunkSize
	step := (totalChunks + 19) / 20
	t0 := time.Now()
	sent := uint64(0)
	for lo := start; lo < end; lo += cfg.ChunkSize {
		hi := lo + cfg.ChunkSize
		if hi > end {
			hi = end
		}
		select {
		case tasks <- span{lo: lo, hi: hi}:
			sent++
			if cfg.Verbose && step > 0 && sent%step == 0 {
				elapsed := time.Since(t0).Seconds()
				perChunk := elapsed / float64(sent)
				log.Printf(
					"dispatch: %6d/%d chunks (%.0f%%), %.1f seconds remaining",
					sent, totalChunks,
					float64(sent*100)/float64(totalChunks),
					float64(totalChunks-sent)*perChunk,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if cfg.Verbose {
		log.Printf("dispatch: completed")
	}
	return nil
}

// verifyChunk is where the actual testing happens: one resolve and one
// classification per value, folded into a chunk-local result.
func verifyChunk(lo, hi uint64, cfg Config, cache *collatz.Cache) (Result, error) {
	out := Result{Families: make(map[int64]uint64)}

	n := lo
	stride := uint64(1)
	if cfg.OddOnly {
		stride = 2
		if n%2 == 0 {
			n++
		}
	}

	v := new(big.Int)
	for ; n < hi; n += stride {
		v.SetUint64(n)
		rec, err := collatz.Resolve(v, cfg.MaxSteps, cache)
		if err != nil {
			return out, err
		}
		out.Tested++
		switch rec.Outcome {
		case collatz.Converged:
			out.Converged++
			out.StepsSum += uint64(rec.Steps)
			if rec.Steps > out.MaxSteps {
				out.MaxSteps = rec.Steps
			}
			if rec.Peak != nil && (out.MaxValue == nil || rec.Peak.Cmp(out.MaxValue) > 0) {
				out.MaxValue = rec.Peak
			}
		case collatz.Cycled:
			out.Cycled++
			if len(out.CycledSamples) < sampleCap {
				out.CycledSamples = append(out.CycledSamples, n)
			}
		case collatz.Unresolved:
			out.Unresolved++
			if len(out.UnresolvedSamples) < sampleCap {
				out.UnresolvedSamples = append(out.UnresolvedSamples, n)
			}
		}
		if m, ok := family.Classify(v, cfg.Generators, cfg.MaxExponent, cfg.Tolerance); ok {
			out.Families[m.A]++
		}
	}
	return out, nil
}
