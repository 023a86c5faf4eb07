// Package collatz iterates the Collatz map with memoized convergence
// verification and cycle detection.
//
// A trajectory resolves one of three ways: it reaches 1 (converged), it
// revisits one of its own earlier values (cycled), or it runs out of step
// budget (unresolved). Resolved trajectories are written back to a cache in
// full: every value on the just-computed prefix gets its own record with
// the correct remaining-step count, so resolving the longest trajectory in
// a cluster resolves all of its sub-trajectories for free.
package collatz

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
)

// ErrInvalidStart is returned when Resolve is handed a non-positive start.
var ErrInvalidStart = errors.New("collatz: starting value must be positive")

// ErrInvalidBudget is returned for a negative step budget. A budget of zero
// is legal and resolves nothing but cache hits.
var ErrInvalidBudget = errors.New("collatz: step budget must be non-negative")

// Step applies the Collatz map once: n/2 when n is even, 3n+1 when odd.
// The argument is left untouched; the result is freshly allocated.
func Step(n *big.Int) *big.Int {
	r := new(big.Int)
	if n.Bit(0) == 0 {
		return r.Rsh(n, 1)
	}
	r.Mul(n, three)
	return r.Add(r, one)
}

// Resolve computes the outcome for n with a budget of maxSteps step
// applications, consulting and updating cache.
//
// A value already present in the cache returns immediately without
// iterating. Otherwise the trajectory is walked step by step, keeping the
// prefix of values seen in this call. Three things can end the walk:
//
//   - the next value is 1, or carries a cached Converged record: the whole
//     prefix is written to the cache with exact remaining-step counts;
//   - the next value is already on this call's own prefix: a genuine cycle,
//     recorded for n alone (the intermediate values do not converge and
//     must not be cached as if they did);
//   - the budget runs out: Unresolved is returned and nothing is cached,
//     since a larger budget might still resolve the value.
//
// A value found in the cache mid-walk is not a cycle. Trajectories cross
// each other constantly; only a repeat within the current prefix is one.
func Resolve(n *big.Int, maxSteps int, cache *Cache) (Record, error) {
	if n.Sign() <= 0 {
		return Record{}, fmt.Errorf("%w, got %s", ErrInvalidStart, n)
	}
	if maxSteps < 0 {
		return Record{}, fmt.Errorf("%w, got %d", ErrInvalidBudget, maxSteps)
	}
	if cache == nil {
		cache = NewCache()
	}

	if r, ok := cache.Get(n); ok {
		return r, nil
	}

	start := new(big.Int).Set(n)
	prefix := []*big.Int{start}
	seen := map[string]struct{}{start.String(): {}}

	current := start
	for steps := 0; steps < maxSteps; steps++ {
		next := Step(current)
		key := next.String()

		if next.Cmp(one) == 0 {
			return shareSuffix(cache, prefix, 0, one), nil
		}
		if r, ok := cache.peek(key); ok {
			if r.Outcome == Converged {
				return shareSuffix(cache, prefix, r.Steps, r.Peak), nil
			}
			// The suffix is a known cycle, so this trajectory never
			// reaches 1 either.
			rec := Record{Outcome: Cycled, CycleValue: r.CycleValue}
			cache.Put(start, rec)
			return rec, nil
		}
		if _, ok := seen[key]; ok {
			rec := Record{Outcome: Cycled, CycleValue: next}
			cache.Put(start, rec)
			return rec, nil
		}

		prefix = append(prefix, next)
		seen[key] = struct{}{}
		current = next
	}
	return Record{Outcome: Unresolved}, nil
}

// shareSuffix records a Converged outcome for every value on the prefix.
// suffixSteps and suffixPeak describe the already-resolved tail the prefix
// ran into; the value at prefix position i therefore reaches 1 in
// suffixSteps + (len(prefix) - i) steps. Peaks accumulate back to front so
// each record carries the true maximum of its own trajectory.
func shareSuffix(cache *Cache, prefix []*big.Int, suffixSteps int, suffixPeak *big.Int) Record {
	peak := suffixPeak
	var rec Record
	for i := len(prefix) - 1; i >= 0; i-- {
		v := prefix[i]
		if v.Cmp(peak) > 0 {
			peak = v
		}
		rec = Record{
			Outcome: Converged,
			Steps:   suffixSteps + len(prefix) - i,
			Peak:    peak,
		}
		cache.Put(v, rec)
	}
	return rec
}
