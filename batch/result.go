package batch

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// sampleCap bounds how many concrete counterexample candidates a result
// carries; the aggregate counts are always exact.
const sampleCap = 100

// Result aggregates outcomes over one chunk, or over a whole run once
// merged. Merging is commutative and associative (sums, maxima, per-family
// sums), so the final figures do not depend on chunk processing order.
type Result struct {
	Tested     uint64
	Converged  uint64
	Cycled     uint64
	Unresolved uint64

	// StepsSum and MaxSteps cover converged trajectories only.
	StepsSum uint64
	MaxSteps int

	// MaxValue is the largest value attained by any converged trajectory.
	MaxValue *big.Int

	// Families counts classified starting values per generator a.
	Families map[int64]uint64

	// CycledSamples and UnresolvedSamples hold up to sampleCap starting
	// values for each anomalous outcome.
	CycledSamples     []uint64
	UnresolvedSamples []uint64

	CacheHits   uint64
	CacheMisses uint64
}

// Merge folds o into r.
func (r *Result) Merge(o Result) {
	r.Tested += o.Tested
	r.Converged += o.Converged
	r.Cycled += o.Cycled
	r.Unresolved += o.Unresolved
	r.StepsSum += o.StepsSum
	if o.MaxSteps > r.MaxSteps {
		r.MaxSteps = o.MaxSteps
	}
	if o.MaxValue != nil && (r.MaxValue == nil || o.MaxValue.Cmp(r.MaxValue) > 0) {
		r.MaxValue = o.MaxValue
	}
	if len(o.Families) > 0 && r.Families == nil {
		r.Families = make(map[int64]uint64, len(o.Families))
	}
	for a, c := range o.Families {
		r.Families[a] += c
	}
	r.CycledSamples = appendCapped(r.CycledSamples, o.CycledSamples)
	r.UnresolvedSamples = appendCapped(r.UnresolvedSamples, o.UnresolvedSamples)
	r.CacheHits += o.CacheHits
	r.CacheMisses += o.CacheMisses
}

func appendCapped(dst, src []uint64) []uint64 {
	room := sampleCap - len(dst)
	if room <= 0 {
		return dst
	}
	if len(src) > room {
		src = src[:room]
	}
	return append(dst, src...)
}

// ConvergenceRate returns converged/tested as an exact decimal fraction.
func (r Result) ConvergenceRate() decimal.Decimal {
	if r.Tested == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(r.Converged).DivRound(decimal.NewFromUint64(r.Tested), 6)
}

// MeanSteps returns the mean step count across converged trajectories.
func (r Result) MeanSteps() decimal.Decimal {
	if r.Converged == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(r.StepsSum).DivRound(decimal.NewFromUint64(r.Converged), 2)
}

// FamilyRate returns the fraction of tested values classified under a.
func (r Result) FamilyRate(a int64) decimal.Decimal {
	if r.Tested == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(r.Families[a]).DivRound(decimal.NewFromUint64(r.Tested), 6)
}
