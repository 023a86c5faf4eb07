package collatz

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep(t *testing.T) {
	assert.Equal(t, int64(3), Step(big.NewInt(6)).Int64())
	assert.Equal(t, int64(16), Step(big.NewInt(5)).Int64())
	assert.Equal(t, int64(4), Step(big.NewInt(1)).Int64())

	// exact arithmetic well past 64 bits
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	assert.Equal(t, 0, Step(huge).Cmp(new(big.Int).Lsh(big.NewInt(1), 99)))

	odd := new(big.Int).Lsh(big.NewInt(1), 100)
	odd.Add(odd, big.NewInt(1))
	want := new(big.Int).Mul(odd, big.NewInt(3))
	want.Add(want, big.NewInt(1))
	assert.Equal(t, 0, Step(odd).Cmp(want))

	// Step must not modify its argument
	n := big.NewInt(7)
	Step(n)
	assert.Equal(t, int64(7), n.Int64())
}

func TestResolve_BaseCase(t *testing.T) {
	cache := NewCache()
	rec, err := Resolve(big.NewInt(1), 0, cache)
	require.NoError(t, err)
	assert.Equal(t, Converged, rec.Outcome)
	assert.Equal(t, 0, rec.Steps)
}

func TestResolve_KnownTrajectories(t *testing.T) {
	cache := NewCache()

	// 6 -> 3 -> 10 -> 5 -> 16 -> 8 -> 4 -> 2 -> 1
	rec, err := Resolve(big.NewInt(6), 100, cache)
	require.NoError(t, err)
	assert.Equal(t, Converged, rec.Outcome)
	assert.Equal(t, 8, rec.Steps)
	assert.Equal(t, int64(16), rec.Peak.Int64())

	// the classic: 27 takes 111 steps and climbs to 9232
	rec, err = Resolve(big.NewInt(27), 10000, NewCache())
	require.NoError(t, err)
	assert.Equal(t, Converged, rec.Outcome)
	assert.Equal(t, 111, rec.Steps)
	assert.Equal(t, int64(9232), rec.Peak.Int64())
}

func TestResolve_SuffixSharing(t *testing.T) {
	cache := NewCache()
	_, err := Resolve(big.NewInt(6), 100, cache)
	require.NoError(t, err)

	// every value on 6's trajectory is now resolved
	wantSteps := map[int64]int{6: 8, 3: 7, 10: 6, 5: 5, 16: 4, 8: 3, 4: 2, 2: 1}
	for n, steps := range wantSteps {
		rec, ok := cache.Get(big.NewInt(n))
		require.True(t, ok, "missing record for %d", n)
		assert.Equal(t, Converged, rec.Outcome)
		assert.Equal(t, steps, rec.Steps, "wrong step count for %d", n)
	}

	// resolving 3 against the same cache is a pure hit: no new misses
	misses := cache.Misses()
	rec, err := Resolve(big.NewInt(3), 100, cache)
	require.NoError(t, err)
	assert.Equal(t, Converged, rec.Outcome)
	assert.Equal(t, 7, rec.Steps)
	assert.Equal(t, misses, cache.Misses())
}

func TestResolve_CrossCallSuffixSharing(t *testing.T) {
	cache := NewCache()
	_, err := Resolve(big.NewInt(6), 100, cache)
	require.NoError(t, err)

	// 12 -> 6 runs into the cached suffix after one step
	rec, err := Resolve(big.NewInt(12), 100, cache)
	require.NoError(t, err)
	assert.Equal(t, Converged, rec.Outcome)
	assert.Equal(t, 9, rec.Steps)
}

func TestResolve_CacheIdempotent(t *testing.T) {
	cache := NewCache()
	first, err := Resolve(big.NewInt(27), 10000, cache)
	require.NoError(t, err)

	size := cache.Len()
	hits := cache.Hits()
	second, err := Resolve(big.NewInt(27), 10000, cache)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, size, cache.Len())
	assert.Equal(t, hits+1, cache.Hits())
}

func TestResolve_ZeroBudget(t *testing.T) {
	cache := NewCache()
	rec, err := Resolve(big.NewInt(5), 0, cache)
	require.NoError(t, err)
	assert.Equal(t, Unresolved, rec.Outcome)
	// nothing but the seeded base case may be cached
	assert.Equal(t, 1, cache.Len())
}

func TestResolve_UnresolvedNotCached(t *testing.T) {
	cache := NewCache()
	rec, err := Resolve(big.NewInt(27), 10, cache)
	require.NoError(t, err)
	assert.Equal(t, Unresolved, rec.Outcome)
	assert.Equal(t, 1, cache.Len())

	// a larger budget must still be able to resolve it
	rec, err = Resolve(big.NewInt(27), 10000, cache)
	require.NoError(t, err)
	assert.Equal(t, Converged, rec.Outcome)
	assert.Equal(t, 111, rec.Steps)
}

func TestResolve_InvalidInput(t *testing.T) {
	cache := NewCache()
	_, err := Resolve(big.NewInt(0), 100, cache)
	assert.ErrorIs(t, err, ErrInvalidStart)
	_, err = Resolve(big.NewInt(-3), 100, cache)
	assert.ErrorIs(t, err, ErrInvalidStart)
	_, err = Resolve(big.NewInt(5), -1, cache)
	assert.ErrorIs(t, err, ErrInvalidBudget)
}

func TestResolve_KnownCycleSuffix(t *testing.T) {
	// a trajectory that runs into a value known to cycle inherits that
	// cycle instead of being reported as converged or a fresh cycle
	cache := NewCache()
	cache.Put(big.NewInt(16), Record{Outcome: Cycled, CycleValue: big.NewInt(16)})

	rec, err := Resolve(big.NewInt(32), 100, cache)
	require.NoError(t, err)
	assert.Equal(t, Cycled, rec.Outcome)
	assert.Equal(t, int64(16), rec.CycleValue.Int64())

	// and the result is recorded for the start value
	got, ok := cache.Get(big.NewInt(32))
	require.True(t, ok)
	assert.Equal(t, Cycled, got.Outcome)
}

func TestResolve_NoFalseCycles(t *testing.T) {
	// cross-trajectory revisits are constant with a warm cache; none of
	// them may ever be reported as a cycle
	cache := NewCache()
	n := new(big.Int)
	for i := int64(1); i <= 100000; i++ {
		n.SetInt64(i)
		rec, err := Resolve(n, 10000, cache)
		require.NoError(t, err)
		require.Equal(t, Converged, rec.Outcome, "unexpected outcome for %d", i)
	}
}

func TestCache_ConflictPanics(t *testing.T) {
	cache := NewCache()
	cache.Put(big.NewInt(5), Record{Outcome: Converged, Steps: 5, Peak: big.NewInt(16)})

	// re-inserting the identical record is a no-op
	assert.NotPanics(t, func() {
		cache.Put(big.NewInt(5), Record{Outcome: Converged, Steps: 5, Peak: big.NewInt(16)})
	})
	// a different record for the same key is a broken invariant
	assert.Panics(t, func() {
		cache.Put(big.NewInt(5), Record{Outcome: Converged, Steps: 6, Peak: big.NewInt(16)})
	})
}

func TestCache_HitMissCounters(t *testing.T) {
	cache := NewCache()
	_, ok := cache.Get(big.NewInt(99))
	assert.False(t, ok)
	assert.Equal(t, uint64(1), cache.Misses())

	_, ok = cache.Get(big.NewInt(1))
	assert.True(t, ok)
	assert.Equal(t, uint64(1), cache.Hits())
}
