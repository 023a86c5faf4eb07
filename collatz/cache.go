package collatz

import (
	"fmt"
	"math/big"
)

// Outcome classifies the resolution of a trajectory.
type Outcome int

const (
	// Converged means the trajectory reached 1.
	Converged Outcome = iota
	// Cycled means the trajectory revisited one of its own earlier values
	// without reaching 1.
	Cycled
	// Unresolved means the step budget ran out before either happened.
	Unresolved
)

func (o Outcome) String() string {
	switch o {
	case Converged:
		return "converged"
	case Cycled:
		return "cycled"
	case Unresolved:
		return "unresolved"
	}
	return "unknown"
}

// Record is the resolved outcome for a single starting value. For a
// Converged record, Steps is the exact number of step applications needed to
// reach 1 and Peak is the largest value the trajectory attains. For a Cycled
// record, CycleValue is the value the trajectory revisited. Unresolved
// outcomes are returned by Resolve but never stored as records, since a
// larger budget might still resolve them.
type Record struct {
	Outcome    Outcome
	Steps      int
	Peak       *big.Int
	CycleValue *big.Int
}

func (r Record) equal(o Record) bool {
	if r.Outcome != o.Outcome || r.Steps != o.Steps {
		return false
	}
	return bigEqual(r.Peak, o.Peak) && bigEqual(r.CycleValue, o.CycleValue)
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// Cache memoizes resolved outcomes, keyed by the decimal text of the
// starting value. An entry is written once and never changes: a value's
// outcome under the Collatz map is invariant. The cache only ever grows;
// for a verification run its size is bounded by the set of values that
// appear on any resolved trajectory.
//
// A Cache is not safe for concurrent use. Parallel verification gives each
// worker its own cache instead of sharing one.
type Cache struct {
	records map[string]Record
	hits    uint64
	misses  uint64
}

// NewCache returns a cache pre-seeded with the base case: 1 converges in
// zero steps.
func NewCache() *Cache {
	return &Cache{
		records: map[string]Record{
			"1": {Outcome: Converged, Steps: 0, Peak: big.NewInt(1)},
		},
	}
}

// Get returns the record for n, if one has been resolved. Lookups through
// Get are counted in the hit/miss statistics; the engine's per-step probes
// bypass the counters via peek.
func (c *Cache) Get(n *big.Int) (Record, bool) {
	r, ok := c.records[n.String()]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

func (c *Cache) peek(key string) (Record, bool) {
	r, ok := c.records[key]
	return r, ok
}

// Put inserts the record for n. Overwriting an existing key with a
// different record means the suffix-sharing logic is broken, so it panics
// rather than let a wrong step count spread through later lookups.
func (c *Cache) Put(n *big.Int, r Record) {
	key := n.String()
	if old, ok := c.records[key]; ok {
		if !old.equal(r) {
			panic(fmt.Sprintf("collatz: conflicting records for %s: %+v vs %+v", key, old, r))
		}
		return
	}
	c.records[key] = r
}

// Len reports the number of resolved values.
func (c *Cache) Len() int { return len(c.records) }

// Hits reports how many Get calls found an existing record.
func (c *Cache) Hits() uint64 { return c.hits }

// Misses reports how many Get calls found nothing.
func (c *Cache) Misses() uint64 { return c.misses }
