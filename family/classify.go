// Package family classifies integers against the "efficient family" sets
// a*4^j + 1 +- z that earlier exploration flagged as fast-converging.
package family

import (
	"math/big"

	"CollatzScan/collatz"
)

var one = big.NewInt(1)

// Membership records that a value lies within the tolerance window of
// a*4^j + 1, i.e. n = a*4^j + 1 + z with |z| <= tolerance.
type Membership struct {
	A int64
	J int
	Z int64
}

// Classify reports whether n belongs to a family generated by one of the
// given a-values, trying exponents j = 0, 1, ... and for each exponent the
// generators in their given order. The first match wins: tolerance windows
// of different generators can overlap, and the scan order is the only
// tie-break. The exponent loop stops at jMax, or earlier once the smallest
// generator's base term exceeds 2n, past which no window can reach back
// down to n.
func Classify(n *big.Int, generators []int64, jMax int, tolerance int64) (Membership, bool) {
	if n.Sign() <= 0 || len(generators) == 0 || tolerance < 0 {
		return Membership{}, false
	}

	aMin := generators[0]
	for _, a := range generators[1:] {
		if a < aMin {
			aMin = a
		}
	}

	limit := new(big.Int).Lsh(n, 1) // 2n
	tol := big.NewInt(tolerance)
	power := big.NewInt(1) // 4^j
	base := new(big.Int)
	z := new(big.Int)
	for j := 0; j < jMax; j++ {
		if base.Mul(big.NewInt(aMin), power).Cmp(limit) > 0 {
			break
		}
		for _, a := range generators {
			base.Mul(big.NewInt(a), power).Add(base, one)
			z.Sub(n, base)
			if z.CmpAbs(tol) <= 0 {
				return Membership{A: a, J: j, Z: z.Int64()}, true
			}
		}
		power.Lsh(power, 2)
	}
	return Membership{}, false
}

// EntrySteps walks the trajectory of n and reports how many step
// applications pass before it first lands on a family member, together with
// that member and its classification. The walk gives up once the trajectory
// reaches 1 without meeting a member, or after maxSteps applications.
func EntrySteps(n *big.Int, generators []int64, jMax int, tolerance int64, maxSteps int) (int, *big.Int, Membership, bool) {
	current := new(big.Int).Set(n)
	for k := 0; k <= maxSteps; k++ {
		if m, ok := Classify(current, generators, jMax, tolerance); ok {
			return k, current, m, true
		}
		if current.Cmp(one) == 0 {
			break
		}
		current = collatz.Step(current)
	}
	return 0, nil, Membership{}, false
}
