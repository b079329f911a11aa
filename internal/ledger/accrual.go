package ledger

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// Fixed accrual constants.
const (
	// PointsPerUnitPerDay is the micro-points earned by one whole unit staked for one day.
	PointsPerUnitPerDay = 1_000_000

	// UnitsPerWhole is the number of smallest transferable units in one whole unit.
	UnitsPerWhole = 1_000_000_000

	// SecondsPerDay is the length of the accrual day.
	SecondsPerDay = 86_400

	// MicroPointsPerPoint scales micro-points to whole claimable points.
	MicroPointsPerPoint = 1_000_000
)

// accrualDivisor is UnitsPerWhole * SecondsPerDay. Read-only.
var accrualDivisor = uint256.NewInt(UnitsPerWhole * SecondsPerDay)

// Points returns the micro-points earned by staked units held for elapsed seconds.
//
// The multiply-before-divide sequence runs in 256-bit integers so no
// intermediate can wrap; the floor-divided result must fit in uint64 or
// KindOverflow is returned. Either input being zero short-circuits to 0.
func Points(staked, elapsed uint64) (uint64, error) {
	if staked == 0 || elapsed == 0 {
		return 0, nil
	}

	var p uint256.Int
	if _, overflow := p.MulOverflow(uint256.NewInt(staked), uint256.NewInt(elapsed)); overflow {
		return 0, overflowError("points product")
	}
	if _, overflow := p.MulOverflow(&p, uint256.NewInt(PointsPerUnitPerDay)); overflow {
		return 0, overflowError("points product")
	}
	p.Div(&p, accrualDivisor)

	if !p.IsUint64() {
		return 0, overflowError("points")
	}
	return p.Uint64(), nil
}

// Claimable converts micro-points to whole points, truncating the remainder.
func Claimable(microPoints uint64) uint64 {
	return microPoints / MicroPointsPerPoint
}

// AddPoints adds delta to total, failing with KindOverflow on wraparound.
func AddPoints(total, delta uint64) (uint64, error) {
	sum, carry := bits.Add64(total, delta, 0)
	if carry != 0 {
		return 0, overflowError("total points")
	}
	return sum, nil
}

// AddStake adds amount to staked, failing with KindOverflow on wraparound.
func AddStake(staked, amount uint64) (uint64, error) {
	sum, carry := bits.Add64(staked, amount, 0)
	if carry != 0 {
		return 0, overflowError("staked amount")
	}
	return sum, nil
}

// SubStake subtracts amount from staked, failing with KindUnderflow below zero.
func SubStake(staked, amount uint64) (uint64, error) {
	diff, borrow := bits.Sub64(staked, amount, 0)
	if borrow != 0 {
		return 0, underflowError("staked amount")
	}
	return diff, nil
}
