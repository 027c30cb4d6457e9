// Package dice provides the d10 pool and formula primitives used by the
// Chronicles of Darkness roll collaborators.
package dice

import "fmt"

// SuccessThreshold is the lowest face that counts as a success on a pool die.
const SuccessThreshold = 8

// ChanceThreshold is the only face that counts as a success on a chance die.
const ChanceThreshold = 10

// RollResult holds the full audit trail for a single roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // expression actually rolled, e.g. "5d10"
	Dice       []int  // individual die faces
	Modifier   int    // flat modifier (may be negative)
	Chance     bool   // rolled as a chance die from an empty pool
}

// Total returns the sum of all die faces plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// Successes returns the number of dice showing SuccessThreshold or higher,
// or ChanceThreshold for a chance die. The modifier never contributes successes.
func (r RollResult) Successes() int {
	threshold := SuccessThreshold
	if r.Chance {
		threshold = ChanceThreshold
	}
	n := 0
	for _, d := range r.Dice {
		if d >= threshold {
			n++
		}
	}
	return n
}

// String returns a human-readable audit string in the format:
//
//	"5d10 → [3 8 10 1 9] +0 = 31 (3 successes)"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	expr := r.Expression
	if r.Chance {
		expr += " chance"
	}
	return fmt.Sprintf("%s → %v %+d = %d (%d successes)",
		expr, r.Dice, r.Modifier, r.Total(), r.Successes())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
