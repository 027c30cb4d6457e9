package dice

// PoolSides is the die size of every Chronicles of Darkness pool.
const PoolSides = 10

// PoolExpression returns the expression for a pool of size dice. A pool that
// has been reduced to zero or below is rolled as a single chance die.
//
// Postcondition: result.Count >= 1 and result.Sides == PoolSides;
// result.Chance is set iff size < 1.
func PoolExpression(size int) Expression {
	if size < 1 {
		return Expression{Raw: format(1, PoolSides, 0), Count: 1, Sides: PoolSides, Chance: true}
	}
	return Expression{Raw: format(size, PoolSides, 0), Count: size, Sides: PoolSides}
}

// Roll evaluates an Expression using the given Source.
//
// Precondition: expr must come from Parse or PoolExpression; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and every face is in [1, expr.Sides].
func Roll(expr Expression, src Source) (RollResult, error) {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
		Chance:     expr.Chance,
	}, nil
}

// RollExpr parses expr and rolls it using src in a single call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src)
}
