package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cod/internal/game/dice"
)

// fixedSource returns the queued values in order, wrapping around.
type fixedSource struct {
	vals []int
	i    int
}

func (f *fixedSource) Intn(n int) int {
	v := f.vals[f.i%len(f.vals)] % n
	f.i++
	return v
}

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d10+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
}

func TestRollResult_Successes(t *testing.T) {
	r := dice.RollResult{Expression: "5d10", Dice: []int{1, 7, 8, 9, 10}, Modifier: 4}
	assert.Equal(t, 3, r.Successes(), "modifier must not add successes")
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d10", Dice: []int{8, 5}}
	assert.Equal(t, "2d10 → [8 5] +0 = 13 (1 successes)", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		faces := rapid.SliceOf(rapid.IntRange(1, 10)).Draw(rt, "dice")
		modifier := rapid.IntRange(-50, 50).Draw(rt, "modifier")
		r := dice.RollResult{Expression: "Nd10", Dice: faces, Modifier: modifier}

		expected := modifier
		for _, d := range faces {
			expected += d
		}
		assert.Equal(rt, expected, r.Total())
		assert.LessOrEqual(rt, r.Successes(), len(faces))
		assert.Contains(rt, r.String(), fmt.Sprintf("= %d", r.Total()))
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		raw   string
		count int
		sides int
		mod   int
	}{
		{"d10", "1d10", 1, 10, 0},
		{"5d10", "5d10", 5, 10, 0},
		{"1d10+3", "1d10+3", 1, 10, 3},
		{"1d10 + 3", "1d10+3", 1, 10, 3},
		{"2D6-1", "2d6-1", 2, 6, -1},
	}
	for _, tt := range tests {
		e, err := dice.Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.raw, e.Raw, tt.in)
		assert.Equal(t, tt.count, e.Count, tt.in)
		assert.Equal(t, tt.sides, e.Sides, tt.in)
		assert.Equal(t, tt.mod, e.Modifier, tt.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "10", "0d10", "-1d10", "1d1", "1dx", "1d10+x"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestPoolExpression(t *testing.T) {
	e := dice.PoolExpression(5)
	assert.Equal(t, "5d10", e.Raw)
	assert.Equal(t, 5, e.Count)

	assert.False(t, e.Chance)

	chance := dice.PoolExpression(-2)
	assert.Equal(t, "1d10", chance.Raw, "empty pool rolls a chance die")
	assert.Equal(t, 1, chance.Count)
	assert.True(t, chance.Chance)
}

func TestRoll_ChanceDieSucceedsOnlyOnTen(t *testing.T) {
	tests := []struct {
		face      int
		successes int
	}{
		{1, 0},
		{8, 0},
		{9, 0},
		{10, 1},
	}
	for _, tt := range tests {
		res, err := dice.Roll(dice.PoolExpression(0), &fixedSource{vals: []int{tt.face - 1}})
		require.NoError(t, err)
		require.Equal(t, []int{tt.face}, res.Dice)
		assert.True(t, res.Chance)
		assert.Equal(t, tt.successes, res.Successes(), "chance die face %d", tt.face)
	}

	res, err := dice.Roll(dice.PoolExpression(1), &fixedSource{vals: []int{7}})
	require.NoError(t, err)
	assert.False(t, res.Chance)
	assert.Equal(t, 1, res.Successes(), "a one-die pool still succeeds on 8")
}

func TestRollResult_String_MarksChanceDie(t *testing.T) {
	r := dice.RollResult{Expression: "1d10", Dice: []int{9}, Chance: true}
	assert.Equal(t, "1d10 chance → [9] +0 = 9 (0 successes)", r.String())
}

func TestRoll_FacesInRange_Property(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 20).Draw(rt, "size")
		res, err := dice.Roll(dice.PoolExpression(size), src)
		require.NoError(rt, err)
		require.Len(rt, res.Dice, size)
		for _, d := range res.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, 10)
		}
	})
}

func TestRollExpr_UsesSource(t *testing.T) {
	res, err := dice.RollExpr("3d10+1", &fixedSource{vals: []int{0, 7, 9}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 8, 10}, res.Dice)
	assert.Equal(t, 20, res.Total())
	assert.Equal(t, 2, res.Successes())
}

func TestRoller_RollPool(t *testing.T) {
	r := dice.NewLoggedRoller(&fixedSource{vals: []int{9}}, zaptest.NewLogger(t))
	res, err := r.RollPool(2)
	require.NoError(t, err)
	assert.Equal(t, "2d10", res.Expression)
	assert.Equal(t, 2, res.Successes())
}

func TestNewLoggedRoller_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedRoller(nil, nil) })
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSeededSource_Replays(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 20; i++ {
		x, y := a.Intn(10), b.Intn(10)
		assert.Equal(t, x, y)
		assert.GreaterOrEqual(t, x, 0)
		assert.Less(t, x, 10)
	}
	assert.Panics(t, func() { a.Intn(0) })
}

func TestParseInitiative(t *testing.T) {
	ini, err := dice.ParseInitiative("1d10 + @advantages.initiative.value")
	require.NoError(t, err)
	assert.Equal(t, "advantages.initiative.value", ini.Ref)
	assert.Equal(t, "1d10", ini.Base.Raw)

	e := ini.Expression(6)
	assert.Equal(t, "1d10+6", e.Raw)
	assert.Equal(t, 6, e.Modifier)

	reparsed, err := dice.Parse(e.Raw)
	require.NoError(t, err)
	assert.Equal(t, e, reparsed)
}

func TestParseInitiative_Errors(t *testing.T) {
	for _, tmpl := range []string{"1d10", "1d10 + initiative", "x + @a", "1d10 + @"} {
		_, err := dice.ParseInitiative(tmpl)
		assert.Error(t, err, "template %q", tmpl)
		assert.True(t, strings.HasPrefix(err.Error(), "dice:"), "template %q", tmpl)
	}
}
