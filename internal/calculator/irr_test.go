package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReturnLens/internal/model"
)

func TestCalculateIRR_FiveYearDoubleAndHalf(t *testing.T) {
	rate, err := CalculateIRR(100000, 250000, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.2011, rate, 1e-4)
}

func TestCalculateIRR_FlatOutcome(t *testing.T) {
	rate, err := CalculateIRR(100000, 100000, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0, rate, 1e-12)
}

func TestCalculateIRR_RoundTrip(t *testing.T) {
	cases := []struct{ initial, outcome, years float64 }{
		{100000, 250000, 5},
		{1000, 900, 2},
		{50, 5000, 10},
		{250000, 260000, 0.25},
		{1, 1e6, 30},
		{10000, 10, 3},
	}
	for _, c := range cases {
		rate, err := CalculateIRR(c.initial, c.outcome, c.years)
		require.NoError(t, err)
		out, err := CalculateOutcome(c.initial, rate, c.years)
		require.NoError(t, err)
		assert.InEpsilon(t, c.outcome, out, 1e-4, "I=%v O=%v Y=%v", c.initial, c.outcome, c.years)
	}
}

func TestCalculateIRR_InvalidInput(t *testing.T) {
	for _, c := range [][3]float64{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}, {-1, 1, 1}, {1, math.NaN(), 1}} {
		_, err := CalculateIRR(c[0], c[1], c[2])
		assert.ErrorIs(t, err, ErrInvalidInput, "inputs %v", c)
	}
}

func TestCalculateOutcome_ThreeYearsAtFifteen(t *testing.T) {
	out, err := CalculateOutcome(50000, 0.15, 3)
	require.NoError(t, err)
	assert.InDelta(t, 76043.75, out, 1e-6)
}

func TestCalculateOutcome_IncreasingInRate(t *testing.T) {
	prev := math.Inf(-1)
	for r := -0.9; r <= 2; r += 0.05 {
		out, err := CalculateOutcome(1000, r, 4)
		require.NoError(t, err)
		assert.Greater(t, out, prev, "rate %v", r)
		prev = out
	}
}

func TestCalculateOutcome_InvalidInput(t *testing.T) {
	_, err := CalculateOutcome(1000, -1, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = CalculateOutcome(0, 0.1, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = CalculateOutcome(1000, 0.1, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculateInitial_InverseOfOutcome(t *testing.T) {
	for _, c := range []struct{ outcome, rate, years float64 }{
		{76043.75, 0.15, 3},
		{1e6, 0.07, 20},
		{500, -0.3, 2},
		{1234.5, 0, 7},
	} {
		in, err := CalculateInitial(c.outcome, c.rate, c.years)
		require.NoError(t, err)
		out, err := CalculateOutcome(in, c.rate, c.years)
		require.NoError(t, err)
		assert.InEpsilon(t, c.outcome, out, 1e-12)
	}

	in, err := CalculateInitial(76043.75, 0.15, 3)
	require.NoError(t, err)
	assert.InDelta(t, 50000, in, 1e-6)
}

func TestCalculateInitial_DivisionByZero(t *testing.T) {
	_, err := CalculateInitial(1000, -1, 5)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	_, err = CalculateInitial(1000, -1.5, 5)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	_, err = CalculateInitial(1000, -0.999999, 1e5)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSolve_NoSignChange(t *testing.T) {
	sellOnly := Schedule{
		{TimeYears: 0, Amount: 100000},
		{TimeYears: 1, Amount: 20000},
		{TimeYears: 5, Amount: 100000},
	}
	_, err := DefaultSolver().SolveRate(sellOnly)
	assert.ErrorIs(t, err, ErrNoSignChange)

	outOnly := Schedule{{TimeYears: 0, Amount: -100}, {TimeYears: 2, Amount: -50}}
	_, err = DefaultSolver().SolveRate(outOnly)
	assert.ErrorIs(t, err, ErrNoSignChange)
}

func TestSolve_TooShort(t *testing.T) {
	_, err := DefaultSolver().SolveRate(Schedule{{TimeYears: 0, Amount: -1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSolve_NewtonOnMultipleFlows(t *testing.T) {
	s := Schedule{
		{TimeYears: 0, Amount: -100},
		{TimeYears: 1, Amount: 50},
		{TimeYears: 2, Amount: 80},
	}
	sol, err := DefaultSolver().Solve(s)
	require.NoError(t, err)
	assert.Equal(t, MethodNewton, sol.Method)
	assert.LessOrEqual(t, sol.Iterations, 100)
	assert.InDelta(t, 0, s.NPV(sol.Rate), 1e-6)
}

func TestSolve_BisectionWhenNewtonLeavesBracket(t *testing.T) {
	s := Schedule{
		{TimeYears: 0, Amount: -100},
		{TimeYears: 1, Amount: 50},
		{TimeYears: 2, Amount: 80},
	}
	sv := DefaultSolver()
	sv.Seed = 9.9
	sol, err := sv.Solve(s)
	require.NoError(t, err)
	assert.Equal(t, MethodBisection, sol.Method)
	assert.InDelta(t, 0, s.NPV(sol.Rate), 1e-6)
}

func TestSolve_RootOutsideBracket(t *testing.T) {
	s := Schedule{
		{TimeYears: 0, Amount: -100},
		{TimeYears: 1, Amount: 5000},
		{TimeYears: 2, Amount: 5000},
	}
	_, err := DefaultSolver().SolveRate(s)
	assert.ErrorIs(t, err, ErrConvergence)
}

func TestSolve_IterationCap(t *testing.T) {
	s := Schedule{
		{TimeYears: 0, Amount: -100},
		{TimeYears: 1, Amount: 50},
		{TimeYears: 2, Amount: 80},
	}
	sv := DefaultSolver()
	sv.MaxIterations = 1
	_, err := sv.SolveRate(s)
	assert.ErrorIs(t, err, ErrConvergence)
}

func TestCalculateBlendedIRR_NoFollowOnsMatchesSimple(t *testing.T) {
	ref := date(2024, 1, 1)
	for _, c := range [][3]float64{{100000, 250000, 5}, {1000, 800, 3}, {10, 11, 0.5}} {
		simple, err := CalculateIRR(c[0], c[1], c[2])
		require.NoError(t, err)
		blended, err := CalculateBlendedIRR(c[0], c[1], c[2], nil, ref)
		require.NoError(t, err)
		assert.InDelta(t, simple, blended, 1e-9)
	}
}

func TestCalculateBlendedIRR_SpecifiedFollowOn(t *testing.T) {
	ref := date(2024, 1, 1)
	followOns := []model.FollowOnInvestment{
		followOn(50000, model.InvestmentBuy, model.RelativeTiming(1, model.UnitYears),
			model.CustomValuation(50000, model.CustomSpecified)),
	}
	rate, err := CalculateBlendedIRR(100000, 300000, 5, followOns, ref)
	require.NoError(t, err)

	s, err := BuildSchedule(100000, 300000, 5, followOns, ref, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, s.NPV(rate), 1e-6)

	simple, err := CalculateIRR(100000, 300000, 5)
	require.NoError(t, err)
	assert.Less(t, rate, simple)
}

func TestCalculateBlendedIRR_TagAlongFixedPoint(t *testing.T) {
	ref := date(2024, 1, 1)
	followOns := []model.FollowOnInvestment{
		followOn(50000, model.InvestmentBuy, model.RelativeTiming(1, model.UnitYears), model.TagAlong()),
	}
	sol, err := DefaultSolver().SolveBlendedRate(100000, 300000, 5, followOns, ref)
	require.NoError(t, err)

	// A tag-along buy is worth its face amount in present value at the fixed
	// point, so the rate is that of 150000 growing into 300000.
	assert.InDelta(t, math.Pow(2, 0.2)-1, sol.Rate, 1e-5)

	s, err := BuildSchedule(100000, 300000, 5, followOns, ref, RateGrowth(sol.Rate))
	require.NoError(t, err)
	assert.InDelta(t, 0, s.NPV(sol.Rate)/150000, 1e-6)
}

func TestCalculateBlendedIRR_TagAlongSell(t *testing.T) {
	ref := date(2024, 1, 1)
	followOns := []model.FollowOnInvestment{
		followOn(40000, model.InvestmentSell, model.AbsoluteTiming(date(2026, 1, 1)), model.TagAlong()),
	}
	sol, err := DefaultSolver().SolveBlendedRate(100000, 120000, 4, followOns, ref)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(120000.0/60000, 0.25)-1, sol.Rate, 1e-5)
}

func TestCalculateBlendedIRR_LargeLateTagAlongBuy(t *testing.T) {
	ref := date(2024, 1, 1)
	followOns := []model.FollowOnInvestment{
		followOn(200000, model.InvestmentBuy, model.RelativeTiming(4, model.UnitYears), model.TagAlong()),
	}
	sol, err := DefaultSolver().SolveBlendedRate(100000, 600000, 5, followOns, ref)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(2, 0.2)-1, sol.Rate, 1e-6)

	s, err := BuildSchedule(100000, 600000, 5, followOns, ref, RateGrowth(sol.Rate))
	require.NoError(t, err)
	assert.InDelta(t, 0, s.NPV(sol.Rate)/300000, 1e-6)
}

func TestCalculateBlendedIRR_TagAlongWithSpecifiedFollowOn(t *testing.T) {
	ref := date(2024, 1, 1)
	followOns := []model.FollowOnInvestment{
		followOn(50000, model.InvestmentBuy, model.RelativeTiming(2, model.UnitYears), model.TagAlong()),
		followOn(40000, model.InvestmentSell, model.RelativeTiming(4, model.UnitYears),
			model.CustomValuation(40000, model.CustomSpecified)),
	}
	sol, err := DefaultSolver().SolveBlendedRate(100000, 400000, 5, followOns, ref)
	require.NoError(t, err)

	s, err := BuildSchedule(100000, 400000, 5, followOns, ref, RateGrowth(sol.Rate))
	require.NoError(t, err)
	assert.InDelta(t, 0, s.NPV(sol.Rate)/150000, 1e-6)
}

func TestCalculateBlendedIRR_NoFixedPoint(t *testing.T) {
	// The tag-along sale returns more than was invested, so no rate prices
	// the position at zero.
	ref := date(2024, 1, 1)
	followOns := []model.FollowOnInvestment{
		followOn(150000, model.InvestmentSell, model.RelativeTiming(2, model.UnitYears), model.TagAlong()),
	}
	_, err := DefaultSolver().SolveBlendedRate(100000, 100000, 5, followOns, ref)
	assert.ErrorIs(t, err, ErrConvergence)

	sv := DefaultSolver()
	sv.MaxOuterIterations = 1
	_, err = sv.SolveBlendedRate(100000, 100000, 5, followOns, ref)
	assert.ErrorIs(t, err, ErrConvergence)
}

func TestCalculateBlendedIRR_InvalidTiming(t *testing.T) {
	ref := date(2024, 1, 1)
	followOns := []model.FollowOnInvestment{
		followOn(50000, model.InvestmentBuy, model.AbsoluteTiming(ref), model.CustomValuation(1, model.CustomSpecified)),
	}
	_, err := CalculateBlendedIRR(100000, 300000, 5, followOns, ref)
	assert.ErrorIs(t, err, ErrInvalidTiming)
}
