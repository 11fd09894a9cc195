package calculator

import (
	"fmt"
	"math"
	"time"

	"ReturnLens/internal/model"
)

// Method names the numerical path a rate was found by.
type Method string

const (
	MethodClosedForm Method = "closed_form"
	MethodNewton     Method = "newton"
	MethodBisection  Method = "bisection"
)

// Solution is a solved rate together with how it was reached.
type Solution struct {
	Rate       float64
	Method     Method
	Iterations int
}

// Solver holds the numerical settings of the rate solver. It carries no state
// between calls and is safe to share between goroutines.
type Solver struct {
	// Tolerance is the |NPV| below which a rate is accepted.
	Tolerance float64
	// MaxIterations caps Newton and, separately, the bisection fallback.
	MaxIterations int
	// Seed is the Newton starting rate.
	Seed float64
	// BracketLow and BracketHigh bound Newton steps and the bisection search.
	BracketLow  float64
	BracketHigh float64
	// OuterTolerance and MaxOuterIterations bound the tag-along fixed point.
	OuterTolerance     float64
	MaxOuterIterations int
}

// DefaultSolver returns the standard solver settings.
func DefaultSolver() Solver {
	return Solver{
		Tolerance:          1e-6,
		MaxIterations:      100,
		Seed:               0.1,
		BracketLow:         -0.99,
		BracketHigh:        10.0,
		OuterTolerance:     1e-6,
		MaxOuterIterations: 20,
	}
}

// minDerivative is the |dNPV/dr| below which a Newton step is not trusted.
const minDerivative = 1e-12

// SolveRate finds r such that the schedule's NPV is zero.
func (sv Solver) SolveRate(s Schedule) (float64, error) {
	sol, err := sv.Solve(s)
	return sol.Rate, err
}

// Solve is SolveRate with diagnostics. Two-flow schedules are solved in
// closed form; anything else goes through Newton-Raphson from the seed and
// falls back to bisection over the bracket.
func (sv Solver) Solve(s Schedule) (Solution, error) {
	if len(s) < 2 {
		return Solution{}, invalidInput("schedule needs at least two cash flows, got %d", len(s))
	}
	for i, e := range s {
		if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			return Solution{}, invalidInput("cash flow %d has amount %v", i, e.Amount)
		}
		if !(e.TimeYears >= 0) || math.IsInf(e.TimeYears, 0) {
			return Solution{}, invalidInput("cash flow %d has time %v", i, e.TimeYears)
		}
	}
	if !s.HasSignChange() {
		return Solution{}, fmt.Errorf("%w: all %d cash flows have the same sign", ErrNoSignChange, len(s))
	}

	if r, ok := closedForm(s); ok {
		return Solution{Rate: r, Method: MethodClosedForm}, nil
	}
	if sol, ok := sv.newton(s); ok {
		return sol, nil
	}
	return sv.bisect(s)
}

// closedForm solves schedules with exactly two non-zero flows at different
// times: a0(1+r)^-t0 + a1(1+r)^-t1 = 0 gives (1+r)^(t1-t0) = -a1/a0.
func closedForm(s Schedule) (float64, bool) {
	var flows []model.CashFlowEvent
	for _, e := range s {
		if e.Amount != 0 {
			flows = append(flows, e)
		}
	}
	if len(flows) != 2 {
		return 0, false
	}
	a, b := flows[0], flows[1]
	dt := b.TimeYears - a.TimeYears
	if dt <= 0 {
		return 0, false
	}
	r := math.Pow(-b.Amount/a.Amount, 1/dt) - 1
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= -1 {
		return 0, false
	}
	return r, true
}

func (sv Solver) newton(s Schedule) (Solution, bool) {
	scale := s.scale()
	r := sv.Seed
	for i := 1; i <= sv.MaxIterations; i++ {
		v, d := s.npvWithDerivative(r)
		if math.Abs(v) < sv.Tolerance {
			return Solution{Rate: r, Method: MethodNewton, Iterations: i}, true
		}
		if math.IsNaN(d) || math.Abs(d) < minDerivative {
			return Solution{}, false
		}
		next := r - v/d
		if math.IsNaN(next) || next <= sv.BracketLow || next >= sv.BracketHigh {
			return Solution{}, false
		}
		// A step at machine precision means the residual is rounding noise
		// on large amounts.
		if math.Abs(next-r) <= 1e-15*math.Max(1, math.Abs(r)) && math.Abs(v) < sv.Tolerance*scale {
			return Solution{Rate: next, Method: MethodNewton, Iterations: i}, true
		}
		r = next
	}
	return Solution{}, false
}

func (sv Solver) bisect(s Schedule) (Solution, error) {
	lo, hi := sv.BracketLow, sv.BracketHigh
	flo, fhi := s.NPV(lo), s.NPV(hi)
	if math.Abs(flo) < sv.Tolerance {
		return Solution{Rate: lo, Method: MethodBisection}, nil
	}
	if math.Abs(fhi) < sv.Tolerance {
		return Solution{Rate: hi, Method: MethodBisection}, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return Solution{}, fmt.Errorf("%w: no root bracketed in [%g, %g]", ErrConvergence, lo, hi)
	}
	for i := 1; i <= sv.MaxIterations; i++ {
		mid := lo + (hi-lo)/2
		fm := s.NPV(mid)
		if math.Abs(fm) < sv.Tolerance || (hi-lo)/2 <= 1e-15*math.Max(1, math.Abs(mid)) {
			return Solution{Rate: mid, Method: MethodBisection, Iterations: i}, nil
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return Solution{}, fmt.Errorf("%w: bisection stopped after %d iterations", ErrConvergence, sv.MaxIterations)
}

// scale is the total absolute cash moved by the schedule.
func (s Schedule) scale() float64 {
	var sum float64
	for _, e := range s {
		sum += math.Abs(e.Amount)
	}
	return math.Max(1, sum)
}

// SolveBlendedRate solves the rate of a schedule with follow-ons. Tag-along
// follow-ons are priced on the curve of the rate being solved, so the solver
// iterates: assume a rate, price the tag-along flows with it, solve the now
// concrete schedule, and repeat until the rate moves by less than
// OuterTolerance.
func (sv Solver) SolveBlendedRate(initial, outcome, years float64, followOns []model.FollowOnInvestment, ref time.Time) (Solution, error) {
	if !hasTagAlong(followOns) {
		s, err := BuildSchedule(initial, outcome, years, followOns, ref, nil)
		if err != nil {
			return Solution{}, err
		}
		return sv.Solve(s)
	}

	r, ok := sv.faceValueRate(initial, outcome, years, followOns, ref)
	if !ok {
		r = sv.Seed
		if outcome > 0 && initial > 0 && years > 0 {
			if simple := math.Pow(outcome/initial, 1/years) - 1; simple > sv.BracketLow && simple < sv.BracketHigh {
				r = simple
			}
		}
	}

	var prevRate, prevStep float64
	total := 0
	for k := 1; k <= sv.MaxOuterIterations; k++ {
		s, err := BuildSchedule(initial, outcome, years, followOns, ref, RateGrowth(r))
		if err != nil {
			return Solution{}, err
		}
		sol, err := sv.Solve(s)
		if err != nil {
			return Solution{}, fmt.Errorf("outer iteration %d: %w", k, err)
		}
		total += sol.Iterations
		step := sol.Rate - r
		if math.Abs(step) < sv.OuterTolerance {
			sol.Iterations = total
			return sol, nil
		}

		// Plain substitution diverges when large tag-along flows come late,
		// so after the first pass take a secant step on the residual.
		next := sol.Rate
		if k > 1 && step != prevStep {
			next = r - step*(r-prevRate)/(step-prevStep)
			if math.IsNaN(next) || next <= sv.BracketLow || next >= sv.BracketHigh {
				next = r + step/2
			}
		}
		prevRate, prevStep, r = r, step, next
	}
	return Solution{}, fmt.Errorf("%w: tag-along rate still moving after %d outer iterations",
		ErrConvergence, sv.MaxOuterIterations)
}

// faceValueRate estimates the blended rate by folding every tag-along
// follow-on into the initial investment at its face amount. A flow priced on
// the curve of r and discounted at r is worth its face amount today, so the
// estimate is the fixed point up to rounding. It fails when the folded
// position is not positive or its schedule has no rate inside the bracket.
func (sv Solver) faceValueRate(initial, outcome, years float64, followOns []model.FollowOnInvestment, ref time.Time) (float64, bool) {
	position := initial
	var fixed []model.FollowOnInvestment
	for _, f := range followOns {
		if f.Valuation.Mode != model.ValuationTagAlong {
			fixed = append(fixed, f)
			continue
		}
		delta, err := ResolveAmount(f, 0, RateGrowth(0))
		if err != nil {
			return 0, false
		}
		position += delta
	}
	if !positive(position) {
		return 0, false
	}
	s, err := BuildSchedule(position, outcome, years, fixed, ref, nil)
	if err != nil {
		return 0, false
	}
	sol, err := sv.Solve(s)
	if err != nil || sol.Rate <= sv.BracketLow || sol.Rate >= sv.BracketHigh {
		return 0, false
	}
	return sol.Rate, true
}

// ComputeOutcome returns initial × (1+rate)^years.
func ComputeOutcome(initial, rate, years float64) (float64, error) {
	if !positive(initial) {
		return 0, invalidInput("initial investment %v must be positive", initial)
	}
	if !(rate > -1) || math.IsInf(rate, 0) {
		return 0, invalidInput("rate %v must be greater than -100%%", rate)
	}
	if !(years >= 0) || math.IsInf(years, 0) {
		return 0, invalidInput("years %v must not be negative", years)
	}
	out := initial * math.Pow(1+rate, years)
	if math.IsInf(out, 0) {
		return 0, invalidInput("outcome overflows for rate %v over %v years", rate, years)
	}
	return out, nil
}

// ComputeInitial returns outcome / (1+rate)^years, the investment needed
// today to reach outcome at rate.
func ComputeInitial(outcome, rate, years float64) (float64, error) {
	if !positive(outcome) {
		return 0, invalidInput("outcome %v must be positive", outcome)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, invalidInput("rate %v is not a number", rate)
	}
	if !(years >= 0) || math.IsInf(years, 0) {
		return 0, invalidInput("years %v must not be negative", years)
	}
	if rate <= -1 {
		return 0, fmt.Errorf("%w: rate %v is at or below -100%%", ErrDivisionByZero, rate)
	}
	factor := math.Pow(1+rate, years)
	if factor == 0 {
		return 0, fmt.Errorf("%w: (1%+g)^%g underflows to zero", ErrDivisionByZero, rate, years)
	}
	return outcome / factor, nil
}
