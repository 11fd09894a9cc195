package calculator

import (
	"fmt"
	"math"
	"time"

	"ReturnLens/internal/model"
)

// Project renders the month-by-month value of the position described by s,
// growing at rate between events. Months run from 0 to ceil(years×12). The
// first point is the initial investment, every follow-on steps the series by
// its position change in the month it falls in, and the last point is pinned
// to the schedule's terminal outcome.
func Project(s Schedule, rate, years float64) ([]model.GrowthPoint, error) {
	if len(s) < 2 {
		return nil, invalidInput("schedule needs at least two cash flows, got %d", len(s))
	}
	if s[0].TimeYears != 0 || !(s[0].Amount < 0) {
		return nil, invalidInput("schedule must open with the initial investment at t=0")
	}
	if !(rate > -1) || math.IsInf(rate, 0) {
		return nil, invalidInput("rate %v must be greater than -100%%", rate)
	}
	if !positive(years) {
		return nil, invalidInput("years %v must be positive", years)
	}

	n := lastMonth(years)
	steps := make(map[int]float64)
	for _, e := range s[1 : len(s)-1] {
		steps[eventMonth(e.TimeYears, n)] -= e.Amount
	}

	monthly := math.Pow(1+rate, 1.0/12)
	points := make([]model.GrowthPoint, n+1)
	v := -s[0].Amount
	points[0] = model.GrowthPoint{Month: 0, Value: v}
	for m := 1; m <= n; m++ {
		v = v*monthly + steps[m]
		points[m] = model.GrowthPoint{Month: m, Value: v}
	}
	points[n].Value = s.Terminal().Amount

	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("%w: projected value at month %d is not finite", ErrInvalidInput, p.Month)
		}
	}
	return points, nil
}

// lastMonth is ceil(years×12), tolerant of float noise on whole months.
func lastMonth(years float64) int {
	n := int(math.Ceil(years*12 - 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}

// eventMonth places an event at the nearest month, never at month 0 (which
// is reserved for the initial investment) and never past the last month.
func eventMonth(t float64, last int) int {
	m := int(math.Round(t * 12))
	if m < 1 {
		m = 1
	}
	if m > last {
		m = last
	}
	return m
}

// GrowthPoints projects a single investment compounding at rate for years.
// A zero horizon yields the single point of the initial investment.
func GrowthPoints(initial, rate, years float64) ([]model.GrowthPoint, error) {
	outcome, err := ComputeOutcome(initial, rate, years)
	if err != nil {
		return nil, err
	}
	return twoFlowSeries(initial, outcome, rate, years)
}

// GrowthPointsWithFollowOn projects an investment with follow-ons, all
// compounding at rate. Tag-along follow-ons are priced on the same curve.
// The terminal value is the exact future value of every position change.
func GrowthPointsWithFollowOn(initial, rate, years float64, followOns []model.FollowOnInvestment, ref time.Time) ([]model.GrowthPoint, error) {
	if !(rate > -1) || math.IsInf(rate, 0) {
		return nil, invalidInput("rate %v must be greater than -100%%", rate)
	}
	s, err := BuildSchedule(initial, 0, years, followOns, ref, RateGrowth(rate))
	if err != nil {
		return nil, err
	}
	s[len(s)-1].Amount = FutureValue(s[:len(s)-1], rate, years)
	return Project(s, rate, years)
}

// FutureValue is the value at horizon of every position change in s
// compounded at rate: Σ -amount × (1+rate)^(horizon-t).
func FutureValue(s Schedule, rate, horizon float64) float64 {
	var fv float64
	for _, e := range s {
		fv -= e.Amount * math.Pow(1+rate, horizon-e.TimeYears)
	}
	return fv
}
