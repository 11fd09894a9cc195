package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"ReturnLens/internal/model"
)

// Schedule is an ordered list of investor cash flows. Schedules produced by
// BuildSchedule start with the initial investment at t=0 and end with the
// terminal outcome.
type Schedule []model.CashFlowEvent

// BuildSchedule records the initial investment as a negative flow at t=0,
// each follow-on at its TimeBasis offset (BUY as capital out, SELL as capital
// returned) and the outcome as a positive flow at t=years. Events are sorted
// by time; equal times keep insertion order.
//
// growth prices tag-along follow-ons and may be nil when there are none.
func BuildSchedule(initial, outcome, years float64, followOns []model.FollowOnInvestment, ref time.Time, growth GrowthFunc) (Schedule, error) {
	if !positive(initial) {
		return nil, invalidInput("initial investment %v must be positive", initial)
	}
	if !positive(years) {
		return nil, invalidInput("years %v must be positive", years)
	}
	if !(outcome >= 0) || math.IsInf(outcome, 0) {
		return nil, invalidInput("outcome %v must not be negative", outcome)
	}

	s := make(Schedule, 0, len(followOns)+2)
	s = append(s, model.CashFlowEvent{TimeYears: 0, Amount: -initial})
	for i, f := range followOns {
		t, err := ToYears(f.Timing, ref)
		if err != nil {
			return nil, fmt.Errorf("follow-on %d: %w", i, err)
		}
		if t > years {
			return nil, fmt.Errorf("follow-on %d: %w: t=%.4f is after the outcome at %.4f years",
				i, ErrInvalidTiming, t, years)
		}
		delta, err := ResolveAmount(f, t, growth)
		if err != nil {
			return nil, fmt.Errorf("follow-on %d: %w", i, err)
		}
		s = append(s, model.CashFlowEvent{TimeYears: t, Amount: -delta})
	}
	s = append(s, model.CashFlowEvent{TimeYears: years, Amount: outcome})

	sort.SliceStable(s, func(i, j int) bool { return s[i].TimeYears < s[j].TimeYears })
	return s, nil
}

// NPV returns Σ amount × (1+r)^(-t).
func (s Schedule) NPV(r float64) float64 {
	var v float64
	for _, e := range s {
		v += e.Amount * math.Pow(1+r, -e.TimeYears)
	}
	return v
}

// npvWithDerivative returns NPV(r) and dNPV/dr.
func (s Schedule) npvWithDerivative(r float64) (v, d float64) {
	for _, e := range s {
		v += e.Amount * math.Pow(1+r, -e.TimeYears)
		d -= e.TimeYears * e.Amount * math.Pow(1+r, -e.TimeYears-1)
	}
	return v, d
}

// HasSignChange reports whether the schedule has both an inflow and an
// outflow, the precondition for a finite rate to exist.
func (s Schedule) HasSignChange() bool {
	var in, out bool
	for _, e := range s {
		switch {
		case e.Amount > 0:
			in = true
		case e.Amount < 0:
			out = true
		}
	}
	return in && out
}

// Terminal returns the last event of the schedule.
func (s Schedule) Terminal() model.CashFlowEvent {
	if len(s) == 0 {
		return model.CashFlowEvent{}
	}
	return s[len(s)-1]
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
