package calculator

import (
	"fmt"
	"time"

	"ReturnLens/internal/model"
)

// Engine exposes the calculations with a fixed set of solver settings. It is
// a value with no mutable state; one Engine may serve any number of
// goroutines.
type Engine struct {
	Solver Solver
}

// NewEngine returns an Engine using sv.
func NewEngine(sv Solver) Engine {
	return Engine{Solver: sv}
}

var defaultEngine = NewEngine(DefaultSolver())

// CalculateIRR returns the annual rate that grows initial into outcome over
// years.
func CalculateIRR(initial, outcome, years float64) (float64, error) {
	return defaultEngine.CalculateIRR(initial, outcome, years)
}

// CalculateOutcome returns what initial grows to at rate over years.
func CalculateOutcome(initial, rate, years float64) (float64, error) {
	return ComputeOutcome(initial, rate, years)
}

// CalculateInitial returns what must be invested to reach outcome at rate
// over years.
func CalculateInitial(outcome, rate, years float64) (float64, error) {
	return ComputeInitial(outcome, rate, years)
}

// CalculateBlendedIRR returns the rate of an investment with follow-ons.
func CalculateBlendedIRR(initial, outcome, years float64, followOns []model.FollowOnInvestment, ref time.Time) (float64, error) {
	return defaultEngine.CalculateBlendedIRR(initial, outcome, years, followOns, ref)
}

// PortfolioNetOutcome is NetOutcome; it is usually fed to CalculateIRR.
func PortfolioNetOutcome(w model.FeeWaterfall) (float64, error) {
	return NetOutcome(w)
}

// Calculate runs req with the default solver settings.
func Calculate(req model.CalculationRequest) (model.CalculationResult, error) {
	return defaultEngine.Calculate(req)
}

func (e Engine) CalculateIRR(initial, outcome, years float64) (float64, error) {
	sol, err := e.solveSimple(initial, outcome, years)
	return sol.Rate, err
}

func (e Engine) CalculateBlendedIRR(initial, outcome, years float64, followOns []model.FollowOnInvestment, ref time.Time) (float64, error) {
	sol, err := e.Solver.SolveBlendedRate(initial, outcome, years, followOns, ref)
	return sol.Rate, err
}

func (e Engine) solveSimple(initial, outcome, years float64) (Solution, error) {
	if !positive(outcome) {
		return Solution{}, invalidInput("outcome %v must be positive", outcome)
	}
	s, err := BuildSchedule(initial, outcome, years, nil, time.Time{}, nil)
	if err != nil {
		return Solution{}, err
	}
	return e.Solver.Solve(s)
}

// Calculate dispatches req on its mode and returns the rate or amount it asks
// for together with the growth series to chart.
func (e Engine) Calculate(req model.CalculationRequest) (model.CalculationResult, error) {
	switch req.Mode {
	case model.ModeComputeRate:
		sol, err := e.solveSimple(req.Initial, req.Outcome, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute rate: %w", err)
		}
		series, err := twoFlowSeries(req.Initial, req.Outcome, sol.Rate, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute rate: %w", err)
		}
		return rateResult(sol, series), nil

	case model.ModeComputeOutcome:
		out, err := ComputeOutcome(req.Initial, req.Rate, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute outcome: %w", err)
		}
		series, err := twoFlowSeries(req.Initial, out, req.Rate, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute outcome: %w", err)
		}
		return model.CalculationResult{Amount: &out, GrowthSeries: series}, nil

	case model.ModeComputeInitial:
		in, err := ComputeInitial(req.Outcome, req.Rate, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute initial: %w", err)
		}
		series, err := twoFlowSeries(in, req.Outcome, req.Rate, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute initial: %w", err)
		}
		return model.CalculationResult{Amount: &in, GrowthSeries: series}, nil

	case model.ModeComputeBlendedRate:
		sol, err := e.Solver.SolveBlendedRate(req.Initial, req.Outcome, req.Years, req.FollowOns, req.ReferenceDate)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute blended rate: %w", err)
		}
		s, err := BuildSchedule(req.Initial, req.Outcome, req.Years, req.FollowOns, req.ReferenceDate, RateGrowth(sol.Rate))
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute blended rate: %w", err)
		}
		series, err := Project(s, sol.Rate, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute blended rate: %w", err)
		}
		return rateResult(sol, series), nil

	case model.ModeComputePortfolioRate:
		if req.Portfolio == nil {
			return model.CalculationResult{}, fmt.Errorf("compute portfolio rate: %w", invalidInput("missing portfolio inputs"))
		}
		net, err := NetOutcome(*req.Portfolio)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute portfolio rate: %w", err)
		}
		s, err := BuildSchedule(req.Initial, net, req.Years, nil, time.Time{}, nil)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute portfolio rate: %w", err)
		}
		sol, err := e.Solver.Solve(s)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute portfolio rate: %w", err)
		}
		series, err := Project(s, sol.Rate, req.Years)
		if err != nil {
			return model.CalculationResult{}, fmt.Errorf("compute portfolio rate: %w", err)
		}
		res := rateResult(sol, series)
		res.Amount = &net
		return res, nil

	default:
		return model.CalculationResult{}, invalidInput("unknown calculation mode %q", req.Mode)
	}
}

func rateResult(sol Solution, series []model.GrowthPoint) model.CalculationResult {
	rate := sol.Rate
	return model.CalculationResult{
		Rate:         &rate,
		GrowthSeries: series,
		Method:       string(sol.Method),
		Iterations:   sol.Iterations,
	}
}

// twoFlowSeries charts initial growing into outcome. A zero horizon is a
// single point.
func twoFlowSeries(initial, outcome, rate, years float64) ([]model.GrowthPoint, error) {
	if years == 0 {
		return []model.GrowthPoint{{Month: 0, Value: initial}}, nil
	}
	s := Schedule{
		{TimeYears: 0, Amount: -initial},
		{TimeYears: years, Amount: outcome},
	}
	return Project(s, rate, years)
}
