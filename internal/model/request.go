package model

import "time"

// CalculationMode selects what a CalculationRequest solves for.
type CalculationMode string

const (
	ModeComputeRate          CalculationMode = "COMPUTE_RATE"
	ModeComputeOutcome       CalculationMode = "COMPUTE_OUTCOME"
	ModeComputeInitial       CalculationMode = "COMPUTE_INITIAL"
	ModeComputeBlendedRate   CalculationMode = "COMPUTE_BLENDED_RATE"
	ModeComputePortfolioRate CalculationMode = "COMPUTE_PORTFOLIO_RATE"
)

// FeeWaterfall holds the inputs of a portfolio-style unit investment.
// All rates are fractions in [0,1].
type FeeWaterfall struct {
	GrossUnits        float64 `yaml:"gross_units" json:"gross_units"`
	UnitOutcome       float64 `yaml:"unit_outcome" json:"unit_outcome"`
	SuccessRate       float64 `yaml:"success_rate" json:"success_rate"`
	TopLineFeeRate    float64 `yaml:"top_line_fee_rate" json:"top_line_fee_rate"`
	ManagementFeeRate float64 `yaml:"management_fee_rate" json:"management_fee_rate"`
	InvestorShareRate float64 `yaml:"investor_share_rate" json:"investor_share_rate"`
}

// CalculationRequest is one calculation. Only the fields the Mode needs are
// read:
//
//	COMPUTE_RATE            Initial, Outcome, Years
//	COMPUTE_OUTCOME         Initial, Rate, Years
//	COMPUTE_INITIAL         Outcome, Rate, Years
//	COMPUTE_BLENDED_RATE    Initial, Outcome, Years, FollowOns, ReferenceDate
//	COMPUTE_PORTFOLIO_RATE  Initial, Years, Portfolio
type CalculationRequest struct {
	Mode          CalculationMode      `yaml:"mode" json:"mode"`
	Initial       float64              `yaml:"initial,omitempty" json:"initial,omitempty"`
	Outcome       float64              `yaml:"outcome,omitempty" json:"outcome,omitempty"`
	Rate          float64              `yaml:"rate,omitempty" json:"rate,omitempty"`
	Years         float64              `yaml:"years,omitempty" json:"years,omitempty"`
	FollowOns     []FollowOnInvestment `yaml:"follow_ons,omitempty" json:"follow_ons,omitempty"`
	ReferenceDate time.Time            `yaml:"reference_date,omitempty" json:"reference_date,omitempty"`
	Portfolio     *FeeWaterfall        `yaml:"portfolio,omitempty" json:"portfolio,omitempty"`
}

// CalculationResult is the output of exactly one CalculationRequest.
// Method and Iterations describe how a rate was found, when one was solved.
type CalculationResult struct {
	Rate         *float64      `json:"rate,omitempty"`
	Amount       *float64      `json:"amount,omitempty"`
	GrowthSeries []GrowthPoint `json:"growth_series"`
	Method       string        `json:"method,omitempty"`
	Iterations   int           `json:"iterations,omitempty"`
}
