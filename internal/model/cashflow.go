package model

// CashFlowEvent is a single signed, time-stamped cash movement from the
// investor's point of view: negative amounts are capital paid in, positive
// amounts are capital returned.
type CashFlowEvent struct {
	TimeYears float64 `yaml:"time_years" json:"time_years"`
	Amount    float64 `yaml:"amount" json:"amount"`
}

// GrowthPoint is one month of a projected valuation trajectory.
type GrowthPoint struct {
	Month int     `yaml:"month" json:"month"`
	Value float64 `yaml:"value" json:"value"`
}
