package model

import "time"

// InvestmentType says in which direction a follow-on moves capital.
type InvestmentType string

const (
	InvestmentBuy     InvestmentType = "BUY"
	InvestmentSell    InvestmentType = "SELL"
	InvestmentBuySell InvestmentType = "BUY_SELL"
)

// TimeUnit is the unit of a relative timing offset.
type TimeUnit string

const (
	UnitDays   TimeUnit = "DAYS"
	UnitMonths TimeUnit = "MONTHS"
	UnitYears  TimeUnit = "YEARS"
)

// TimingKind selects between an absolute date and a relative offset.
type TimingKind string

const (
	TimingAbsolute TimingKind = "ABSOLUTE"
	TimingRelative TimingKind = "RELATIVE"
)

// Timing locates a follow-on in time. Date is used for TimingAbsolute,
// Quantity and Unit for TimingRelative.
type Timing struct {
	Kind     TimingKind `yaml:"kind" json:"kind"`
	Date     time.Time  `yaml:"date,omitempty" json:"date,omitempty"`
	Quantity float64    `yaml:"quantity,omitempty" json:"quantity,omitempty"`
	Unit     TimeUnit   `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// AbsoluteTiming returns a Timing pinned to a calendar date.
func AbsoluteTiming(date time.Time) Timing {
	return Timing{Kind: TimingAbsolute, Date: date}
}

// RelativeTiming returns a Timing offset from the initial investment date.
func RelativeTiming(quantity float64, unit TimeUnit) Timing {
	return Timing{Kind: TimingRelative, Quantity: quantity, Unit: unit}
}

// ValuationMode selects how a follow-on's cash amount is determined.
type ValuationMode string

const (
	ValuationTagAlong ValuationMode = "TAG_ALONG"
	ValuationCustom   ValuationMode = "CUSTOM"
)

// CustomKind records where a custom valuation came from.
type CustomKind string

const (
	CustomComputed  CustomKind = "COMPUTED"
	CustomSpecified CustomKind = "SPECIFIED"
)

// Valuation describes how a follow-on is priced. Value and Kind are only
// meaningful for ValuationCustom.
type Valuation struct {
	Mode  ValuationMode `yaml:"mode" json:"mode"`
	Value float64       `yaml:"value,omitempty" json:"value,omitempty"`
	Kind  CustomKind    `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// TagAlong returns a valuation that follows the position's own growth curve.
func TagAlong() Valuation { return Valuation{Mode: ValuationTagAlong} }

// CustomValuation returns a fixed valuation of the given kind.
func CustomValuation(value float64, kind CustomKind) Valuation {
	return Valuation{Mode: ValuationCustom, Value: value, Kind: kind}
}

// FollowOnInvestment is an additional capital movement after the initial
// investment. Amount is a magnitude; the direction comes from Type.
type FollowOnInvestment struct {
	Amount    float64        `yaml:"amount" json:"amount"`
	Type      InvestmentType `yaml:"type" json:"type"`
	Timing    Timing         `yaml:"timing" json:"timing"`
	Valuation Valuation      `yaml:"valuation" json:"valuation"`
}
