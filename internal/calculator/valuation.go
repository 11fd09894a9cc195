package calculator

import (
	"fmt"
	"math"

	"ReturnLens/internal/model"
)

// GrowthFunc returns the multiple the initial position has reached after t
// years along some growth curve. GrowthFunc(0) is 1.
type GrowthFunc func(t float64) float64

// RateGrowth is the growth curve of a position compounding at rate per year.
func RateGrowth(rate float64) GrowthFunc {
	return func(t float64) float64 { return math.Pow(1+rate, t) }
}

// ResolveAmount returns the change a follow-on makes to the position at time
// t: positive for BUY and BUY_SELL, negative for SELL.
//
// Custom valuations use the stored amount as the cash value. Tag-along
// valuations scale the amount by growth(t), the multiple the existing position
// has reached by then, so they depend on the rate being solved for.
func ResolveAmount(f model.FollowOnInvestment, t float64, growth GrowthFunc) (float64, error) {
	if !(f.Amount > 0) || math.IsInf(f.Amount, 0) {
		return 0, invalidInput("follow-on amount %v must be positive", f.Amount)
	}

	var cash float64
	switch f.Valuation.Mode {
	case model.ValuationCustom:
		switch f.Valuation.Kind {
		case model.CustomSpecified, model.CustomComputed:
			// units × value was already folded into Amount upstream.
			cash = f.Amount
		default:
			return 0, invalidInput("unknown custom valuation kind %q", f.Valuation.Kind)
		}
	case model.ValuationTagAlong:
		if growth == nil {
			return 0, invalidInput("tag-along valuation needs a growth curve")
		}
		g := growth(t)
		if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
			return 0, fmt.Errorf("%w: growth multiple %v at t=%.4f", ErrInvalidInput, g, t)
		}
		cash = f.Amount * g
	default:
		return 0, invalidInput("unknown valuation mode %q", f.Valuation.Mode)
	}

	switch f.Type {
	case model.InvestmentBuy, model.InvestmentBuySell:
		return cash, nil
	case model.InvestmentSell:
		return -cash, nil
	default:
		return 0, invalidInput("unknown investment type %q", f.Type)
	}
}

// hasTagAlong reports whether any follow-on depends on the growth curve.
func hasTagAlong(followOns []model.FollowOnInvestment) bool {
	for _, f := range followOns {
		if f.Valuation.Mode == model.ValuationTagAlong {
			return true
		}
	}
	return false
}
