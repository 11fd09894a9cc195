package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"ReturnLens/internal/model"
)

// WaterfallStages are the intermediate amounts of a fee waterfall, in the
// order they are applied.
type WaterfallStages struct {
	SuccessfulUnits    float64
	GrossProceeds      float64
	AfterTopLine       float64
	CounselShare       float64
	NetInvestorOutcome float64
}

// NetOutcome runs gross unit proceeds through success-rate attrition and the
// fee deductions and returns the investor's net outcome.
func NetOutcome(w model.FeeWaterfall) (float64, error) {
	st, err := Waterfall(w)
	if err != nil {
		return 0, err
	}
	return st.NetInvestorOutcome, nil
}

// Waterfall is NetOutcome with every stage exposed. Stages are computed in
// decimal arithmetic and converted back to float64 at the end.
func Waterfall(w model.FeeWaterfall) (WaterfallStages, error) {
	if !(w.GrossUnits >= 0) || math.IsInf(w.GrossUnits, 0) {
		return WaterfallStages{}, invalidInput("gross units %v must not be negative", w.GrossUnits)
	}
	if !(w.UnitOutcome >= 0) || math.IsInf(w.UnitOutcome, 0) {
		return WaterfallStages{}, invalidInput("unit outcome %v must not be negative", w.UnitOutcome)
	}
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"success rate", w.SuccessRate},
		{"top-line fee rate", w.TopLineFeeRate},
		{"management fee rate", w.ManagementFeeRate},
		{"investor share rate", w.InvestorShareRate},
	} {
		if !(r.value >= 0 && r.value <= 1) {
			return WaterfallStages{}, fmt.Errorf("%w: %s is %v", ErrInvalidFeeRate, r.name, r.value)
		}
	}

	successful := decimal.NewFromFloat(w.GrossUnits).Mul(decimal.NewFromFloat(w.SuccessRate))
	gross := successful.Mul(decimal.NewFromFloat(w.UnitOutcome))
	afterTopLine := gross.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(w.TopLineFeeRate)))
	counsel := afterTopLine.Mul(decimal.NewFromFloat(w.ManagementFeeRate))
	net := counsel.Mul(decimal.NewFromFloat(w.InvestorShareRate))

	return WaterfallStages{
		SuccessfulUnits:    successful.InexactFloat64(),
		GrossProceeds:      gross.InexactFloat64(),
		AfterTopLine:       afterTopLine.InexactFloat64(),
		CounselShare:       counsel.InexactFloat64(),
		NetInvestorOutcome: net.InexactFloat64(),
	}, nil
}
