package notifier

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ReturnLens/internal/calculator"
	"ReturnLens/internal/model"
	"ReturnLens/internal/recorder"
)

func f(v float64) *float64 { return &v }

func TestFormatResultRate(t *testing.T) {
	req := model.CalculationRequest{Mode: model.ModeComputeRate, Initial: 100000, Outcome: 250000, Years: 5}
	res, err := calculator.Calculate(req)
	assert.NoError(t, err)

	msg := FormatResult("seed round", req, res)
	assert.Contains(t, msg, "<b>seed round</b> | annual return")
	assert.Contains(t, msg, "Initial: 100000.00")
	assert.Contains(t, msg, "Outcome: 250000.00")
	assert.Contains(t, msg, "+20.11% / yr")
	assert.Contains(t, msg, "closed_form")
	assert.Contains(t, msg, "M12:")
	assert.Contains(t, msg, "M60: 250000.00")
}

func TestFormatResultOutcome(t *testing.T) {
	req := model.CalculationRequest{Mode: model.ModeComputeOutcome, Initial: 50000, Rate: 0.15, Years: 3}
	res, err := calculator.Calculate(req)
	assert.NoError(t, err)

	msg := FormatResult("", req, res)
	assert.True(t, strings.HasPrefix(msg, "📈 <b>projected outcome</b>"))
	assert.Contains(t, msg, "Rate: +15.00%")
	assert.Contains(t, msg, "<b>Outcome:</b> 76043.75")
}

func TestFormatResultPortfolio(t *testing.T) {
	req := model.CalculationRequest{
		Mode:    model.ModeComputePortfolioRate,
		Initial: 1000,
		Years:   4,
		Portfolio: &model.FeeWaterfall{
			GrossUnits:        10,
			UnitOutcome:       1000,
			SuccessRate:       0.5,
			TopLineFeeRate:    0.2,
			ManagementFeeRate: 0.8,
			InvestorShareRate: 0.9,
		},
	}
	res, err := calculator.Calculate(req)
	assert.NoError(t, err)

	msg := FormatResult("book", req, res)
	assert.Contains(t, msg, "Gross proceeds: 5000.00")
	assert.Contains(t, msg, "Investor net: 2880.00")
	assert.Contains(t, msg, "<b>Net outcome:</b> 2880.00")
}

func TestFormatError(t *testing.T) {
	err := fmt.Errorf("compute rate: %w", calculator.ErrNoSignChange)
	assert.Equal(t, "❌ no_sign_change: compute rate: "+calculator.ErrNoSignChange.Error(), FormatError("", err))
	assert.Contains(t, FormatError("exit", err), "<b>exit</b> no_sign_change")
	assert.Contains(t, FormatError("", fmt.Errorf("boom")), "❌ error: boom")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; \"c\"", Escape(`a <b> & "c"`))
}

func TestFormatEscapesUserText(t *testing.T) {
	req := model.CalculationRequest{Mode: model.ModeComputeOutcome, Initial: 100, Rate: 0.1, Years: 1}
	res, err := calculator.Calculate(req)
	assert.NoError(t, err)
	assert.Contains(t, FormatResult("R&D <a>", req, res), "<b>R&amp;D &lt;a&gt;</b>")

	msg := FormatError("<x>", fmt.Errorf("bad input <1>"))
	assert.Equal(t, "❌ <b>&lt;x&gt;</b> error: bad input &lt;1&gt;", msg)

	hist := FormatHistory([]recorder.Summary{{Scenario: "a<b", Mode: model.CalculationMode("<odd>"), Amount: f(1)}})
	assert.Contains(t, hist, "a&lt;b · &lt;odd&gt;: 1.00")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No calculations recorded yet.", FormatHistory(nil))

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	msg := FormatHistory([]recorder.Summary{
		{At: at, Scenario: "seed", Mode: model.ModeComputeRate, Rate: f(0.2011)},
		{At: at, Mode: model.ModeComputeOutcome, Amount: f(76043.75)},
		{At: at, Scenario: "bad", Mode: model.ModeComputeRate, ErrorKind: "no_sign_change", Error: "x"},
	})
	assert.Contains(t, msg, "2026-03-01 09:30 seed · annual return: +20.11%")
	assert.Contains(t, msg, "projected outcome: 76043.75")
	assert.Contains(t, msg, "bad · annual return: ❌ no_sign_change")
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "+15.00%", FormatRate(0.15))
	assert.Equal(t, "-3.50%", FormatRate(-0.035))
	assert.Equal(t, "+0.00%", FormatRate(0))
}

func TestYearMarks(t *testing.T) {
	assert.Equal(t, "", yearMarks([]model.GrowthPoint{{Month: 0, Value: 1}}))

	series := []model.GrowthPoint{{Month: 0, Value: 100}, {Month: 6, Value: 110}, {Month: 12, Value: 120}, {Month: 18, Value: 130}}
	assert.Equal(t, "  M0: 100.00\n  M12: 120.00\n  M18: 130.00\n", yearMarks(series))
}

func TestModeLabelUnknown(t *testing.T) {
	assert.Equal(t, "CUSTOM", ModeLabel(model.CalculationMode("CUSTOM")))
}
