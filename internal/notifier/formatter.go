package notifier

import (
	"fmt"
	"strings"

	"ReturnLens/internal/calculator"
	"ReturnLens/internal/model"
	"ReturnLens/internal/recorder"
)

var modeLabels = map[model.CalculationMode]string{
	model.ModeComputeRate:          "annual return",
	model.ModeComputeOutcome:       "projected outcome",
	model.ModeComputeInitial:       "required investment",
	model.ModeComputeBlendedRate:   "blended return",
	model.ModeComputePortfolioRate: "portfolio return",
}

// ModeLabel returns a human name for a calculation mode.
func ModeLabel(m model.CalculationMode) string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape makes s safe to embed in a message sent with parse_mode HTML. The
// Bot API rejects a message with a bare <, > or &.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatResult formats a calculation and its result into a Telegram message.
func FormatResult(name string, req model.CalculationRequest, res model.CalculationResult) string {
	var b strings.Builder

	if name != "" {
		b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s\n\n", Escape(name), Escape(ModeLabel(req.Mode))))
	} else {
		b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n\n", Escape(ModeLabel(req.Mode))))
	}

	// Inputs
	switch req.Mode {
	case model.ModeComputeOutcome:
		b.WriteString(fmt.Sprintf("Initial: %.2f\nRate: %s\n", req.Initial, FormatRate(req.Rate)))
	case model.ModeComputeInitial:
		b.WriteString(fmt.Sprintf("Outcome: %.2f\nRate: %s\n", req.Outcome, FormatRate(req.Rate)))
	case model.ModeComputePortfolioRate:
		b.WriteString(fmt.Sprintf("Initial: %.2f\n", req.Initial))
	default:
		b.WriteString(fmt.Sprintf("Initial: %.2f\nOutcome: %.2f\n", req.Initial, req.Outcome))
	}
	b.WriteString(fmt.Sprintf("Years: %g\n", req.Years))
	if n := len(req.FollowOns); n > 0 {
		b.WriteString(fmt.Sprintf("Follow-ons: %d\n", n))
	}
	if req.Portfolio != nil {
		if st, err := calculator.Waterfall(*req.Portfolio); err == nil {
			b.WriteString(FormatWaterfall(st))
		}
	}
	b.WriteString("\n")

	// Result
	if res.Rate != nil {
		b.WriteString(fmt.Sprintf("💰 <b>Rate:</b> %s / yr", FormatRate(*res.Rate)))
		if res.Method != "" {
			b.WriteString(fmt.Sprintf(" (%s", res.Method))
			if res.Iterations > 0 {
				b.WriteString(fmt.Sprintf(", %d iterations", res.Iterations))
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	if res.Amount != nil {
		label := "Amount"
		switch req.Mode {
		case model.ModeComputeOutcome:
			label = "Outcome"
		case model.ModeComputeInitial:
			label = "Initial"
		case model.ModeComputePortfolioRate:
			label = "Net outcome"
		}
		b.WriteString(fmt.Sprintf("💰 <b>%s:</b> %.2f\n", label, *res.Amount))
	}

	if marks := yearMarks(res.GrowthSeries); marks != "" {
		b.WriteString("\n📊 <b>Trajectory:</b>\n")
		b.WriteString(marks)
	}
	return b.String()
}

// FormatWaterfall lists the fee waterfall stages.
func FormatWaterfall(st calculator.WaterfallStages) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  Successful units: %.2f\n", st.SuccessfulUnits))
	b.WriteString(fmt.Sprintf("  Gross proceeds: %.2f\n", st.GrossProceeds))
	b.WriteString(fmt.Sprintf("  After top-line fee: %.2f\n", st.AfterTopLine))
	b.WriteString(fmt.Sprintf("  Counsel share: %.2f\n", st.CounselShare))
	b.WriteString(fmt.Sprintf("  Investor net: %.2f\n", st.NetInvestorOutcome))
	return b.String()
}

// FormatError formats a failed calculation.
func FormatError(name string, err error) string {
	kind := calculator.Kind(err)
	if kind == "" {
		kind = "error"
	}
	if name == "" {
		return fmt.Sprintf("❌ %s: %s", kind, Escape(err.Error()))
	}
	return fmt.Sprintf("❌ <b>%s</b> %s: %s", Escape(name), kind, Escape(err.Error()))
}

// FormatHistory formats stored calculations, newest first.
func FormatHistory(entries []recorder.Summary) string {
	if len(entries) == 0 {
		return "No calculations recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>History</b>\n\n")
	for _, e := range entries {
		b.WriteString(e.At.Format("2006-01-02 15:04"))
		if e.Scenario != "" {
			b.WriteString(" " + Escape(e.Scenario))
		}
		b.WriteString(" · " + Escape(ModeLabel(e.Mode)) + ": ")
		switch {
		case e.ErrorKind != "" || e.Error != "":
			b.WriteString("❌ " + Escape(e.ErrorKind))
		case e.Rate != nil:
			b.WriteString(FormatRate(*e.Rate))
		case e.Amount != nil:
			b.WriteString(fmt.Sprintf("%.2f", *e.Amount))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatRate renders a fractional rate as a signed percentage.
func FormatRate(r float64) string {
	return fmt.Sprintf("%+.2f%%", 100*r)
}

// yearMarks picks the value at every twelfth month plus the final point.
func yearMarks(series []model.GrowthPoint) string {
	if len(series) < 2 {
		return ""
	}
	var b strings.Builder
	last := series[len(series)-1]
	for _, p := range series {
		if p.Month%12 == 0 && p.Month != last.Month {
			b.WriteString(fmt.Sprintf("  M%d: %.2f\n", p.Month, p.Value))
		}
	}
	b.WriteString(fmt.Sprintf("  M%d: %.2f\n", last.Month, last.Value))
	return b.String()
}
