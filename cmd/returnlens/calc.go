package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ReturnLens/internal/model"
	"ReturnLens/internal/notifier"
	"ReturnLens/internal/recorder"
	"ReturnLens/internal/scheduler"
)

var irrCmd = &cobra.Command{
	Use:   "irr <initial> <outcome> <years>",
	Short: "Annual return that grows initial into outcome",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, argv []string) error {
		v, err := parseArgs(argv)
		if err != nil {
			return err
		}
		return calculate(cmd.OutOrStdout(), model.CalculationRequest{
			Mode: model.ModeComputeRate, Initial: v[0], Outcome: v[1], Years: v[2],
		})
	},
}

var outcomeCmd = &cobra.Command{
	Use:   "outcome <initial> <rate> <years>",
	Short: "What initial grows to at rate",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, argv []string) error {
		v, err := parseArgs(argv, 1)
		if err != nil {
			return err
		}
		return calculate(cmd.OutOrStdout(), model.CalculationRequest{
			Mode: model.ModeComputeOutcome, Initial: v[0], Rate: v[1], Years: v[2],
		})
	},
}

var initialCmd = &cobra.Command{
	Use:   "initial <outcome> <rate> <years>",
	Short: "Investment needed to reach outcome at rate",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, argv []string) error {
		v, err := parseArgs(argv, 1)
		if err != nil {
			return err
		}
		return calculate(cmd.OutOrStdout(), model.CalculationRequest{
			Mode: model.ModeComputeInitial, Outcome: v[0], Rate: v[1], Years: v[2],
		})
	},
}

var portfolioArgs model.FeeWaterfall

var portfolioCmd = &cobra.Command{
	Use:   "portfolio <initial> <years>",
	Short: "Annual return of a portfolio after its fee waterfall",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, argv []string) error {
		v, err := parseArgs(argv)
		if err != nil {
			return err
		}
		w := portfolioArgs
		return calculate(cmd.OutOrStdout(), model.CalculationRequest{
			Mode: model.ModeComputePortfolioRate, Initial: v[0], Years: v[1], Portfolio: &w,
		})
	},
}

func init() {
	f := portfolioCmd.Flags()
	f.Float64Var(&portfolioArgs.GrossUnits, "units", 0, "number of units held")
	f.Float64Var(&portfolioArgs.UnitOutcome, "unit-outcome", 0, "proceeds of one successful unit")
	f.Float64Var(&portfolioArgs.SuccessRate, "success", 0, "fraction of units that succeed")
	f.Float64Var(&portfolioArgs.TopLineFeeRate, "top-line-fee", 0, "fee taken from gross proceeds")
	f.Float64Var(&portfolioArgs.ManagementFeeRate, "management-fee", 0, "management fee rate")
	f.Float64Var(&portfolioArgs.InvestorShareRate, "investor-share", 0, "investor share after counsel")
	// Only the top-line fee has a meaningful zero; a zero share wipes out
	// the net outcome.
	for _, name := range []string{"units", "unit-outcome", "success", "management-fee", "investor-share"} {
		_ = portfolioCmd.MarkFlagRequired(name)
	}
}

// parseArgs parses numeric arguments; positions in rateArgs accept "15%".
func parseArgs(argv []string, rateArgs ...int) ([]float64, error) {
	out := make([]float64, len(argv))
	for i, a := range argv {
		parse := scheduler.ParseAmount
		for _, r := range rateArgs {
			if r == i {
				parse = scheduler.ParseRate
			}
		}
		v, err := parse(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func calculate(w io.Writer, req model.CalculationRequest) error {
	rec := openRecorder()
	defer rec.Close()

	res, err := engine.Calculate(req)
	record := &recorder.CalculationRecord{At: time.Now(), Trigger: recorder.TriggerCLI, Request: req, Err: err}
	if err == nil {
		record.Result = &res
	}
	if rerr := rec.RecordCalculation(record); rerr != nil {
		log.Warnw("record calculation", "error", rerr)
	}
	if err != nil {
		return err
	}
	return printResult(w, "", req, res)
}

func printResult(w io.Writer, name string, req model.CalculationRequest, res model.CalculationResult) error {
	if args.json {
		return encodeJSON(w, res)
	}
	_, err := fmt.Fprintln(w, plain(notifier.FormatResult(name, req, res)))
	return err
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var htmlReplacer = strings.NewReplacer("<b>", "", "</b>", "", "&lt;", "<", "&gt;", ">", "&amp;", "&")

// plain strips the Telegram HTML markup from a report.
func plain(s string) string {
	return strings.TrimRight(htmlReplacer.Replace(s), "\n")
}
