package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ReturnLens/internal/model"
	"ReturnLens/internal/notifier"
	"ReturnLens/internal/recorder"
	"ReturnLens/internal/scenario"
	"ReturnLens/internal/scheduler"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage and evaluate the scenario book",
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios in the book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		book, err := scenario.LoadBook(cfg.Scenarios.BookFile)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(book.Scenarios) == 0 {
			fmt.Fprintln(w, "No scenarios in book.")
			return nil
		}
		for _, sc := range book.Scenarios {
			fmt.Fprintf(w, "%-20s %-20s %s\n", sc.Name, notifier.ModeLabel(sc.Request.Mode), sc.Description)
		}
		return nil
	},
}

var scenarioRunCmd = &cobra.Command{
	Use:   "run [name...]",
	Short: "Evaluate named scenarios, or the whole book",
	RunE: func(cmd *cobra.Command, names []string) error {
		book, err := scenario.LoadBook(cfg.Scenarios.BookFile)
		if err != nil {
			return err
		}
		selected := book.Scenarios
		if len(names) > 0 {
			selected = selected[:0:0]
			for _, n := range names {
				sc, ok := book.Lookup(n)
				if !ok {
					return fmt.Errorf("unknown scenario %q", n)
				}
				selected = append(selected, sc)
			}
		}

		rec := openRecorder()
		defer rec.Close()
		sched := scheduler.NewScheduler(cmd.Context(), engine, cfg.Scenarios.BookFile, rec, nil, log)

		w := cmd.OutOrStdout()
		for _, sc := range selected {
			fmt.Fprintln(w, plain(sched.EvaluateScenario(sc, recorder.TriggerCLI)))
			fmt.Fprintln(w)
		}
		return nil
	},
}

var addArgs struct {
	description string
	mode        string
	initial     float64
	outcome     float64
	rate        string
	years       float64
	reference   string
}

var scenarioAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a simple scenario in the book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		req := model.CalculationRequest{
			Mode:    model.CalculationMode(addArgs.mode),
			Initial: addArgs.initial,
			Outcome: addArgs.outcome,
			Years:   addArgs.years,
		}
		if addArgs.rate != "" {
			r, err := scheduler.ParseRate(addArgs.rate)
			if err != nil {
				return err
			}
			req.Rate = r
		}
		if addArgs.reference != "" {
			d, err := time.Parse(time.DateOnly, addArgs.reference)
			if err != nil {
				return fmt.Errorf("invalid reference date: %w", err)
			}
			req.ReferenceDate = d
		}
		// Reject inputs the calculator would refuse before they reach the book.
		if _, err := engine.Calculate(req); err != nil {
			return err
		}

		book, err := scenario.LoadBook(cfg.Scenarios.BookFile)
		if err != nil {
			return err
		}
		book.Put(scenario.Scenario{Name: argv[0], Description: addArgs.description, Request: req})
		if err := scenario.SaveBook(cfg.Scenarios.BookFile, book); err != nil {
			return err
		}
		log.Infow("scenario saved", "name", argv[0], "book", cfg.Scenarios.BookFile)
		return nil
	},
}

var historyLimit int

var scenarioHistoryCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "Show recorded calculations, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		name := ""
		if len(argv) == 1 {
			name = argv[0]
		}
		rec := openRecorder()
		defer rec.Close()
		entries, err := rec.History(name, historyLimit)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if args.json {
			return encodeJSON(w, entries)
		}
		for _, e := range entries {
			fmt.Fprintln(w, historyLine(e))
		}
		if len(entries) == 0 {
			fmt.Fprintln(w, "No calculations recorded yet.")
		}
		return nil
	},
}

var scenarioGrowthCmd = &cobra.Command{
	Use:   "growth <id>",
	Short: "Print the monthly growth series of a recorded calculation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		rec := openRecorder()
		defer rec.Close()
		series, err := rec.GrowthSeries(argv[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if args.json {
			return encodeJSON(w, series)
		}
		for _, p := range series {
			fmt.Fprintf(w, "%4d  %14.2f\n", p.Month, p.Value)
		}
		return nil
	},
}

func init() {
	f := scenarioAddCmd.Flags()
	f.StringVar(&addArgs.description, "description", "", "free-text description")
	f.StringVar(&addArgs.mode, "mode", string(model.ModeComputeRate), "COMPUTE_RATE, COMPUTE_OUTCOME or COMPUTE_INITIAL")
	f.Float64Var(&addArgs.initial, "initial", 0, "initial investment")
	f.Float64Var(&addArgs.outcome, "outcome", 0, "expected outcome")
	f.StringVar(&addArgs.rate, "rate", "", "annual rate, as 0.15 or 15%")
	f.Float64Var(&addArgs.years, "years", 0, "holding period in years")
	f.StringVar(&addArgs.reference, "reference-date", "", "reference date for follow-on timing (YYYY-MM-DD)")

	scenarioHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")

	scenarioCmd.AddCommand(scenarioListCmd, scenarioRunCmd, scenarioAddCmd, scenarioHistoryCmd, scenarioGrowthCmd)
}

func historyLine(e recorder.Summary) string {
	result := ""
	switch {
	case e.ErrorKind != "" || e.Error != "":
		result = "error " + e.ErrorKind + ": " + e.Error
	case e.Rate != nil:
		result = notifier.FormatRate(*e.Rate)
	case e.Amount != nil:
		result = fmt.Sprintf("%.2f", *e.Amount)
	}
	return fmt.Sprintf("%s  %s  %-9s %-12s %-20s %s",
		e.ID, e.At.Format("2006-01-02 15:04"), e.Trigger, e.Scenario, notifier.ModeLabel(e.Mode), result)
}
