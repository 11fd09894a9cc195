package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"ReturnLens/internal/calculator"
	"ReturnLens/internal/logger"
	"ReturnLens/internal/model"
	"ReturnLens/internal/notifier"
	"ReturnLens/internal/recorder"
	"ReturnLens/internal/scenario"
)

const helpText = "Available commands:\n" +
	"• /irr &lt;initial&gt; &lt;outcome&gt; &lt;years&gt;\n" +
	"• /outcome &lt;initial&gt; &lt;rate&gt; &lt;years&gt;\n" +
	"• /initial &lt;outcome&gt; &lt;rate&gt; &lt;years&gt;\n" +
	"• /portfolio &lt;initial&gt; &lt;years&gt; &lt;units&gt; &lt;unit outcome&gt; &lt;success&gt; &lt;top-line fee&gt; &lt;management fee&gt; &lt;investor share&gt;\n" +
	"• /scenarios\n" +
	"• /run &lt;name&gt;\n" +
	"• /evaluate\n" +
	"• /history [name]"

// Scheduler re-evaluates the scenario book on a cron schedule and answers
// chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   calculator.Engine
	BookPath string
	Recorder recorder.Recorder
	Notifier notifier.Sender // nil disables sending
	Log      *logger.Logger
	Ctx      context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng calculator.Engine, bookPath string, rec recorder.Recorder, sender notifier.Sender, log *logger.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		BookPath: bookPath,
		Recorder: rec,
		Notifier: sender,
		Log:      log,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// RegisterAll registers the book evaluation task.
func (s *Scheduler) RegisterAll(evaluateCron string) error {
	if _, err := s.Cron.AddFunc(evaluateCron, s.evaluateTask); err != nil {
		return fmt.Errorf("register evaluate task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow evaluates the book immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.evaluateTask()
}

func (s *Scheduler) evaluateTask() {
	s.Log.Info("running scheduled evaluation")
	report, err := s.EvaluateBook(recorder.TriggerScheduled)
	if err != nil {
		s.Log.Errorw("evaluate book", "error", err)
		s.trySend("❌ Scenario evaluation failed: " + notifier.Escape(err.Error()))
		return
	}
	s.trySend(report)
}

// EvaluateBook runs every scenario in the book and returns the combined
// report. Failing scenarios are reported inline; only a book that cannot be
// loaded is an error.
func (s *Scheduler) EvaluateBook(trigger string) (string, error) {
	book, err := scenario.LoadBook(s.BookPath)
	if err != nil {
		return "", err
	}
	if len(book.Scenarios) == 0 {
		return "No scenarios in book.", nil
	}
	parts := make([]string, 0, len(book.Scenarios))
	for _, sc := range book.Scenarios {
		parts = append(parts, s.EvaluateScenario(sc, trigger))
	}
	return strings.Join(parts, "\n\n"), nil
}

// EvaluateScenario runs one scenario, records it and returns its report.
func (s *Scheduler) EvaluateScenario(sc scenario.Scenario, trigger string) string {
	now := s.now()
	req := sc.RequestAt(now)
	res, err := s.Engine.Calculate(req)
	s.record(now, sc.Name, trigger, req, res, err)
	if err != nil {
		s.Log.Warnw("scenario failed", "scenario", sc.Name, "kind", calculator.Kind(err), "error", err)
		return notifier.FormatError(sc.Name, err)
	}
	return notifier.FormatResult(sc.Name, req, res)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats append the bot name: /irr@ReturnLensBot
	cmd, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch cmd {
	case "/irr":
		return s.adHoc(args, 3, func(v []float64) model.CalculationRequest {
			return model.CalculationRequest{Mode: model.ModeComputeRate, Initial: v[0], Outcome: v[1], Years: v[2]}
		}, 1)
	case "/outcome":
		return s.adHoc(args, 3, func(v []float64) model.CalculationRequest {
			return model.CalculationRequest{Mode: model.ModeComputeOutcome, Initial: v[0], Rate: v[1], Years: v[2]}
		}, 1)
	case "/initial":
		return s.adHoc(args, 3, func(v []float64) model.CalculationRequest {
			return model.CalculationRequest{Mode: model.ModeComputeInitial, Outcome: v[0], Rate: v[1], Years: v[2]}
		}, 1)
	case "/portfolio":
		return s.adHoc(args, 8, func(v []float64) model.CalculationRequest {
			return model.CalculationRequest{
				Mode:    model.ModeComputePortfolioRate,
				Initial: v[0],
				Years:   v[1],
				Portfolio: &model.FeeWaterfall{
					GrossUnits:        v[2],
					UnitOutcome:       v[3],
					SuccessRate:       v[4],
					TopLineFeeRate:    v[5],
					ManagementFeeRate: v[6],
					InvestorShareRate: v[7],
				},
			}
		}, 4, 5, 6, 7)
	case "/scenarios":
		return s.listScenarios()
	case "/run":
		if len(args) == 0 {
			return "Usage: /run &lt;name&gt;"
		}
		return s.runScenario(strings.Join(args, " "))
	case "/evaluate":
		report, err := s.EvaluateBook(recorder.TriggerCommand)
		if err != nil {
			return "❌ Scenario evaluation failed: " + notifier.Escape(err.Error())
		}
		return report
	case "/history":
		entries, err := s.Recorder.History(strings.Join(args, " "), 10)
		if err != nil {
			s.Log.Errorw("load history", "error", err)
			return "❌ Could not load history: " + notifier.Escape(err.Error())
		}
		return notifier.FormatHistory(entries)
	default:
		return helpText
	}
}

// adHoc parses n numeric arguments, builds a request and evaluates it.
// Arguments at rateArgs may be written as percentages.
func (s *Scheduler) adHoc(args []string, n int, build func([]float64) model.CalculationRequest, rateArgs ...int) string {
	if len(args) != n {
		return fmt.Sprintf("Expected %d arguments, got %d.\n\n%s", n, len(args), helpText)
	}
	isRate := make(map[int]bool, len(rateArgs))
	for _, i := range rateArgs {
		isRate[i] = true
	}
	values := make([]float64, n)
	for i, a := range args {
		var (
			v   float64
			err error
		)
		if isRate[i] {
			v, err = ParseRate(a)
		} else {
			v, err = ParseAmount(a)
		}
		if err != nil {
			return "❌ " + notifier.Escape(err.Error())
		}
		values[i] = v
	}
	return s.EvaluateScenario(scenario.Scenario{Request: build(values)}, recorder.TriggerCommand)
}

func (s *Scheduler) listScenarios() string {
	book, err := scenario.LoadBook(s.BookPath)
	if err != nil {
		return "❌ " + notifier.Escape(err.Error())
	}
	if len(book.Scenarios) == 0 {
		return "No scenarios in book."
	}
	var b strings.Builder
	b.WriteString("📚 <b>Scenarios</b>\n\n")
	for _, sc := range book.Scenarios {
		b.WriteString(fmt.Sprintf("• %s (%s)", notifier.Escape(sc.Name), notifier.Escape(notifier.ModeLabel(sc.Request.Mode))))
		if sc.Description != "" {
			b.WriteString(": " + notifier.Escape(sc.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Scheduler) runScenario(name string) string {
	book, err := scenario.LoadBook(s.BookPath)
	if err != nil {
		return "❌ " + notifier.Escape(err.Error())
	}
	sc, ok := book.Lookup(name)
	if !ok {
		return fmt.Sprintf("Unknown scenario %s. Try /scenarios.", notifier.Escape(strconv.Quote(name)))
	}
	return s.EvaluateScenario(sc, recorder.TriggerCommand)
}

func (s *Scheduler) record(at time.Time, name, trigger string, req model.CalculationRequest, res model.CalculationResult, calcErr error) {
	rec := &recorder.CalculationRecord{
		At:       at,
		Scenario: name,
		Trigger:  trigger,
		Request:  req,
		Err:      calcErr,
	}
	if calcErr == nil {
		rec.Result = &res
	}
	if err := s.Recorder.RecordCalculation(rec); err != nil {
		s.Log.Errorw("record calculation", "scenario", name, "error", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Errorw("send notification", "error", err)
	}
}

// ParseAmount parses a plain number, allowing thousands separators.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// ParseRate accepts a fraction (0.15) or a percentage (15%).
func ParseRate(s string) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid rate %q", s)
		}
		return v / 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	return v, nil
}
