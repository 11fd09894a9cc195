package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ReturnLens/internal/notifier"
	"ReturnLens/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Re-evaluate the scenario book on a schedule and answer Telegram commands",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func serve(cmd *cobra.Command, _ []string) error {
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	defer log.Sync()
	log.Info("ReturnLens starting...")

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	rec := openRecorder()
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, engine, cfg.Scenarios.BookFile, rec, tn, log)
	if err := sched.RegisterAll(cfg.Schedule.EvaluateCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, evaluating scenario book now")
		go sched.RunNow()
	}

	log.Infow("ReturnLens is running, press Ctrl+C to stop", "book", cfg.Scenarios.BookFile, "cron", cfg.Schedule.EvaluateCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	return nil
}
