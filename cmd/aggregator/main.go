package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"swipestats/internal/app"
	"swipestats/internal/logger"
)

func main() {
	log := logger.New("main")

	once := flag.Bool("once", false, "run one cohort generation batch and exit")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		_ = log.Err("failed to initialize application", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Er("failed to close application", err)
		}
	}()

	if *once {
		summary := application.Services.CohortAggregator.GenerateAll(context.Background())
		log.Info("One-shot cohort generation finished",
			"generated", summary.Generated,
			"skipped", summary.Skipped,
			"failed", summary.Failed)
		if summary.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		_ = log.Err("failed to start scheduler", err)
		os.Exit(1)
	}

	log.Info("Aggregator running, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("Shutting down gracefully")
}
