package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aliuyar1234/finhub/internal/app"
	"github.com/aliuyar1234/finhub/internal/config"
	"github.com/aliuyar1234/finhub/internal/retention"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeTimeout    = 5 * time.Minute
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		os.Exit(runAdmin(os.Args[2:]))
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	cronScheduler, err := setupPurgeCron(cfg, application.Purge)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup invite purge cron: %v\n", err)
		os.Exit(1)
	}
	cronScheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- application.Start()
	}()

	exitCode := 0
	select {
	case err := <-errChan:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
			exitCode = 1
		}
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	// Let a running purge finish before the pool goes away.
	<-cronScheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
		exitCode = 1
	}
	cancel()

	os.Exit(exitCode)
}

func setupPurgeCron(cfg *config.Config, job *retention.Job) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	schedule := cfg.PurgeSchedule
	if cfg.IsDev() {
		schedule = "* * * * *"
	}

	_, err := c.AddFunc(schedule, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Invite purge job panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Invite purge job failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule invite purge job: %w", err)
	}

	log.Info().Str("schedule", schedule).Msg("Invite purge scheduled")
	return c, nil
}
