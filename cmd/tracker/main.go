package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"tracker/internal/api"
	"tracker/internal/cli"
	"tracker/internal/clock"
	"tracker/internal/config"
	"tracker/internal/logging"
	"tracker/internal/notify"
	"tracker/internal/services"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	root := cli.NewRootCommand(config.NewLoader(), buildRuntime)
	if err := root.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildRuntime opens the configured store and assembles the business API.
func buildRuntime(ctx context.Context, cfg *config.Config) (*cli.Runtime, error) {
	logger := logging.New(logging.Options{Verbose: cfg.Application.Verbose})
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.Timer.Location, err)
	}
	dayEnd, err := cfg.DayEnd()
	if err != nil {
		return nil, fmt.Errorf("parse day end %q: %w", cfg.Timer.DayEnd, err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NotificationsEnabled() {
		discord, err := notify.NewDiscord(cfg.Notify.DiscordWebhookID, cfg.Notify.DiscordWebhookToken, logger)
		if err != nil {
			return nil, fmt.Errorf("discord notifier: %w", err)
		}
		notifier = discord
	}

	repo, err := config.CreateRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	logger.Debug("store opened", slog.String("driver", cfg.Database.Driver))

	sysClock := clock.NewSystem(loc)
	businessAPI := api.NewBusinessAPI(repo, services.Options{
		Clock:    sysClock,
		Limits:   cfg.Limits(),
		DayEnd:   dayEnd,
		Logger:   logger,
		Notifier: notifier,
	})

	return &cli.Runtime{
		API:    businessAPI,
		Clock:  sysClock,
		Logger: logger,
		Close:  repo.Close,
	}, nil
}
