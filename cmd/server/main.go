// Package main serves the simulation API:
// - POST /api/v1/simulations runs a simulation and stores it
// - GET  /api/v1/simulations[/{id}[/results]] reads stored runs
// - /ws/simulations streams progress for one run
// - /metrics exposes Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wager-lab/internal/config"
	"wager-lab/internal/domain"
	"wager-lab/internal/logger"
	"wager-lab/internal/server"
	"wager-lab/internal/simulation"
	"wager-lab/internal/storage/backend"
)

func main() {
	// Parse flags
	flags := flag.NewFlagSet("server", flag.ExitOnError)
	maxSimulations := flags.Int("max-simulations", server.DefaultMaxSimulations, "Largest num-simulations accepted per request")
	maxDraws := flags.Int64("max-draws", server.DefaultMaxDraws, "Largest num-simulations * total-games accepted per request")

	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	log, err := logger.New(cfg.LoggerOptions("server"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			log.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("graceful shutdown timeout, forcing exit")
			os.Exit(1)
		}
	}()

	stores, err := backend.Open(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("open storage", zap.Error(err))
	}
	defer stores.Close()

	runner := simulation.NewRunner(simulation.RunnerOptions{
		RunStore:         stores.Runs,
		ResultStore:      stores.Results,
		Cache:            stores.Cache,
		Logger:           log,
		Workers:          cfg.Run.Workers,
		ProgressInterval: cfg.Run.ProgressInterval,
	})

	srv := server.New(server.Options{
		Runner:         runner,
		RunStore:       stores.Runs,
		ResultStore:    stores.Results,
		Logger:         log,
		Defaults:       cfg.Game,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxSimulations: *maxSimulations,
		MaxDraws:       *maxDraws,
	})

	log.Info("starting server",
		zap.String("addr", cfg.HTTP.Addr),
		zap.Strings("allowed_origins", cfg.HTTP.AllowedOrigins),
		zap.Int("max_simulations", *maxSimulations),
		zap.Int64("max_draws", *maxDraws),
	)

	if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped with error", zap.Error(err))
		stores.Close()
		os.Exit(1)
	}
	log.Info("server stopped")
}
