// Package main runs the two-phase staking simulation from the command line:
// one run with console summary, histogram and report files, or a switch point sweep.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wager-lab/internal/config"
	"wager-lab/internal/domain"
	"wager-lab/internal/logger"
	"wager-lab/internal/orchestrator"
	"wager-lab/internal/reporting"
	"wager-lab/internal/simulation"
	"wager-lab/internal/storage/backend"
)

func main() {
	// Parse flags
	flags := flag.NewFlagSet("simulate", flag.ExitOnError)
	sweep := flags.Bool("sweep", false, "Run every switch point from 0 to total-games in sweep-step increments")
	noFiles := flags.Bool("no-files", false, "Print the summary only, skip report and histogram files")

	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	log, err := logger.New(cfg.LoggerOptions("simulate"))
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
		select {
		case sig := <-sigCh:
			log.Warn("received signal, cancelling run", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	stores, err := backend.Open(ctx, cfg.Storage, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
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

	generator := reporting.NewGenerator(cfg.Run.OutputDir).
		WithHistogram(cfg.Run.Percentile, cfg.Run.Bins).
		WithPlotFile(cfg.Run.PlotFile)

	if *sweep {
		err = runSweep(ctx, cfg, runner, generator, log, *noFiles)
	} else {
		err = runOnce(ctx, cfg, runner, generator, *noFiles)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stores.Close()
		if errors.Is(err, domain.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// runOnce executes a single run, prints the console summary and writes the report files.
func runOnce(ctx context.Context, cfg *config.AppConfig, runner *simulation.Runner, generator *reporting.Generator, noFiles bool) error {
	run, rs, err := runner.Run(ctx, simulation.RunRequest{
		Config:  cfg.Game,
		Seed:    cfg.Run.Seed,
		Workers: cfg.Run.Workers,
	})
	if err != nil {
		return err
	}

	fmt.Print(reporting.RenderConsole(run.Config, run.Summary))

	if noFiles {
		return nil
	}

	report := generator.Build(run, rs.Stakes())
	files, err := generator.Write(report)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if files.Plot == "" {
		fmt.Println("Cannot plot histogram: all simulations went bust.")
	}
	fmt.Println()
	fmt.Println("Report generated successfully:")
	fmt.Printf("  - %s\n", files.Report)
	fmt.Printf("  - %s\n", files.Stakes)
	if files.Plot != "" {
		fmt.Printf("  - %s\n", files.Plot)
	}
	return nil
}

// runSweep evaluates every switch point on a shared seed and writes the comparison table.
func runSweep(ctx context.Context, cfg *config.AppConfig, runner *simulation.Runner, generator *reporting.Generator, log *zap.Logger, noFiles bool) error {
	points, err := orchestrator.SwitchPoints(cfg.Game.TotalGames, cfg.Run.SweepStep)
	if err != nil {
		return err
	}

	result, err := orchestrator.New(orchestrator.Options{
		Runner:       runner,
		Base:         cfg.Game,
		SwitchPoints: points,
		Seed:         cfg.Run.Seed,
		Workers:      cfg.Run.Workers,
		Logger:       log,
	}).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Switch point sweep (seed %d)\n", result.Seed)
	fmt.Printf("%12s %14s %14s %10s\n", "switch point", "mean", "median", "bankrupt")
	for _, row := range result.Rows {
		fmt.Printf("%12d %14s %14s %9.2f%%\n",
			row.SwitchPoint,
			reporting.FormatMoney(row.Summary.Mean),
			reporting.FormatMoney(row.Summary.Median),
			row.Summary.BankruptcyRate,
		)
	}
	if best, ok := orchestrator.Best(result.Rows); ok {
		fmt.Printf("\nHighest mean: switch point %d (%s)\n", best.SwitchPoint, reporting.FormatMoney(best.Summary.Mean))
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", e)
	}

	if noFiles {
		return nil
	}

	path, err := generator.WriteSweep(cfg.Game, result.Seed, result.Rows)
	if err != nil {
		return fmt.Errorf("write sweep: %w", err)
	}
	fmt.Println()
	fmt.Println("Sweep report generated successfully:")
	fmt.Printf("  - %s\n", path)
	return nil
}
