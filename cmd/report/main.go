// Package main regenerates report files for a stored simulation run
// and verifies the persisted summary against the stored terminal stakes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"wager-lab/internal/config"
	"wager-lab/internal/domain"
	"wager-lab/internal/logger"
	"wager-lab/internal/metrics"
	"wager-lab/internal/reporting"
	"wager-lab/internal/storage"
	"wager-lab/internal/storage/backend"
	chstore "wager-lab/internal/storage/clickhouse"
)

func main() {
	// Parse flags
	flags := flag.NewFlagSet("report", flag.ExitOnError)
	runID := flags.String("run-id", "", "Stored run to report on")
	list := flags.Int("list", 0, "List the N most recent stored runs and exit")
	verifyOnly := flags.Bool("verify", false, "Only verify the stored summary, write no files")

	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	// Validate flags
	if *runID == "" && *list <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --run-id or --list is required")
		os.Exit(1)
	}
	if cfg.Storage.PostgresDSN == "" && cfg.Storage.SQLitePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn or --sqlite-path is required to read stored runs")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LoggerOptions("report"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	stores, err := backend.Open(ctx, cfg.Storage, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}
	defer stores.Close()

	if *list > 0 {
		err = listRuns(ctx, stores.Runs, *list)
	} else {
		err = reportRun(ctx, cfg, stores, *runID, *verifyOnly)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stores.Close()
		os.Exit(1)
	}
}

// listRuns prints the most recent stored runs.
func listRuns(ctx context.Context, runs storage.RunStore, limit int) error {
	list, err := runs.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}
	for _, r := range list {
		fmt.Printf("%s  %s  seed=%d  switch=%d  sims=%d  mean=%s  median=%s  bankrupt=%.2f%%\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Seed,
			r.Config.StrategySwitchPoint,
			r.Config.NumSimulations,
			reporting.FormatMoney(r.Summary.Mean),
			reporting.FormatMoney(r.Summary.Median),
			r.Summary.BankruptcyRate,
		)
	}
	return nil
}

// reportRun verifies a stored run and rewrites its report files.
func reportRun(ctx context.Context, cfg *config.AppConfig, stores *backend.Stores, runID string, verifyOnly bool) error {
	run, err := stores.Runs.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}

	// 1. Recompute and compare the summary
	aggregator := metrics.NewAggregator(stores.Runs, stores.Results)
	diffs, err := aggregator.Verify(ctx, runID)
	if err != nil {
		return fmt.Errorf("verify run %s: %w", runID, err)
	}
	if len(diffs) > 0 {
		return fmt.Errorf("stored summary of %s disagrees with stored results: %s", runID, strings.Join(diffs, ", "))
	}

	// 2. Cross-check the ClickHouse run_distribution view
	if ch, ok := stores.Results.(*chstore.ResultStore); ok {
		d, err := ch.Distribution(ctx, runID)
		if err != nil {
			return fmt.Errorf("run distribution %s: %w", runID, err)
		}
		if int(d.Simulations) != run.Summary.Simulations || int(d.BankruptcyCount) != run.Summary.BankruptcyCount {
			return fmt.Errorf("clickhouse view has %d simulations and %d bankruptcies, stored summary %d and %d",
				d.Simulations, d.BankruptcyCount, run.Summary.Simulations, run.Summary.BankruptcyCount)
		}
	}
	fmt.Printf("Run %s verified: %d simulations, summary matches stored results.\n", runID, run.Summary.Simulations)

	if verifyOnly {
		return nil
	}

	// 3. Regenerate the report files
	_, stakes, err := aggregator.ComputeSummary(ctx, runID)
	if err != nil {
		return err
	}
	generator := reporting.NewGenerator(cfg.Run.OutputDir).
		WithHistogram(cfg.Run.Percentile, cfg.Run.Bins).
		WithPlotFile(cfg.Run.PlotFile)
	files, err := generator.Write(generator.Build(run, stakes))
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Println("Report generated successfully:")
	fmt.Printf("  - %s\n", files.Report)
	fmt.Printf("  - %s\n", files.Stakes)
	if files.Plot != "" {
		fmt.Printf("  - %s\n", files.Plot)
	}
	return nil
}
