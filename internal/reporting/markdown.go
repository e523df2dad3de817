package reporting

import (
	"fmt"
	"strings"
	"time"

	"wager-lab/internal/orchestrator"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	run := r.Run
	cfg := run.Config
	s := run.Summary

	// Header
	sb.WriteString("# Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Run
	sb.WriteString("## Run\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", run.RunID))
	sb.WriteString(fmt.Sprintf("| Config Hash | `%s` |\n", run.ConfigHash))
	sb.WriteString(fmt.Sprintf("| Seed | %d |\n", run.Seed))
	sb.WriteString(fmt.Sprintf("| Workers | %d |\n", run.Workers))
	sb.WriteString(fmt.Sprintf("| Started | %s |\n", run.StartedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", run.Duration().Round(time.Millisecond)))
	sb.WriteString("\n")

	// Configuration
	sb.WriteString("## Configuration\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Initial Stake | %s |\n", FormatMoney(cfg.InitialStake)))
	sb.WriteString(fmt.Sprintf("| Games per Simulation | %d |\n", cfg.TotalGames))
	sb.WriteString(fmt.Sprintf("| Win Chance | %s%% |\n", FormatPercent(cfg.WinChance)))
	sb.WriteString(fmt.Sprintf("| Conservative Bet Percent | %s%% |\n", FormatPercent(cfg.BetPercent)))
	sb.WriteString(fmt.Sprintf("| Payout Ratio | %s:1 |\n", FormatNumber(cfg.PayoutRatio)))
	sb.WriteString(fmt.Sprintf("| Strategy Switch Point | %d games |\n", cfg.StrategySwitchPoint))
	sb.WriteString(fmt.Sprintf("| Simulations | %s |\n", FormatCount(cfg.NumSimulations)))
	sb.WriteString("\n")

	// Results
	sb.WriteString("## Results\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Average Final Stake | %s |\n", FormatMoney(s.Mean)))
	sb.WriteString(fmt.Sprintf("| Median Final Stake | %s |\n", FormatMoney(s.Median)))
	sb.WriteString(fmt.Sprintf("| Bankruptcies | %s |\n", FormatCount(s.BankruptcyCount)))
	sb.WriteString(fmt.Sprintf("| Bankruptcy Rate | %.2f%% |\n", s.BankruptcyRate))
	sb.WriteString(fmt.Sprintf("| Survivors | %s |\n", FormatCount(s.Survivors)))
	sb.WriteString(fmt.Sprintf("| Std Dev | %s |\n", FormatMoney(s.Stddev)))
	sb.WriteString(fmt.Sprintf("| P10 | %s |\n", FormatMoney(s.P10)))
	sb.WriteString(fmt.Sprintf("| P90 | %s |\n", FormatMoney(s.P90)))
	sb.WriteString(fmt.Sprintf("| Min | %s |\n", FormatMoney(s.Min)))
	sb.WriteString(fmt.Sprintf("| Max | %s |\n", FormatMoney(s.Max)))
	sb.WriteString("\n")

	// Distribution
	d := r.Distribution
	sb.WriteString("## Distribution\n\n")
	if d.AllBust {
		sb.WriteString("Cannot plot histogram: all simulations went bust.\n\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Surviving trials: %s. Display range: %s%% of survivors, up to %s.\n\n",
		FormatCount(d.Survivors), FormatPercent(d.Percentile), FormatMoney(d.Cutoff)))
	if d.PlotFile != "" {
		sb.WriteString(fmt.Sprintf("![%s](%s)\n\n", PlotTitle(cfg.NumSimulations), d.PlotFile))
	}
	if len(d.Bins) > 0 {
		sb.WriteString("| Range | Count |\n")
		sb.WriteString("|-------|-------|\n")
		for _, b := range coarsen(d.Bins, 10) {
			sb.WriteString(fmt.Sprintf("| %s - %s | %d |\n", FormatMoney(b.Lo), FormatMoney(b.Hi), b.Count))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderSweepMarkdown renders a switch point sweep as a Markdown table.
func RenderSweepMarkdown(base string, rows []orchestrator.SweepRow) string {
	var sb strings.Builder

	sb.WriteString("# Switch Point Sweep\n\n")
	if base != "" {
		sb.WriteString(base + "\n\n")
	}

	if len(rows) == 0 {
		sb.WriteString("No sweep results available.\n")
		return sb.String()
	}

	sb.WriteString("| Switch Point | Mean | Median | Bankruptcy Rate | P10 | P90 | Run |\n")
	sb.WriteString("|--------------|------|--------|-----------------|-----|-----|-----|\n")
	for _, r := range rows {
		s := r.Summary
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %.2f%% | %s | %s | %s |\n",
			r.SwitchPoint, FormatMoney(s.Mean), FormatMoney(s.Median), s.BankruptcyRate,
			FormatMoney(s.P10), FormatMoney(s.P90), r.RunID))
	}
	sb.WriteString("\n")

	if best, ok := orchestrator.Best(rows); ok {
		sb.WriteString(fmt.Sprintf("Highest mean: switch point %d (%s, bankruptcy rate %.2f%%).\n",
			best.SwitchPoint, FormatMoney(best.Summary.Mean), best.Summary.BankruptcyRate))
	}

	return sb.String()
}

// coarsen merges adjacent bins into at most n groups.
func coarsen(bins []Bin, n int) []Bin {
	if len(bins) <= n {
		return bins
	}
	per := (len(bins) + n - 1) / n
	out := make([]Bin, 0, n)
	for i := 0; i < len(bins); i += per {
		end := i + per
		if end > len(bins) {
			end = len(bins)
		}
		merged := Bin{Lo: bins[i].Lo, Hi: bins[end-1].Hi}
		for _, b := range bins[i:end] {
			merged.Count += b.Count
		}
		out = append(out, merged)
	}
	return out
}
