package reporting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wager-lab/internal/domain"
	"wager-lab/internal/observability"
	"wager-lab/internal/orchestrator"
)

// Output file names.
const (
	ReportFile   = "REPORT.md"
	StakesFile   = "final_stakes.csv"
	SweepFile    = "SWEEP.md"
	SweepCSVFile = "sweep.csv"
)

// Generator builds reports and writes them to an output directory.
type Generator struct {
	outputDir  string
	percentile float64
	bins       int
	plotFile   string
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator writing into outputDir.
func NewGenerator(outputDir string) *Generator {
	return &Generator{
		outputDir:  outputDir,
		percentile: DefaultDisplayPercentile,
		bins:       DefaultBins,
		plotFile:   DefaultPlotFile,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithHistogram sets the display percentile and bin count.
func (g *Generator) WithHistogram(percentile float64, bins int) *Generator {
	g.percentile = percentile
	g.bins = bins
	return g
}

// WithPlotFile sets the histogram file name. Empty disables the plot.
func (g *Generator) WithPlotFile(name string) *Generator {
	g.plotFile = name
	return g
}

// Build assembles the report for a run and its terminal stakes.
func (g *Generator) Build(run *domain.SimulationRun, stakes []float64) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		Run:         run,
		Stakes:      stakes,
		Distribution: DistributionSection{
			Percentile: g.percentile,
		},
	}

	survivors := SurvivingStakes(stakes)
	r.Distribution.Survivors = len(survivors)

	cutoff, err := DisplayCutoff(stakes, g.percentile)
	if errors.Is(err, ErrAllBust) {
		r.Distribution.AllBust = true
		return r
	}
	r.Distribution.Cutoff = cutoff
	r.Distribution.Bins = BuildHistogram(survivors, g.bins, cutoff)
	return r
}

// Files lists the paths written by Write.
type Files struct {
	Report string
	Stakes string
	Plot   string // empty when no plot was written
}

// Write writes the report files:
// - REPORT.md
// - final_stakes.csv
// - the histogram image, unless every trial went bust
func (g *Generator) Write(r *Report) (*Files, error) {
	// Ensure output directory exists
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, err
	}
	files := &Files{}

	// 1. Histogram first so the report can reference it
	if g.plotFile != "" && !r.Distribution.AllBust && len(r.Distribution.Bins) > 0 {
		plotPath := filepath.Join(g.outputDir, g.plotFile)
		err := WriteHistogramPNG(plotPath, HistogramInput{
			Bins:       r.Distribution.Bins,
			Config:     r.Run.Config,
			Summary:    r.Run.Summary,
			Percentile: r.Distribution.Percentile,
		})
		if err != nil {
			return nil, err
		}
		r.Distribution.PlotFile = g.plotFile
		files.Plot = plotPath
	}

	// 2. REPORT.md
	files.Report = filepath.Join(g.outputDir, ReportFile)
	if err := os.WriteFile(files.Report, []byte(RenderMarkdown(r)), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", files.Report, err)
	}

	// 3. final_stakes.csv
	files.Stakes = filepath.Join(g.outputDir, StakesFile)
	if err := os.WriteFile(files.Stakes, []byte(RenderCSV(r.Stakes)), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", files.Stakes, err)
	}

	observability.RecordReportGenerated()
	return files, nil
}

// WriteSweep writes SWEEP.md and sweep.csv for a switch point sweep.
func (g *Generator) WriteSweep(base domain.GameConfig, seed int64, rows []orchestrator.SweepRow) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", err
	}

	header := fmt.Sprintf("Generated: %s\n\nBase: stake %s, %d games, win chance %s%%, bet %s%%, payout %s:1, %s simulations per switch point, seed %d.",
		g.now().Format(time.RFC3339),
		FormatMoney(base.InitialStake), base.TotalGames,
		FormatPercent(base.WinChance), FormatPercent(base.BetPercent),
		FormatNumber(base.PayoutRatio), FormatCount(base.NumSimulations), seed)

	mdPath := filepath.Join(g.outputDir, SweepFile)
	if err := os.WriteFile(mdPath, []byte(RenderSweepMarkdown(header, rows)), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", mdPath, err)
	}

	csvPath := filepath.Join(g.outputDir, SweepCSVFile)
	if err := os.WriteFile(csvPath, []byte(RenderSweepCSV(rows)), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", csvPath, err)
	}

	observability.RecordReportGenerated()
	return mdPath, nil
}
