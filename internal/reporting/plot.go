package reporting

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"wager-lab/internal/domain"
)

// DefaultPlotFile is the histogram file name.
const DefaultPlotFile = "betting_game_results.png"

// HistogramInput is everything drawn on the histogram figure.
type HistogramInput struct {
	Bins       []Bin
	Config     domain.GameConfig
	Summary    domain.Summary
	Percentile float64
}

// PlotTitle returns the figure title for n simulations.
func PlotTitle(n int) string {
	return fmt.Sprintf("Distribution of Final Stakes (%d simulations, excluding bankruptcies)", n)
}

// WriteHistogramPNG draws the histogram with its summary box and saves it as a 12x7in image.
// The format follows the path extension (.png, .svg, .pdf).
func WriteHistogramPNG(path string, in HistogramInput) error {
	if len(in.Bins) == 0 {
		return fmt.Errorf("write histogram %s: no bins", path)
	}

	p := plot.New()
	p.Title.Text = PlotTitle(in.Config.NumSimulations)
	p.X.Label.Text = "Final Stake ($)"
	p.Y.Label.Text = "Frequency"
	p.X.Min = 0

	hb := make([]plotter.HistogramBin, len(in.Bins))
	maxCount := 0
	for i, b := range in.Bins {
		hb[i] = plotter.HistogramBin{Min: b.Lo, Max: b.Hi, Weight: float64(b.Count)}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	h := &plotter.Histogram{
		Bins:      hb,
		Width:     in.Bins[0].Hi - in.Bins[0].Lo,
		FillColor: color.RGBA{R: 31, G: 119, B: 180, A: 180},
	}
	h.LineStyle = plotter.DefaultLineStyle
	h.LineStyle.Color = color.Black

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}

	p.Add(grid, h)

	top := float64(maxCount)
	if top == 0 {
		top = 1
	}
	right := in.Bins[len(in.Bins)-1].Hi
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: right, Y: top}},
		Labels: []string{summaryBox(in)},
	})
	if err != nil {
		return fmt.Errorf("write histogram %s: %w", path, err)
	}
	labels.TextStyle[0].XAlign = draw.XRight
	labels.TextStyle[0].YAlign = draw.YTop
	p.Add(labels)

	if err := p.Save(12*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("write histogram %s: %w", path, err)
	}
	return nil
}

// summaryBox renders the statistics shown in the corner of the figure.
func summaryBox(in HistogramInput) string {
	cfg, s := in.Config, in.Summary
	lines := []string{
		"Simulations: " + FormatCount(cfg.NumSimulations),
		"Display Range: " + FormatPercent(in.Percentile) + "%",
		fmt.Sprintf("Games per Simulation: %d", cfg.TotalGames),
		"Win Chance: " + FormatPercent(cfg.WinChance) + "%",
		"Conservative Bet: " + FormatPercent(cfg.BetPercent) + "%",
		"Payout Ratio: " + FormatNumber(cfg.PayoutRatio) + ":1",
		fmt.Sprintf("Strategy Switch: %d games", cfg.StrategySwitchPoint),
		strings.Repeat("-", 25),
		"Initial Stake: " + FormatWholeMoney(cfg.InitialStake),
		fmt.Sprintf("Bankruptcy Rate: %.1f%%", s.BankruptcyRate),
		"Median: " + FormatWholeMoney(s.Median),
		"Average: " + FormatWholeMoney(s.Mean),
	}
	return strings.Join(lines, "\n")
}
