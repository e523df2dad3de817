package reporting

import (
	"time"

	"wager-lab/internal/domain"
)

// Report represents a single-run report.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Run         *domain.SimulationRun

	// Terminal stakes in trial order
	Stakes []float64

	Distribution DistributionSection
}

// DistributionSection describes the histogram of surviving stakes.
type DistributionSection struct {
	Percentile float64 // display percentile used for the x-axis cutoff
	Cutoff     float64 // upper bound of the displayed range
	Survivors  int
	AllBust    bool // no surviving trial, nothing to plot
	Bins       []Bin
	PlotFile   string // empty when no plot was written
}

// Bin is one equal-width histogram bucket [Lo, Hi).
// The last bin of a histogram is closed on the right.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}
