package domain

import "time"

// Phase identifies which betting rule sized a wager.
type Phase string

// Phase constants
const (
	PhaseAggressive   Phase = "aggressive"   // stake split evenly over remaining games
	PhaseConservative Phase = "conservative" // fixed fraction of stake
)

// TrialOutcome is the terminal state of one staking series.
type TrialOutcome struct {
	FinalStake  float64 // exactly 0 when bankrupt
	GamesPlayed int     // games actually simulated, including the one that went bust
	Bankrupt    bool
}

// ResultSet is the ordered, read-only sequence of terminal stakes produced by one run.
type ResultSet struct {
	stakes []float64
}

// NewResultSet takes ownership of stakes; callers must not modify the slice afterwards.
func NewResultSet(stakes []float64) *ResultSet {
	return &ResultSet{stakes: stakes}
}

// Len returns the number of trials.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.stakes)
}

// At returns the terminal stake of trial i.
func (r *ResultSet) At(i int) float64 {
	return r.stakes[i]
}

// Stakes returns a copy of the terminal stakes in trial order.
func (r *ResultSet) Stakes() []float64 {
	if r == nil {
		return nil
	}
	out := make([]float64, len(r.stakes))
	copy(out, r.stakes)
	return out
}

// Summary holds the statistics reduced from a ResultSet.
// Mean, Median, BankruptcyCount and BankruptcyRate are computed over every trial,
// bankruptcies included as 0.
type Summary struct {
	Simulations     int     `json:"simulations"`
	Mean            float64 `json:"mean"`
	Median          float64 `json:"median"`
	BankruptcyCount int     `json:"bankruptcy_count"`
	BankruptcyRate  float64 `json:"bankruptcy_rate"` // percent, 0..100

	// Distribution extras
	Survivors int     `json:"survivors"` // trials ending with a positive stake
	Stddev    float64 `json:"stddev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	P10       float64 `json:"p10"`
	P90       float64 `json:"p90"`
}

// SimulationRun is one persisted execution of the simulation driver.
type SimulationRun struct {
	RunID      string     `json:"run_id"`
	ConfigHash string     `json:"config_hash"`
	Seed       int64      `json:"seed"`
	Workers    int        `json:"workers"`
	Config     GameConfig `json:"config"`
	Summary    Summary    `json:"summary"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}

// Duration returns wall-clock time spent simulating.
func (r *SimulationRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
