package domain

import (
	"math"
)

// GameConfig holds the parameters of one wagering series and how many
// independent series to simulate. Validated once before any trial runs.
type GameConfig struct {
	InitialStake        float64 `json:"initial_stake" yaml:"initial_stake"`                 // stake at the start of every trial
	TotalGames          int     `json:"total_games" yaml:"total_games"`                     // games per trial
	WinChance           float64 `json:"win_chance" yaml:"win_chance"`                       // probability of winning one game, (0,1)
	BetPercent          float64 `json:"bet_percent" yaml:"bet_percent"`                     // conservative-phase fraction of stake, (0,1]
	PayoutRatio         float64 `json:"payout_ratio" yaml:"payout_ratio"`                   // multiplier returned on a winning bet
	StrategySwitchPoint int     `json:"strategy_switch_point" yaml:"strategy_switch_point"` // games remaining at which betting turns conservative
	NumSimulations      int     `json:"num_simulations" yaml:"num_simulations"`             // independent trials per run
}

// Defaults match the reference parameter set.
const (
	DefaultInitialStake        = 100.0
	DefaultTotalGames          = 100
	DefaultWinChance           = 0.51
	DefaultBetPercent          = 0.2
	DefaultPayoutRatio         = 2.0
	DefaultStrategySwitchPoint = 33
	DefaultNumSimulations      = 5000
)

// DefaultGameConfig returns the reference parameter set.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		InitialStake:        DefaultInitialStake,
		TotalGames:          DefaultTotalGames,
		WinChance:           DefaultWinChance,
		BetPercent:          DefaultBetPercent,
		PayoutRatio:         DefaultPayoutRatio,
		StrategySwitchPoint: DefaultStrategySwitchPoint,
		NumSimulations:      DefaultNumSimulations,
	}
}

// Validate checks every field against its constraint and returns a *ConfigError
// for the first violation. Comparisons are written so that NaN fails them.
func (c GameConfig) Validate() error {
	if !(c.InitialStake > 0) || math.IsInf(c.InitialStake, 0) {
		return newConfigError("initial_stake", c.InitialStake, "must be a positive finite number")
	}
	if c.TotalGames <= 0 {
		return newConfigError("total_games", c.TotalGames, "must be positive")
	}
	if !(c.WinChance > 0 && c.WinChance < 1) {
		return newConfigError("win_chance", c.WinChance, "must be strictly between 0 and 1")
	}
	if !(c.BetPercent > 0 && c.BetPercent <= 1) {
		return newConfigError("bet_percent", c.BetPercent, "must be in (0, 1]")
	}
	if !(c.PayoutRatio > 0) || math.IsInf(c.PayoutRatio, 0) {
		return newConfigError("payout_ratio", c.PayoutRatio, "must be a positive finite number")
	}
	if c.StrategySwitchPoint < 0 {
		return newConfigError("strategy_switch_point", c.StrategySwitchPoint, "must not be negative")
	}
	if c.NumSimulations <= 0 {
		return newConfigError("num_simulations", c.NumSimulations, "must be positive")
	}
	return nil
}
