package strategy

import (
	"wager-lab/internal/domain"
)

// TwoPhase sizes wagers with an aggressive rule while more than SwitchPoint
// games remain, then with a fixed fraction of stake.
type TwoPhase struct {
	SwitchPoint int     // games remaining at which the conservative rule takes over
	BetPercent  float64 // conservative fraction of current stake
}

// FromConfig builds the staking rule of cfg.
func FromConfig(cfg domain.GameConfig) TwoPhase {
	return TwoPhase{
		SwitchPoint: cfg.StrategySwitchPoint,
		BetPercent:  cfg.BetPercent,
	}
}

// PhaseFor returns the rule that applies with `remaining` games left.
// remaining == SwitchPoint is already conservative.
func (s TwoPhase) PhaseFor(remaining int) domain.Phase {
	if remaining > s.SwitchPoint {
		return domain.PhaseAggressive
	}
	return domain.PhaseConservative
}

// Bet returns the wager for the current stake and the phase that sized it.
func (s TwoPhase) Bet(stake float64, remaining int) (float64, domain.Phase) {
	return s.Amount(stake, remaining), s.PhaseFor(remaining)
}

// Amount returns the wager for the current stake.
// The result never exceeds stake: aggressive bets stake/remaining with
// remaining >= 1, conservative bets stake*BetPercent with BetPercent <= 1.
func (s TwoPhase) Amount(stake float64, remaining int) float64 {
	if remaining > s.SwitchPoint {
		return stake / float64(remaining)
	}
	return stake * s.BetPercent
}
