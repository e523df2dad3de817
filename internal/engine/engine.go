// Package engine runs single staking series (trials) from the initial stake
// to bankruptcy or the last game.
package engine

import (
	"context"

	"wager-lab/internal/domain"
	"wager-lab/internal/rng"
	"wager-lab/internal/strategy"
)

// Engine plays trials for one validated configuration.
// It holds no per-trial state and is safe for concurrent use when each
// caller supplies its own random source.
type Engine struct {
	cfg      domain.GameConfig
	staking  strategy.TwoPhase
	winDelta float64 // payout_ratio - 1, net gain per unit wagered on a win
}

// New validates cfg and returns an engine for it.
// An invalid configuration never produces an Engine.
func New(cfg domain.GameConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		staking:  strategy.FromConfig(cfg),
		winDelta: cfg.PayoutRatio - 1,
	}, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() domain.GameConfig {
	return e.cfg
}

// RunTrial plays one series and returns the terminal stake, exactly 0 on bankruptcy.
func (e *Engine) RunTrial(src rng.Source) float64 {
	return e.RunTrialDetailed(src).FinalStake
}

// RunTrialDetailed plays one series and reports how it ended.
// Exactly one sample is drawn per game played; once the stake reaches <= 0
// the trial stops and no further samples are drawn.
func (e *Engine) RunTrialDetailed(src rng.Source) domain.TrialOutcome {
	out, _ := e.play(context.Background(), src)
	return out
}

// RunTrialContext plays one series like RunTrial but stops with ctx.Err()
// when ctx is done. ctx is polled every cancelCheckGames games.
func (e *Engine) RunTrialContext(ctx context.Context, src rng.Source) (float64, error) {
	out, err := e.play(ctx, src)
	if err != nil {
		return 0, err
	}
	return out.FinalStake, nil
}

// cancelCheckGames is the number of games between context checks. Power of two.
const cancelCheckGames = 1 << 12

func (e *Engine) play(ctx context.Context, src rng.Source) (domain.TrialOutcome, error) {
	stake := e.cfg.InitialStake
	total := e.cfg.TotalGames

	for g := 0; g < total; g++ {
		if g&(cancelCheckGames-1) == cancelCheckGames-1 {
			if err := ctx.Err(); err != nil {
				return domain.TrialOutcome{GamesPlayed: g}, err
			}
		}

		bet := e.staking.Amount(stake, total-g)
		stake = e.settle(stake, bet, src.Float64())

		if stake <= 0 {
			return domain.TrialOutcome{
				FinalStake:  0,
				GamesPlayed: g + 1,
				Bankrupt:    true,
			}, nil
		}
	}

	return domain.TrialOutcome{
		FinalStake:  stake,
		GamesPlayed: total,
	}, nil
}

// settle applies one game's result to the stake.
func (e *Engine) settle(stake, bet, sample float64) float64 {
	if sample < e.cfg.WinChance {
		return stake + bet*e.winDelta
	}
	return stake - bet
}

// RunTrial validates cfg and plays a single trial with src.
func RunTrial(cfg domain.GameConfig, src rng.Source) (float64, error) {
	e, err := New(cfg)
	if err != nil {
		return 0, err
	}
	return e.RunTrial(src), nil
}
