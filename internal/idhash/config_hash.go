package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"wager-lab/internal/domain"
)

// ComputeConfigHash computes a deterministic hash of everything that determines
// the outcome of a run.
// Formula: SHA256(stake|games|win|bet|payout|switch|sims|seed|workers)
// Floats use the shortest exact decimal form. Returns hex-encoded hash (64 characters).
func ComputeConfigHash(cfg domain.GameConfig, seed int64, workers int) string {
	if workers < 1 {
		workers = 1
	}

	data := fmt.Sprintf("%s|%d|%s|%s|%s|%d|%d|%d|%d",
		formatFloat(cfg.InitialStake),
		cfg.TotalGames,
		formatFloat(cfg.WinChance),
		formatFloat(cfg.BetPercent),
		formatFloat(cfg.PayoutRatio),
		cfg.StrategySwitchPoint,
		cfg.NumSimulations,
		seed,
		workers,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
