package config

import "flag"

// BindFlags registers flags on fs whose defaults are the current values of cfg,
// so flags only override what they are given.
func BindFlags(fs *flag.FlagSet, cfg *AppConfig) {
	// Game
	fs.Float64Var(&cfg.Game.InitialStake, "initial-stake", cfg.Game.InitialStake, "Starting stake of every trial")
	fs.IntVar(&cfg.Game.TotalGames, "total-games", cfg.Game.TotalGames, "Games per trial")
	fs.Float64Var(&cfg.Game.WinChance, "win-chance", cfg.Game.WinChance, "Probability of winning one game, (0,1)")
	fs.Float64Var(&cfg.Game.BetPercent, "bet-percent", cfg.Game.BetPercent, "Conservative-phase fraction of stake, (0,1]")
	fs.Float64Var(&cfg.Game.PayoutRatio, "payout-ratio", cfg.Game.PayoutRatio, "Multiplier returned on a winning bet")
	fs.IntVar(&cfg.Game.StrategySwitchPoint, "switch-point", cfg.Game.StrategySwitchPoint, "Games remaining at which betting turns conservative")
	fs.IntVar(&cfg.Game.NumSimulations, "simulations", cfg.Game.NumSimulations, "Independent trials per run")

	// Run
	fs.Int64Var(&cfg.Run.Seed, "seed", cfg.Run.Seed, "Random seed (0 = from clock)")
	fs.IntVar(&cfg.Run.Workers, "workers", cfg.Run.Workers, "Parallel workers (0 or 1 = sequential)")
	fs.StringVar(&cfg.Run.OutputDir, "output-dir", cfg.Run.OutputDir, "Output directory for reports")
	fs.Float64Var(&cfg.Run.Percentile, "percentile", cfg.Run.Percentile, "Histogram display cutoff percentile of survivors")
	fs.IntVar(&cfg.Run.Bins, "bins", cfg.Run.Bins, "Histogram bins")
	fs.StringVar(&cfg.Run.PlotFile, "plot-file", cfg.Run.PlotFile, "Histogram image file name (empty = no plot)")
	fs.DurationVar(&cfg.Run.ProgressInterval, "progress-interval", cfg.Run.ProgressInterval, "Progress log interval (0 = off)")
	fs.IntVar(&cfg.Run.SweepStep, "sweep-step", cfg.Run.SweepStep, "Switch point step for --sweep")

	// Storage
	fs.StringVar(&cfg.Storage.PostgresDSN, "postgres-dsn", cfg.Storage.PostgresDSN, "PostgreSQL connection string")
	fs.StringVar(&cfg.Storage.ClickhouseDSN, "clickhouse-dsn", cfg.Storage.ClickhouseDSN, "ClickHouse connection string")
	fs.StringVar(&cfg.Storage.SQLitePath, "sqlite-path", cfg.Storage.SQLitePath, "SQLite database file for run history")
	fs.StringVar(&cfg.Storage.RedisAddr, "redis-addr", cfg.Storage.RedisAddr, "Redis address for the summary cache")
	fs.DurationVar(&cfg.Storage.CacheTTL, "cache-ttl", cfg.Storage.CacheTTL, "Summary cache TTL")

	// HTTP
	fs.StringVar(&cfg.HTTP.Addr, "addr", cfg.HTTP.Addr, "HTTP listen address")
	fs.Func("cors-origins", "Comma-separated allowed CORS origins", func(s string) error {
		cfg.HTTP.AllowedOrigins = splitList(s)
		return nil
	})

	// Log
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Log.Development, "log-dev", cfg.Log.Development, "Human-readable console logs")
}
