package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variable names.
const (
	EnvInitialStake     = "WAGER_INITIAL_STAKE"
	EnvTotalGames       = "WAGER_TOTAL_GAMES"
	EnvWinChance        = "WAGER_WIN_CHANCE"
	EnvBetPercent       = "WAGER_BET_PERCENT"
	EnvPayoutRatio      = "WAGER_PAYOUT_RATIO"
	EnvSwitchPoint      = "WAGER_SWITCH_POINT"
	EnvSimulations      = "WAGER_SIMULATIONS"
	EnvSeed             = "WAGER_SEED"
	EnvWorkers          = "WAGER_WORKERS"
	EnvOutputDir        = "WAGER_OUTPUT_DIR"
	EnvProgressInterval = "WAGER_PROGRESS_INTERVAL"
	EnvHTTPAddr         = "WAGER_HTTP_ADDR"
	EnvCORSOrigins      = "WAGER_CORS_ORIGINS"
	EnvLogLevel         = "WAGER_LOG_LEVEL"
	EnvLogDevelopment   = "WAGER_LOG_DEV"
	EnvCacheTTL         = "WAGER_CACHE_TTL"
	EnvPostgresDSN      = "POSTGRES_DSN"
	EnvClickhouseDSN    = "CLICKHOUSE_DSN"
	EnvSQLitePath       = "SQLITE_PATH"
	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisPassword    = "REDIS_PASSWORD"
	EnvRedisDB          = "REDIS_DB"
)

// ApplyEnv overrides cfg with every variable that getenv reports as non-empty.
func ApplyEnv(cfg *AppConfig, getenv func(string) string) error {
	p := envParser{getenv: getenv}

	p.setFloat(EnvInitialStake, &cfg.Game.InitialStake)
	p.setInt(EnvTotalGames, &cfg.Game.TotalGames)
	p.setFloat(EnvWinChance, &cfg.Game.WinChance)
	p.setFloat(EnvBetPercent, &cfg.Game.BetPercent)
	p.setFloat(EnvPayoutRatio, &cfg.Game.PayoutRatio)
	p.setInt(EnvSwitchPoint, &cfg.Game.StrategySwitchPoint)
	p.setInt(EnvSimulations, &cfg.Game.NumSimulations)

	p.setInt64(EnvSeed, &cfg.Run.Seed)
	p.setInt(EnvWorkers, &cfg.Run.Workers)
	p.setString(EnvOutputDir, &cfg.Run.OutputDir)
	p.setDuration(EnvProgressInterval, &cfg.Run.ProgressInterval)

	p.setString(EnvPostgresDSN, &cfg.Storage.PostgresDSN)
	p.setString(EnvClickhouseDSN, &cfg.Storage.ClickhouseDSN)
	p.setString(EnvSQLitePath, &cfg.Storage.SQLitePath)
	p.setString(EnvRedisAddr, &cfg.Storage.RedisAddr)
	p.setString(EnvRedisPassword, &cfg.Storage.RedisPassword)
	p.setInt(EnvRedisDB, &cfg.Storage.RedisDB)
	p.setDuration(EnvCacheTTL, &cfg.Storage.CacheTTL)

	p.setString(EnvHTTPAddr, &cfg.HTTP.Addr)
	if v := getenv(EnvCORSOrigins); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}

	p.setString(EnvLogLevel, &cfg.Log.Level)
	p.setBool(EnvLogDevelopment, &cfg.Log.Development)

	return p.err
}

// envParser keeps the first parse error and skips the rest.
type envParser struct {
	getenv func(string) string
	err    error
}

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v := p.getenv(key)
	return v, v != ""
}

func (p *envParser) fail(key, value string, err error) {
	p.err = fmt.Errorf("parse %s=%q: %w", key, value, err)
}

func (p *envParser) setString(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *envParser) setInt(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *envParser) setInt64(key string, dst *int64) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *envParser) setFloat(key string, dst *float64) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (p *envParser) setBool(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (p *envParser) setDuration(key string, dst *time.Duration) {
	if v, ok := p.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = d
	}
}
