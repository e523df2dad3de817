// Package config assembles application settings from, in increasing priority:
// built-in defaults, a .env file, an optional YAML file, environment variables and CLI flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"wager-lab/internal/domain"
	"wager-lab/internal/logger"
)

// AppConfig holds every setting used by the binaries.
type AppConfig struct {
	Game    domain.GameConfig `yaml:"game"`
	Run     RunConfig         `yaml:"run"`
	Storage StorageConfig     `yaml:"storage"`
	HTTP    HTTPConfig        `yaml:"http"`
	Log     LogConfig         `yaml:"log"`
}

// RunConfig controls how a simulation run executes and what it writes.
type RunConfig struct {
	Seed             int64         `yaml:"seed"`    // 0 draws a seed from the clock
	Workers          int           `yaml:"workers"` // 0 or 1 runs sequentially
	OutputDir        string        `yaml:"output_dir"`
	Percentile       float64       `yaml:"percentile"` // histogram display cutoff
	Bins             int           `yaml:"bins"`
	PlotFile         string        `yaml:"plot_file"`
	ProgressInterval time.Duration `yaml:"progress_interval"` // 0 disables the heartbeat log
	SweepStep        int           `yaml:"sweep_step"`
}

// StorageConfig selects optional backends. Empty values disable them.
type StorageConfig struct {
	PostgresDSN   string        `yaml:"postgres_dsn"`
	ClickhouseDSN string        `yaml:"clickhouse_dsn"`
	SQLitePath    string        `yaml:"sqlite_path"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in settings.
func Default() *AppConfig {
	return &AppConfig{
		Game: domain.DefaultGameConfig(),
		Run: RunConfig{
			Workers:    1,
			OutputDir:  "output",
			Percentile: 0.95,
			Bins:       100,
			PlotFile:   "betting_game_results.png",
			SweepStep:  1,
		},
		Storage: StorageConfig{
			CacheTTL: 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadEnvFile loads path into the process environment without overriding
// variables already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadFile decodes a YAML file over cfg. Keys absent from the file keep their current value.
func LoadFile(path string, cfg *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration for a binary:
//  1. .env (WAGER_ENV_FILE, default ".env")
//  2. defaults
//  3. YAML file named by WAGER_CONFIG, if set
//  4. environment variables
//  5. flags registered on flags, parsed from args
//  6. validation
//
// Callers may register their own flags before calling Load.
func Load(flags *flag.FlagSet, args []string) (*AppConfig, error) {
	envFile := os.Getenv("WAGER_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := Default()
	if path := os.Getenv("WAGER_CONFIG"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}

	BindFlags(flags, cfg)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the game parameters and the run, storage and log settings.
func (c *AppConfig) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if c.Run.Workers < 0 {
		return &domain.ConfigError{Field: "workers", Value: c.Run.Workers, Reason: "must not be negative"}
	}
	if !(c.Run.Percentile > 0 && c.Run.Percentile <= 1) {
		return &domain.ConfigError{Field: "percentile", Value: c.Run.Percentile, Reason: "must be in (0, 1]"}
	}
	if c.Run.Bins <= 0 {
		return &domain.ConfigError{Field: "bins", Value: c.Run.Bins, Reason: "must be positive"}
	}
	if c.Run.SweepStep <= 0 {
		return &domain.ConfigError{Field: "sweep_step", Value: c.Run.SweepStep, Reason: "must be positive"}
	}
	if c.Run.ProgressInterval < 0 {
		return &domain.ConfigError{Field: "progress_interval", Value: c.Run.ProgressInterval, Reason: "must not be negative"}
	}
	if c.Storage.RedisDB < 0 {
		return &domain.ConfigError{Field: "redis_db", Value: c.Storage.RedisDB, Reason: "must not be negative"}
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return &domain.ConfigError{Field: "log_level", Value: c.Log.Level, Reason: "must be debug, info, warn or error"}
	}
	return nil
}

// LoggerOptions returns the logger settings for a binary.
func (c *AppConfig) LoggerOptions(name string) logger.Options {
	return logger.Options{Level: c.Log.Level, Development: c.Log.Development, Name: name}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
