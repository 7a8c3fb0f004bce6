package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// redis, holds the persisted active session and the local session history
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// remote GFit member/exercise API
	MemberApiBaseURL        string `toml:"member_api_base_url"`
	ExercisesCacheExpireSec int    `toml:"exercises_cache_expire_sec"`

	// prometheus
	PrometheusMetricsHost string `toml:"prom_metrics_host"`
	PrometheusMetricsPort string `toml:"prom_metrics_port"`

	SessionRateLimitAllowedPerMin int `toml:"session_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s is empty", env)
	}

	cfg.Environment = env

	if cfg.ExercisesCacheExpireSec <= 0 {
		cfg.ExercisesCacheExpireSec = 60
	}
	if cfg.SessionRateLimitAllowedPerMin <= 0 {
		cfg.SessionRateLimitAllowedPerMin = 30
	}

	return cfg, nil
}
