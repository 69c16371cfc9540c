package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RedisAddr              string
	CacheKeyPrefix         string
	CacheTTLSeconds        int
	RateLimit              int
	ShutdownTimeoutSeconds int
	StatsIntervalSeconds   int
	LogLevel               string
	LogFormat              string
	SyncURL                string
	SyncUser               string
	SyncDebounce           time.Duration
	SyncHeartbeat          time.Duration
	SyncTimeout            time.Duration
}

// Load reads configuration from the environment (after .env has been loaded
// by the caller), falling back to defaults.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", v.GetString("app_host"), v.GetString("app_port")),
		DatabaseDSN:            v.GetString("database_dsn"),
		RedisAddr:              v.GetString("redis_addr"),
		CacheKeyPrefix:         v.GetString("cache_key_prefix"),
		CacheTTLSeconds:        v.GetInt("cache_ttl_seconds"),
		RateLimit:              v.GetInt("rate_limit_per_minute"),
		ShutdownTimeoutSeconds: v.GetInt("shutdown_timeout_seconds"),
		StatsIntervalSeconds:   v.GetInt("stats_interval_seconds"),
		LogLevel:               v.GetString("log_level"),
		LogFormat:              v.GetString("log_format"),
		SyncURL:                v.GetString("sync_url"),
		SyncUser:               v.GetString("sync_user"),
		SyncDebounce:           time.Duration(v.GetInt("sync_debounce_ms")) * time.Millisecond,
		SyncHeartbeat:          time.Duration(v.GetInt("sync_heartbeat_ms")) * time.Millisecond,
		SyncTimeout:            time.Duration(v.GetInt("sync_timeout_seconds")) * time.Second,
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8502")
	v.SetDefault("database_dsn", "workflow_system.db")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_key_prefix", "worktime:snapshot:")
	v.SetDefault("cache_ttl_seconds", 30)
	v.SetDefault("rate_limit_per_minute", 600)
	v.SetDefault("shutdown_timeout_seconds", 20)
	v.SetDefault("stats_interval_seconds", 30)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sync_url", "http://127.0.0.1:8502")
	v.SetDefault("sync_user", "")
	v.SetDefault("sync_debounce_ms", 300)
	v.SetDefault("sync_heartbeat_ms", 2000)
	v.SetDefault("sync_timeout_seconds", 5)
}

func validate(cfg Config) error {
	var errs []error
	if cfg.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
	}
	if cfg.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	if cfg.StatsIntervalSeconds <= 0 {
		errs = append(errs, errors.New("STATS_INTERVAL_SECONDS must be greater than 0"))
	}
	if cfg.CacheTTLSeconds < 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must not be negative"))
	}
	if cfg.SyncDebounce <= 0 || cfg.SyncHeartbeat <= 0 || cfg.SyncTimeout <= 0 {
		errs = append(errs, errors.New("SYNC_DEBOUNCE_MS, SYNC_HEARTBEAT_MS and SYNC_TIMEOUT_SECONDS must be greater than 0"))
	}
	return errors.Join(errs...)
}
