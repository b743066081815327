package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the game server runtime: tick cadence,
// AOI tuning, socket liveness, and economic-transaction retry knobs.
type Config struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)

	// Tick scheduler
	TickPeriod time.Duration `yaml:"tick_period"` // default 600ms

	// AOI
	AOICellSize     int32 `yaml:"aoi_cell_size"`     // default 50 world units
	AOIViewDistance int32 `yaml:"aoi_view_distance"` // default 2 cells

	// Socket liveness
	SaveIntervalSec      int `yaml:"save_interval_sec"`       // default 60
	WSPingIntervalSec    int `yaml:"ws_ping_interval_sec"`    // default 5
	WSPingMissTolerance  int `yaml:"ws_ping_miss_tolerance"`  // default 3
	WSPingGraceMs        int `yaml:"ws_ping_grace_ms"`        // default 5000

	// Pending intents
	PendingIntentTimeoutTicks int64 `yaml:"pending_intent_timeout_ticks"` // default 20

	// Home teleport
	HomeTeleportCastSec    int `yaml:"home_teleport_cast_sec"`    // default 10
	HomeTeleportCooldownMin int `yaml:"home_teleport_cooldown_min"` // default 15

	// Economic transaction retry delay tables (milliseconds)
	DeadlockRetryDelaysMs []int `yaml:"deadlock_retry_delays_ms"` // default [0,50,100,200]
	OuterRetryDelaysMs    []int `yaml:"outer_retry_delays_ms"`    // default [0,1000,3000]

	// Duel settlement idempotency TTL
	DuelIdempotencyTTLSec int `yaml:"duel_idempotency_ttl_sec"` // default 60

	// Duel disconnect grace period before a forfeit is declared
	DuelDisconnectTimeoutMs int `yaml:"duel_disconnect_timeout_ms"` // default 30000
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns          int32  `yaml:"max_conns"`
	MinConns          int32  `yaml:"min_conns"`
	MaxConnLifetime   string `yaml:"max_conn_lifetime"`
	MaxConnIdleTime   string `yaml:"max_conn_idle_time"`
	HealthCheckPeriod string `yaml:"health_check_period"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if d.MaxConnLifetime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_lifetime=%s", d.MaxConnLifetime))
	}
	if d.MaxConnIdleTime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_idle_time=%s", d.MaxConnIdleTime))
	}
	if d.HealthCheckPeriod != "" {
		params = append(params, fmt.Sprintf("pool_health_check_period=%s", d.HealthCheckPeriod))
	}

	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// Default returns Config with the documented defaults (spec §4.14/§5/§6).
func Default() Config {
	return Config{
		BindAddress:               "0.0.0.0",
		Port:                      7777,
		LogLevel:                  "info",
		TickPeriod:                600 * time.Millisecond,
		AOICellSize:               50,
		AOIViewDistance:           2,
		SaveIntervalSec:           60,
		WSPingIntervalSec:         5,
		WSPingMissTolerance:       3,
		WSPingGraceMs:             5000,
		PendingIntentTimeoutTicks: 20,
		HomeTeleportCastSec:       10,
		HomeTeleportCooldownMin:   15,
		DeadlockRetryDelaysMs:     []int{0, 50, 100, 200},
		OuterRetryDelaysMs:        []int{0, 1000, 3000},
		DuelIdempotencyTTLSec:     60,
		DuelDisconnectTimeoutMs:   30000,
		Database: DatabaseConfig{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "tickrealm",
			Password: "tickrealm",
			DBName:  "tickrealm",
			SSLMode: "disable",
		},
	}
}

// Load loads config from a YAML file, falling back to Default() when the
// file is absent, then applies environment variable overrides. Mirrors the
// teacher's config.LoadLoginServer/LoadGameServer fallback behavior.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides layers the environment variables named in spec §6 on
// top of the YAML/defaults config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SAVE_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SaveIntervalSec = n
		}
	}
	if v := os.Getenv("WS_PING_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WSPingIntervalSec = n
		}
	}
	if v := os.Getenv("WS_PING_MISS_TOLERANCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WSPingMissTolerance = n
		}
	}
	if v := os.Getenv("WS_PING_GRACE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WSPingGraceMs = n
		}
	}
}
