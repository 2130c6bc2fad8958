package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Bot        BotConfig        `json:"bot"`
	Database   DatabaseConfig   `json:"database"`
	Logging    LoggingConfig    `json:"logging"`
	Filter     FilterConfig     `json:"filter"`
	Mitigation MitigationConfig `json:"mitigation"`
	Watchdog   WatchdogConfig   `json:"watchdog"`
}

type BotConfig struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type FilterConfig struct {
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
	CooldownSeconds int `json:"cooldown_seconds"`
}

type MitigationConfig struct {
	// Action applied on threshold crossings: ban, kick, strip_roles, timeout.
	Action       string `json:"action"`
	Workers      int    `json:"workers"`
	HTTPPoolSize int    `json:"http_pool_size"`
}

type WatchdogConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"`
}

// Load reads the JSON config at path and applies environment overrides.
// The token is required; everything else has a usable default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token missing: set bot.token in %s or DISCORD_TOKEN", path)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if clientID := os.Getenv("CLIENT_ID"); clientID != "" {
		cfg.Bot.ClientID = clientID
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "modguard.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Filter: FilterConfig{
			CacheTTLSeconds: 300,
			CooldownSeconds: 5,
		},
		Mitigation: MitigationConfig{
			Action:       "ban",
			Workers:      2,
			HTTPPoolSize: 4,
		},
		Watchdog: WatchdogConfig{
			Enabled:         true,
			IntervalSeconds: 30,
		},
	}
}
