package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Cache struct {
	MaxEntries int `json:"max_entries"`
}

type Equities struct {
	BaseURL         string `json:"base_url"`
	CacheTTLSeconds int    `json:"cache_ttl_sec"`
	MaxRetries      int    `json:"max_retries"`
}

type Crypto struct {
	BaseURL              string `json:"base_url"`
	CacheTTLSeconds      int    `json:"cache_ttl_sec"`
	StaggerMS            int    `json:"stagger_ms"`
	MaxDays              int    `json:"max_days"`
	MaxRetries           int    `json:"max_retries"`
	RetryAfterDefaultSec int    `json:"retry_after_default_sec"`
}

type Refresh struct {
	Enabled         bool `json:"enabled"`
	CryptoEverySec  int  `json:"crypto_every_sec"`
	GeneralEverySec int  `json:"general_every_sec"`
}

type Config struct {
	Server     Server   `json:"server"`
	Cache      Cache    `json:"cache"`
	Equities   Equities `json:"equities"`
	Crypto     Crypto   `json:"crypto"`
	Refresh    Refresh  `json:"refresh"`
	AssetsFile string   `json:"assets_file"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 15},
		Cache:  Cache{MaxEntries: 500},
		Equities: Equities{
			BaseURL:         "https://query1.finance.yahoo.com",
			CacheTTLSeconds: 60,
			MaxRetries:      2,
		},
		Crypto: Crypto{
			BaseURL:              "https://api.coingecko.com",
			CacheTTLSeconds:      30,
			StaggerMS:            1500,
			MaxDays:              365,
			MaxRetries:           1,
			RetryAfterDefaultSec: 60,
		},
		Refresh: Refresh{Enabled: true, CryptoEverySec: 30, GeneralEverySec: 60},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := envInt("REQUEST_TIMEOUT_SEC"); v > 0 {
		cfg.Server.RequestTimeoutSec = v
	}
	if v := envInt("CACHE_MAX_ENTRIES"); v > 0 {
		cfg.Cache.MaxEntries = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Equities.BaseURL = v
	}
	if v := envInt("YAHOO_CACHE_TTL_SEC"); v > 0 {
		cfg.Equities.CacheTTLSeconds = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.Crypto.BaseURL = v
	}
	if v := envInt("COINGECKO_CACHE_TTL_SEC"); v > 0 {
		cfg.Crypto.CacheTTLSeconds = v
	}
	if v := envInt("COINGECKO_STAGGER_MS"); v > 0 {
		cfg.Crypto.StaggerMS = v
	}
	if v := envInt("COINGECKO_MAX_DAYS"); v > 0 {
		cfg.Crypto.MaxDays = v
	}
	if v := os.Getenv("ASSETS_FILE"); v != "" {
		cfg.AssetsFile = v
	}
	if v := os.Getenv("REFRESH_ENABLED"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.Refresh.Enabled = true
		case "0", "false", "no", "n":
			cfg.Refresh.Enabled = false
		}
	}
	if v := envInt("REFRESH_CRYPTO_EVERY_SEC"); v > 0 {
		cfg.Refresh.CryptoEverySec = v
	}
	if v := envInt("REFRESH_GENERAL_EVERY_SEC"); v > 0 {
		cfg.Refresh.GeneralEverySec = v
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	var x int
	_, _ = fmt.Sscanf(v, "%d", &x)
	return x
}
