package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"marketproxy/internal/market"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Cache.MaxEntries != 500 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Equities.CacheTTLSeconds != 60 || cfg.Crypto.CacheTTLSeconds != 30 {
		t.Fatalf("unexpected TTL defaults: %+v", cfg)
	}
	if cfg.Crypto.StaggerMS != 1500 || cfg.Crypto.MaxDays != 365 {
		t.Fatalf("unexpected crypto defaults: %+v", cfg.Crypto)
	}
	if cfg.Equities.MaxRetries != 2 || cfg.Crypto.MaxRetries != 1 {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"server":{"port":"9090"},"crypto":{"stagger_ms":200}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("want port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Crypto.StaggerMS != 200 {
		t.Fatalf("want stagger 200, got %d", cfg.Crypto.StaggerMS)
	}
	// Untouched fields keep their defaults.
	if cfg.Cache.MaxEntries != 500 {
		t.Fatalf("want default cache size, got %d", cfg.Cache.MaxEntries)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("CACHE_MAX_ENTRIES", "42")
	t.Setenv("COINGECKO_MAX_DAYS", "90")
	t.Setenv("REFRESH_ENABLED", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("want port 7070, got %q", cfg.Server.Port)
	}
	if cfg.Cache.MaxEntries != 42 {
		t.Fatalf("want 42 entries, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Crypto.MaxDays != 90 {
		t.Fatalf("want 90 days, got %d", cfg.Crypto.MaxDays)
	}
	if cfg.Refresh.Enabled {
		t.Fatalf("refresh should be disabled via env")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("want parse error")
	}
}

func TestLoadAssets_EmptyPathUsesBuiltinCatalog(t *testing.T) {
	assets, err := LoadAssets("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(assets) == 0 {
		t.Fatalf("builtin catalog must not be empty")
	}
	for _, a := range assets {
		if a.YahooSymbol == "" && a.CoinGeckoID == "" {
			t.Fatalf("builtin asset %s has no source", a.ID)
		}
	}
}

func TestLoadAssets_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	data := `assets:
  - id: btc
    symbol: BTC
    name: Bitcoin
    category: crypto
    coingecko_id: bitcoin
  - id: gold
    symbol: XAU
    name: Gold
    category: commodity
    yahoo_symbol: GC=F
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	assets, err := LoadAssets(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("want 2 assets, got %d", len(assets))
	}
	if assets[0].CoinGeckoID != "bitcoin" || assets[1].YahooSymbol != "GC=F" {
		t.Fatalf("bad parse: %+v", assets)
	}
	if assets[1].Category != market.CategoryCommodity {
		t.Fatalf("want commodity, got %q", assets[1].Category)
	}
}

func TestLoadAssets_RejectsAssetWithoutSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	data := `assets:
  - id: mystery
    symbol: MYS
    name: Mystery
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAssets(path)
	var nosrc *market.NoSourceError
	if !errors.As(err, &nosrc) {
		t.Fatalf("want NoSourceError, got %v", err)
	}
}
