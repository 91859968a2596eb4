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

type Redis struct {
	URL string `json:"url"`
}

type Cache struct {
	TTLSeconds int `json:"ttl_sec"`
}

type Currency struct {
	APIURL        string `json:"api_url"`
	CacheTTLHours int    `json:"cache_ttl_hours"`
}

type SourceCfg struct {
	Enabled bool `json:"enabled"`
}

type Scraper struct {
	ZenRowsAPIKey      string    `json:"zenrows_api_key"`
	UserAgent          string    `json:"user_agent"`
	RequestTimeoutSec  int       `json:"request_timeout_sec"`
	MaxRetries         int       `json:"max_retries"`
	RateLimitPerSecond int       `json:"rate_limit_per_second"`
	MinConfidence      int       `json:"product_match_min_confidence"`
	UseMockData        bool      `json:"use_mock_data"`
	Amazon             SourceCfg `json:"amazon"`
	Ebay               SourceCfg `json:"ebay"`
	Jumia              SourceCfg `json:"jumia"`
	Konga              SourceCfg `json:"konga"`
}

type Config struct {
	Server   Server   `json:"server"`
	Redis    Redis    `json:"redis"`
	Cache    Cache    `json:"cache"`
	Currency Currency `json:"currency"`
	Scraper  Scraper  `json:"scraper"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 120},
		Redis:  Redis{URL: "redis://localhost:6379/0"},
		Cache:  Cache{TTLSeconds: 300},
		Currency: Currency{
			APIURL:        "https://open.er-api.com/v6/latest/USD",
			CacheTTLHours: 24,
		},
		Scraper: Scraper{
			RequestTimeoutSec:  30,
			MaxRetries:         3,
			RateLimitPerSecond: 2,
			MinConfidence:      70,
			UseMockData:        true,
			Amazon:             SourceCfg{Enabled: true},
			Ebay:               SourceCfg{Enabled: true},
			Jumia:              SourceCfg{Enabled: true},
			Konga:              SourceCfg{Enabled: true},
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does
// not exist, it returns defaults. Environment variables override select
// fields so secrets stay out of the file.
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
	if x := envInt("REQUEST_TIMEOUT_SEC"); x > 0 {
		cfg.Server.RequestTimeoutSec = x
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if x := envInt("CACHE_TTL_SEC"); x > 0 {
		cfg.Cache.TTLSeconds = x
	}
	if v := os.Getenv("EXCHANGE_RATE_API_URL"); v != "" {
		cfg.Currency.APIURL = v
	}
	if x := envInt("EXCHANGE_RATE_CACHE_TTL_HOURS"); x > 0 {
		cfg.Currency.CacheTTLHours = x
	}
	if v := os.Getenv("ZENROWS_API_KEY"); v != "" {
		cfg.Scraper.ZenRowsAPIKey = v
	}
	if v := os.Getenv("SCRAPER_USER_AGENT"); v != "" {
		cfg.Scraper.UserAgent = v
	}
	if x := envInt("SCRAPER_TIMEOUT_SEC"); x > 0 {
		cfg.Scraper.RequestTimeoutSec = x
	}
	if x := envInt("SCRAPER_MAX_RETRIES"); x > 0 {
		cfg.Scraper.MaxRetries = x
	}
	if x := envInt("SCRAPER_RATE_LIMIT_PER_SEC"); x > 0 {
		cfg.Scraper.RateLimitPerSecond = x
	}
	if v := os.Getenv("PRODUCT_MATCH_MIN_CONFIDENCE"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 && x <= 100 {
			cfg.Scraper.MinConfidence = x
		}
	}
	if b, ok := envBool("USE_MOCK_DATA"); ok {
		cfg.Scraper.UseMockData = b
	}
	if b, ok := envBool("AMAZON_ENABLED"); ok {
		cfg.Scraper.Amazon.Enabled = b
	}
	if b, ok := envBool("EBAY_ENABLED"); ok {
		cfg.Scraper.Ebay.Enabled = b
	}
	if b, ok := envBool("JUMIA_ENABLED"); ok {
		cfg.Scraper.Jumia.Enabled = b
	}
	if b, ok := envBool("KONGA_ENABLED"); ok {
		cfg.Scraper.Konga.Enabled = b
	}
}

func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	var x int
	fmt.Sscanf(v, "%d", &x)
	return x
}

func envBool(name string) (bool, bool) {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes", "y":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	}
	return false, false
}
