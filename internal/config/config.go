package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"PatternSentinel/internal/model"
	"PatternSentinel/internal/pattern"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watch struct {
		Symbols  []string `yaml:"symbols"`
		Period   string   `yaml:"period"`
		Interval string   `yaml:"interval"`
	} `yaml:"watch"`
	Detectors struct {
		// Enabled selects detectors by name; empty means all registered.
		Enabled []string `yaml:"enabled"`
	} `yaml:"detectors"`
	DataSource struct {
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		ProxyURL string `yaml:"proxy_url"`
	} `yaml:"data_source"`
	Cache struct {
		// Path of the SQLite bar cache; empty disables caching.
		Path       string `yaml:"path"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"cache"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file when present, then applies environment
// variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("WATCH_SYMBOLS"); v != "" {
		cfg.Watch.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY_URL"); v != "" {
		cfg.DataSource.ProxyURL = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if len(cfg.Watch.Symbols) == 0 {
		cfg.Watch.Symbols = []string{"AAPL", "BTC-USD"}
	}
	if cfg.Watch.Period == "" {
		cfg.Watch.Period = string(model.Period1Year)
	}
	if cfg.Watch.Interval == "" {
		cfg.Watch.Interval = string(model.IntervalDaily)
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 60
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 0 7 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// cronParser accepts the six-field expressions used in schedule.scan_cron.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks that all required fields are set and well formed. Detector
// names are checked against the registry here so a typo fails at startup
// instead of being silently skipped at scan time.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(c.Watch.Symbols) == 0 {
		return fmt.Errorf("watch.symbols must not be empty")
	}
	if !model.Period(c.Watch.Period).Valid() {
		return fmt.Errorf("watch.period %q is not valid", c.Watch.Period)
	}
	if !model.Interval(c.Watch.Interval).Valid() {
		return fmt.Errorf("watch.interval %q is not valid", c.Watch.Interval)
	}
	for _, name := range c.Detectors.Enabled {
		if pattern.Get(name) == nil {
			return fmt.Errorf("unknown detector %q in detectors.enabled", name)
		}
	}
	if c.Cache.TTLMinutes < 0 {
		return fmt.Errorf("cache.ttl_minutes must not be negative")
	}
	if _, err := cronParser.Parse(c.Schedule.ScanCron); err != nil {
		return fmt.Errorf("schedule.scan_cron %q: %w", c.Schedule.ScanCron, err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return nil
}

// WatchPeriod returns the configured lookback as a model type.
func (c *Config) WatchPeriod() model.Period { return model.Period(c.Watch.Period) }

// WatchInterval returns the configured cadence as a model type.
func (c *Config) WatchInterval() model.Interval { return model.Interval(c.Watch.Interval) }

// CacheTTL returns the cache freshness window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}
