package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"contrarian-screener/internal/universe"
)

type Config struct {
	Screener struct {
		Concurrency         int     `yaml:"concurrency"`
		MinScore            float64 `yaml:"min_score"`
		Limit               int     `yaml:"limit"`
		DefaultUniverse     string  `yaml:"default_universe"`
		EnrichShortInterest bool    `yaml:"enrich_short_interest"`
		EnrichSocial        bool    `yaml:"enrich_social"`
	} `yaml:"screener"`
	Sources struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		Yahoo          struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"yahoo"`
		Finviz struct {
			BaseURL           string  `yaml:"base_url"`
			RequestsPerSecond float64 `yaml:"requests_per_second"`
		} `yaml:"finviz"`
		Reddit struct {
			AuthURL    string   `yaml:"auth_url"`
			APIURL     string   `yaml:"api_url"`
			UserAgent  string   `yaml:"user_agent"`
			Subreddits []string `yaml:"subreddits"`
			Limit      int      `yaml:"limit"`
			// Credentials come from REDDIT_CLIENT_ID / REDDIT_CLIENT_SECRET
			ClientID     string `yaml:"-"`
			ClientSecret string `yaml:"-"`
		} `yaml:"reddit"`
		StockTwits struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"stocktwits"`
	} `yaml:"sources"`
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Watchlist struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"watchlist"`
	Digest struct {
		Enabled  bool    `yaml:"enabled"`
		Schedule string  `yaml:"schedule"`
		Universe string  `yaml:"universe"`
		MinScore float64 `yaml:"min_score"`
		OutDir   string  `yaml:"out_dir"`
	} `yaml:"digest"`
	SignalLog struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"signal_log"`
}

// Timeout is the per-request timeout shared by the data sources
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	var c Config
	c.Screener.EnrichShortInterest = true
	c.Screener.EnrichSocial = true
	c.applyDefaults()
	c.applyEnv()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Screener.Concurrency == 0 {
		c.Screener.Concurrency = 10
	}
	if c.Screener.MinScore == 0 {
		c.Screener.MinScore = 50
	}
	if c.Screener.Limit == 0 {
		c.Screener.Limit = 50
	}
	if c.Screener.DefaultUniverse == "" {
		c.Screener.DefaultUniverse = "sp500"
	}
	if c.Sources.TimeoutSeconds == 0 {
		c.Sources.TimeoutSeconds = 15
	}
	if c.Sources.Finviz.RequestsPerSecond == 0 {
		c.Sources.Finviz.RequestsPerSecond = 2
	}
	if len(c.Sources.Reddit.Subreddits) == 0 {
		c.Sources.Reddit.Subreddits = []string{"wallstreetbets", "stocks", "investing"}
	}
	if c.Sources.Reddit.Limit == 0 {
		c.Sources.Reddit.Limit = 100
	}
	if c.Sources.Reddit.UserAgent == "" {
		c.Sources.Reddit.UserAgent = "ContrarianScreener/1.0"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3345", "http://127.0.0.1:3345"}
	}
	if c.Watchlist.DBPath == "" {
		c.Watchlist.DBPath = "data/watchlist.db"
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 0 7 * * MON-FRI"
	}
	if c.Digest.Universe == "" {
		c.Digest.Universe = "test"
	}
	if c.Digest.MinScore == 0 {
		c.Digest.MinScore = 60
	}
	if c.Digest.OutDir == "" {
		c.Digest.OutDir = "digests"
	}
	if c.SignalLog.Dir == "" {
		c.SignalLog.Dir = "logs/signals"
	}
	if c.SignalLog.RetentionDays == 0 {
		c.SignalLog.RetentionDays = 14
	}
}

// applyEnv pulls secrets and the documented overrides from the environment
func (c *Config) applyEnv() {
	c.Sources.Reddit.ClientID = os.Getenv("REDDIT_CLIENT_ID")
	c.Sources.Reddit.ClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")

	if v := os.Getenv("SCREENER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Screener.Concurrency = n
		}
	}
	if v := os.Getenv("SCREENER_MIN_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Screener.MinScore = f
		}
	}
}

func (c *Config) Validate() error {
	if c.Screener.Concurrency < 1 || c.Screener.Concurrency > 100 {
		return fmt.Errorf("screener.concurrency must be between 1-100, got %d", c.Screener.Concurrency)
	}
	if c.Screener.MinScore < 0 || c.Screener.MinScore > 100 {
		return fmt.Errorf("screener.min_score must be between 0-100, got %.2f", c.Screener.MinScore)
	}
	if c.Screener.Limit < 0 {
		return fmt.Errorf("screener.limit cannot be negative, got %d", c.Screener.Limit)
	}
	if _, err := universe.Get(c.Screener.DefaultUniverse); err != nil {
		return fmt.Errorf("screener.default_universe: %w", err)
	}
	if c.Sources.TimeoutSeconds < 0 {
		return errors.New("sources.timeout_seconds cannot be negative")
	}
	if c.Sources.Finviz.RequestsPerSecond < 0 {
		return errors.New("sources.finviz.requests_per_second cannot be negative")
	}
	if c.Digest.Enabled {
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.Digest.Schedule); err != nil {
			return fmt.Errorf("invalid digest.schedule '%s': %w", c.Digest.Schedule, err)
		}
	}
	if _, err := universe.Get(c.Digest.Universe); err != nil {
		return fmt.Errorf("digest.universe: %w", err)
	}
	if strings.TrimSpace(c.Watchlist.DBPath) == "" {
		return errors.New("watchlist.db_path cannot be empty")
	}
	return nil
}

// LoadConfig reads path, fills defaults and validates. A missing file yields
// DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		c := DefaultConfig()
		return c, c.Validate()
	}
	if err != nil {
		return nil, err
	}

	c := Config{}
	c.Screener.EnrichShortInterest = true
	c.Screener.EnrichSocial = true
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
