package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lukman83/trustrank/internal/rank"
	"github.com/lukman83/trustrank/internal/shopee"
	"github.com/lukman83/trustrank/internal/stealth"
)

// Config holds all application configuration.
type Config struct {
	// Marketplace
	Marketplace  string
	BaseURL      string
	SearchLimit  int
	RatingsLimit int

	// Fan-out and pacing
	MaxConcurrent  int
	RequestTimeout time.Duration
	MaxRetries     int
	RatePerSecond  float64
	RateBurst      int
	DelayProfile   string
	RespectRobots  bool

	// Scoring
	Milestones rank.Milestones

	// Logging
	LogLevel string

	// HTTP server
	HTTPPort string
	APIKey   string

	// Proxy
	ProxyMode      string // "direct", "decodo", "custom"
	DecodoUsername string
	DecodoPassword string
	DecodoCountry  string
	DecodoCity     string
	ProxyFile      string // one proxy URL per line, for custom mode
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Marketplace:    "shopee",
		BaseURL:        shopee.DefaultBaseURL,
		SearchLimit:    30,
		RatingsLimit:   20,
		MaxConcurrent:  8,
		RequestTimeout: 10 * time.Second,
		RatePerSecond:  10,
		RateBurst:      10,
		DelayProfile:   string(stealth.ProfileOff),
		Milestones:     rank.DefaultMilestones(),
		LogLevel:       "warn",
		HTTPPort:       "8080",
		ProxyMode:      "direct",
		DecodoCountry:  "vn",
	}
}

// LoadFromEnv loads .env (if present) then overrides config from environment
// variables. Malformed numeric values are reported, not ignored.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	setString(&c.Marketplace, "TRUSTRANK_MARKETPLACE")
	setString(&c.BaseURL, "TRUSTRANK_BASE_URL")
	setString(&c.DelayProfile, "TRUSTRANK_DELAY_PROFILE")
	setString(&c.LogLevel, "TRUSTRANK_LOG_LEVEL")
	setString(&c.ProxyMode, "TRUSTRANK_PROXY_MODE")
	setString(&c.ProxyFile, "TRUSTRANK_PROXIES")
	setString(&c.APIKey, "TRUSTRANK_API_KEY")
	setString(&c.HTTPPort, "PORT")
	setString(&c.DecodoUsername, "DECODO_USERNAME")
	setString(&c.DecodoPassword, "DECODO_PASSWORD")
	setString(&c.DecodoCountry, "DECODO_COUNTRY")
	setString(&c.DecodoCity, "DECODO_CITY")

	if v := os.Getenv("TRUSTRANK_RESPECT_ROBOTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUSTRANK_RESPECT_ROBOTS: %w", err)
		}
		c.RespectRobots = b
	}
	if v := os.Getenv("TRUSTRANK_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRUSTRANK_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("TRUSTRANK_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TRUSTRANK_RATE_PER_SECOND: %w", err)
		}
		c.RatePerSecond = f
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"TRUSTRANK_SEARCH_LIMIT", &c.SearchLimit},
		{"TRUSTRANK_RATINGS_LIMIT", &c.RatingsLimit},
		{"TRUSTRANK_MAX_CONCURRENT", &c.MaxConcurrent},
		{"TRUSTRANK_MAX_RETRIES", &c.MaxRetries},
		{"TRUSTRANK_RATE_BURST", &c.RateBurst},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	milestones := []struct {
		key string
		dst *int64
	}{
		{"TRUSTRANK_MILESTONE_36", &c.Milestones.VeryOld},
		{"TRUSTRANK_MILESTONE_12", &c.Milestones.Old},
		{"TRUSTRANK_MILESTONE_6", &c.Milestones.Recent},
	}
	for _, e := range milestones {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.SearchLimit <= 0 {
		return fmt.Errorf("search limit must be positive, got %d", c.SearchLimit)
	}
	if c.RatingsLimit <= 0 {
		return fmt.Errorf("ratings limit must be positive, got %d", c.RatingsLimit)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent must be positive, got %d", c.MaxConcurrent)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RatePerSecond <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %.2f/s burst %d", c.RatePerSecond, c.RateBurst)
	}
	if _, err := stealth.ParseDelayProfile(c.DelayProfile); err != nil {
		return err
	}
	switch c.ProxyMode {
	case "direct":
	case "decodo":
		if c.DecodoUsername == "" || c.DecodoPassword == "" {
			return fmt.Errorf("proxy mode decodo requires DECODO_USERNAME and DECODO_PASSWORD")
		}
	case "custom":
		if c.ProxyFile == "" {
			return fmt.Errorf("proxy mode custom requires a proxy file")
		}
	default:
		return fmt.Errorf("unknown proxy mode %q", c.ProxyMode)
	}
	return c.Milestones.Validate()
}

// RankOptions maps the config onto pipeline options.
func (c *Config) RankOptions() rank.Options {
	return rank.Options{
		SearchLimit: c.SearchLimit,
		Milestones:  c.Milestones,
		Fetcher: rank.FetcherOptions{
			MaxConcurrent:  c.MaxConcurrent,
			RequestTimeout: c.RequestTimeout,
			RatingsLimit:   c.RatingsLimit,
		},
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
