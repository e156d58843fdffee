package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default scraper configuration values
const (
	DefaultPoolSize       = 5
	DefaultJobTimeout     = 2 * time.Minute
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBackoff   = 5 * time.Second
	DefaultDrainTimeout   = 30 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultRefreshSchedule re-scrapes popular products every 6 hours.
	DefaultRefreshSchedule = "0 */6 * * *"
	DefaultRefreshTopN     = 10
)

// ScraperConfig represents worker pool and connector configuration.
type ScraperConfig struct {
	// PoolSize is the number of concurrent scrape workers.
	PoolSize int `yaml:"pool_size"`
	// JobTimeout bounds one job execution including retries.
	JobTimeout time.Duration `yaml:"job_timeout"`
	// RequestTimeout bounds a single connector invocation.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxRetries is the retry budget for transient connector failures.
	MaxRetries int `yaml:"max_retries"`
	// RetryBackoff is the fixed delay between retry attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	// DrainTimeout bounds graceful worker pool shutdown.
	DrainTimeout time.Duration `yaml:"drain_timeout"`
	// UserAgent is sent on connector HTTP requests.
	UserAgent string `yaml:"user_agent"`
	// RefreshSchedule is the cron spec for the periodic price refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`
	// RefreshTopN is how many of the most-searched products get refreshed.
	RefreshTopN int `yaml:"refresh_top_n"`
}

// Validate checks if the configuration is valid.
func (c *ScraperConfig) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool size must be positive, got %d", c.PoolSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got %d", c.MaxRetries)
	}
	return nil
}

func loadScraperConfig(v *viper.Viper) ScraperConfig {
	cfg := ScraperConfig{
		PoolSize:        DefaultPoolSize,
		JobTimeout:      DefaultJobTimeout,
		RequestTimeout:  DefaultRequestTimeout,
		MaxRetries:      DefaultMaxRetries,
		RetryBackoff:    DefaultRetryBackoff,
		DrainTimeout:    DefaultDrainTimeout,
		UserAgent:       getConfigValue("SCRAPER_USER_AGENT", "scraper.user_agent", DefaultUserAgent, v),
		RefreshSchedule: getConfigValue("SCRAPER_REFRESH_SCHEDULE", "scraper.refresh_schedule", DefaultRefreshSchedule, v),
		RefreshTopN:     DefaultRefreshTopN,
	}
	if n := v.GetInt("scraper.pool_size"); n > 0 {
		cfg.PoolSize = n
	}
	if d := v.GetDuration("scraper.job_timeout"); d > 0 {
		cfg.JobTimeout = d
	}
	if d := v.GetDuration("scraper.request_timeout"); d > 0 {
		cfg.RequestTimeout = d
	}
	if n := v.GetInt("scraper.max_retries"); n > 0 {
		cfg.MaxRetries = n
	}
	if d := v.GetDuration("scraper.retry_backoff"); d > 0 {
		cfg.RetryBackoff = d
	}
	if n := v.GetInt("scraper.refresh_top_n"); n > 0 {
		cfg.RefreshTopN = n
	}
	return cfg
}
