package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default vision configuration values
const (
	DefaultVisionModel     = "gemini-1.5-flash"
	DefaultVisionEndpoint  = "https://generativelanguage.googleapis.com/v1beta"
	DefaultVisionTimeout   = 30 * time.Second
	DefaultVisionRateLimit = 1.0 // requests per second
)

// VisionConfig represents configuration for the image identification client.
// The client is disabled when no API key is configured.
type VisionConfig struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
}

// Enabled reports whether image search is available.
func (c *VisionConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadVisionConfig(v *viper.Viper) VisionConfig {
	cfg := VisionConfig{
		APIKey:    getConfigValue("GEMINI_API_KEY", "vision.api_key", "", v),
		Model:     getConfigValue("GEMINI_MODEL", "vision.model", DefaultVisionModel, v),
		Endpoint:  getConfigValue("GEMINI_ENDPOINT", "vision.endpoint", DefaultVisionEndpoint, v),
		Timeout:   DefaultVisionTimeout,
		RateLimit: DefaultVisionRateLimit,
	}
	if d := v.GetDuration("vision.timeout"); d > 0 {
		cfg.Timeout = d
	}
	if r := v.GetFloat64("vision.rate_limit"); r > 0 {
		cfg.RateLimit = r
	}
	return cfg
}
