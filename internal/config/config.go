// Package config provides configuration management for the price-tracker
// service. Values come from a config.yaml file, environment variables, and
// defaults, in that order of precedence (env wins).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/price-tracker/internal/logger"
)

// Config aggregates all configuration for the service.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Vision   VisionConfig   `yaml:"vision"`
	Logging  logger.Config  `yaml:"logging"`
}

// Load initializes viper and builds the full configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	cfg := &Config{
		App:      loadAppConfig(v),
		Server:   loadServerConfig(v),
		Database: loadDatabaseConfig(v),
		Redis:    loadRedisConfig(v),
		Scraper:  loadScraperConfig(v),
		Vision:   loadVisionConfig(v),
		Logging:  loadLoggingConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Scraper.Validate(); err != nil {
		return fmt.Errorf("scraper: %w", err)
	}
	return nil
}

// getConfigValue retrieves a value from environment or viper, with a default.
func getConfigValue(envKey, viperKey, defaultValue string, v *viper.Viper) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if val := v.GetString(viperKey); val != "" {
		return val
	}
	return defaultValue
}

// loadLoggingConfig loads logger configuration.
func loadLoggingConfig(v *viper.Viper) logger.Config {
	level := logger.Level(getConfigValue("LOG_LEVEL", "logging.level", "info", v))
	encoding := getConfigValue("LOG_ENCODING", "logging.encoding", "console", v)
	return logger.Config{
		Level:       level,
		Encoding:    encoding,
		Development: v.GetBool("app.debug"),
	}
}
