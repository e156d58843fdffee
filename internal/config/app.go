package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// AppConfig represents application-level configuration settings.
type AppConfig struct {
	// Name is the name of the application
	Name string `yaml:"name"`
	// Version is the version of the application
	Version string `yaml:"version"`
	// Environment is the application environment (development, staging, production)
	Environment string `yaml:"environment"`
	// Debug indicates whether debug mode is enabled
	Debug bool `yaml:"debug"`
}

// Validate checks if the configuration is valid.
func (c *AppConfig) Validate() error {
	if c.Name == "" {
		return errors.New("application name must be specified")
	}

	switch c.Environment {
	case "development", "staging", "production":
		// Valid environment
	default:
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	return nil
}

func loadAppConfig(v *viper.Viper) AppConfig {
	return AppConfig{
		Name:        getConfigValue("APP_NAME", "app.name", "price-tracker", v),
		Version:     getConfigValue("APP_VERSION", "app.version", "0.1.0", v),
		Environment: getConfigValue("APP_ENV", "app.environment", "development", v),
		Debug:       v.GetBool("app.debug"),
	}
}
