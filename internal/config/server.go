package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default server configuration values
const (
	DefaultServerHost         = "0.0.0.0"
	DefaultServerPort         = "8090"
	DefaultReadTimeout        = 15 * time.Second
	DefaultWriteTimeout       = 30 * time.Second
	DefaultIdleTimeout        = 60 * time.Second
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultMaxUploadSizeBytes = 10 << 20 // 10 MB image uploads
)

// ServerConfig represents HTTP server configuration settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadSize   int64         `yaml:"max_upload_size"`
}

// Address returns the host:port address to listen on.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Validate checks if the configuration is valid.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port must be specified")
	}
	return nil
}

func loadServerConfig(v *viper.Viper) ServerConfig {
	cfg := ServerConfig{
		Host:            getConfigValue("SERVER_HOST", "server.host", DefaultServerHost, v),
		Port:            getConfigValue("SERVER_PORT", "server.port", DefaultServerPort, v),
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxUploadSize:   DefaultMaxUploadSizeBytes,
	}
	if d := v.GetDuration("server.read_timeout"); d > 0 {
		cfg.ReadTimeout = d
	}
	if d := v.GetDuration("server.write_timeout"); d > 0 {
		cfg.WriteTimeout = d
	}
	if d := v.GetDuration("server.shutdown_timeout"); d > 0 {
		cfg.ShutdownTimeout = d
	}
	return cfg
}
