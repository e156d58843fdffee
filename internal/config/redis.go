package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default redis configuration values
const (
	DefaultRedisAddress = "localhost:6379"
	DefaultRedisDB      = 0
	DefaultCacheTTL     = time.Hour
)

// RedisConfig represents Redis configuration for the result cache
// and group-run metadata.
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

func loadRedisConfig(v *viper.Viper) RedisConfig {
	cfg := RedisConfig{
		Address:  getConfigValue("REDIS_ADDRESS", "redis.address", DefaultRedisAddress, v),
		Password: getConfigValue("REDIS_PASSWORD", "redis.password", "", v),
		DB:       DefaultRedisDB,
		CacheTTL: DefaultCacheTTL,
	}
	if db := v.GetInt("redis.db"); db > 0 {
		cfg.DB = db
	}
	if ttl := v.GetDuration("redis.cache_ttl"); ttl > 0 {
		cfg.CacheTTL = ttl
	}
	return cfg
}
