package config

import "github.com/spf13/viper"

// Default database configuration values
const (
	DefaultDBHost    = "localhost"
	DefaultDBPort    = "5432"
	DefaultDBUser    = "postgres"
	DefaultDBName    = "pricetracker"
	DefaultDBSSLMode = "disable"
)

// DatabaseConfig represents PostgreSQL configuration settings.
// Environment variables take precedence over file configuration.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func loadDatabaseConfig(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:     getConfigValue("DB_HOST", "database.host", DefaultDBHost, v),
		Port:     getConfigValue("DB_PORT", "database.port", DefaultDBPort, v),
		User:     getConfigValue("DB_USER", "database.user", DefaultDBUser, v),
		Password: getConfigValue("DB_PASSWORD", "database.password", "", v),
		DBName:   getConfigValue("DB_NAME", "database.dbname", DefaultDBName, v),
		SSLMode:  getConfigValue("DB_SSLMODE", "database.sslmode", DefaultDBSSLMode, v),
	}
}
