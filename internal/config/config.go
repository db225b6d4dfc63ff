// Package config loads the service configuration from environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string `mapstructure:"http_addr"`

	LogLevel       string `mapstructure:"log_level"`
	LogDevelopment bool   `mapstructure:"log_development"`

	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Maps     MapsConfig     `mapstructure:"maps"`
	Meter    MeterConfig    `mapstructure:"meter"`

	// AdminAPIKey guards the rate-card administration endpoints.
	AdminAPIKey string `mapstructure:"admin_api_key"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". sqlite is the zero-dependency
	// default for local development and tests.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MapsConfig struct {
	// Provider is "mock" or "google".
	Provider     string `mapstructure:"provider"`
	GoogleAPIKey string `mapstructure:"google_api_key"`
}

type MeterConfig struct {
	Region string `mapstructure:"region"`

	// CommissionRatePercent is applied to the commissionable amount at
	// finalization; 25 means 25%.
	CommissionRatePercent float64 `mapstructure:"commission_rate_percent"`

	// StaleSessionAfter is how long a running session may go without a
	// fix before the reaper force-closes it.
	StaleSessionAfter time.Duration `mapstructure:"stale_session_after"`
	ReapInterval      time.Duration `mapstructure:"reap_interval"`

	// LiveFareTTL bounds how long a cached breakdown may serve rider
	// polling after the last update.
	LiveFareTTL time.Duration `mapstructure:"live_fare_ttl"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:transpo.db?cache=shared")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("maps.provider", "mock")

	v.SetDefault("meter.region", "quebec")
	v.SetDefault("meter.commission_rate_percent", 25.0)
	v.SetDefault("meter.stale_session_after", 30*time.Minute)
	v.SetDefault("meter.reap_interval", time.Minute)
	v.SetDefault("meter.live_fare_ttl", 5*time.Minute)

	v.SetEnvPrefix("TRANSPO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/transpo")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
