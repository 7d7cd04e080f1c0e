package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Authz    AuthzConfig
}

type ServerConfig struct {
	Port           int     `mapstructure:"port"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// AuthzConfig tunes the decision engine and its cache. CacheBackend is
// "redis" or "memory"; an empty Redis URL forces "memory".
type AuthzConfig struct {
	EditWindowHours   int    `mapstructure:"edit_window_hours"`
	DeleteWindowHours int    `mapstructure:"delete_window_hours"`
	CacheTTLSeconds   int    `mapstructure:"cache_ttl_seconds"`
	CacheBackend      string `mapstructure:"cache_backend"`
}

func (c AuthzConfig) EditWindow() time.Duration {
	return time.Duration(c.EditWindowHours) * time.Hour
}

func (c AuthzConfig) DeleteWindow() time.Duration {
	return time.Duration(c.DeleteWindowHours) * time.Hour
}

func (c AuthzConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.rate_limit_rps", 100)
	viper.SetDefault("server.rate_limit_burst", 200)
	viper.SetDefault("authz.edit_window_hours", 24)
	viper.SetDefault("authz.delete_window_hours", 24)
	viper.SetDefault("authz.cache_ttl_seconds", 300)
	viper.SetDefault("authz.cache_backend", "memory")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
