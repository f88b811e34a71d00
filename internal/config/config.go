package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Primary   ProviderConfig
	Secondary ProviderConfig
	Marketing MarketingConfig
	Database  DatabaseConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// ProviderConfig holds the connection settings for one upstream listing
// provider.
type ProviderConfig struct {
	Enabled     bool
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
}

// MarketingConfig holds the marketing-automation contact API settings.
type MarketingConfig struct {
	Enabled     bool
	BaseURL     string
	Username    string
	Password    string
	Timeout     time.Duration
	MaxAttempts int
}

// DatabaseConfig holds the PostgreSQL connection configuration backing the
// favorites store.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")

	v.SetDefault("PRIMARY_BASE_URL", "http://localhost:9001")
	v.SetDefault("PRIMARY_TIMEOUT_SECONDS", 10)
	v.SetDefault("PRIMARY_MAX_ATTEMPTS", 3)

	v.SetDefault("SECONDARY_ENABLED", true)
	v.SetDefault("SECONDARY_BASE_URL", "http://localhost:9002")
	v.SetDefault("SECONDARY_TIMEOUT_SECONDS", 10)
	v.SetDefault("SECONDARY_MAX_ATTEMPTS", 2)

	v.SetDefault("MARKETING_ENABLED", false)
	v.SetDefault("MARKETING_TIMEOUT_SECONDS", 10)
	v.SetDefault("MARKETING_MAX_ATTEMPTS", 3)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "listings")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Primary: ProviderConfig{
			Enabled:     true,
			BaseURL:     strings.TrimRight(v.GetString("PRIMARY_BASE_URL"), "/"),
			APIKey:      v.GetString("PRIMARY_API_KEY"),
			Timeout:     time.Duration(v.GetInt("PRIMARY_TIMEOUT_SECONDS")) * time.Second,
			MaxAttempts: v.GetInt("PRIMARY_MAX_ATTEMPTS"),
		},
		Secondary: ProviderConfig{
			Enabled:     v.GetBool("SECONDARY_ENABLED"),
			BaseURL:     strings.TrimRight(v.GetString("SECONDARY_BASE_URL"), "/"),
			APIKey:      v.GetString("SECONDARY_API_KEY"),
			Timeout:     time.Duration(v.GetInt("SECONDARY_TIMEOUT_SECONDS")) * time.Second,
			MaxAttempts: v.GetInt("SECONDARY_MAX_ATTEMPTS"),
		},
		Marketing: MarketingConfig{
			Enabled:     v.GetBool("MARKETING_ENABLED"),
			BaseURL:     strings.TrimRight(v.GetString("MARKETING_BASE_URL"), "/"),
			Username:    v.GetString("MARKETING_USERNAME"),
			Password:    v.GetString("MARKETING_PASSWORD"),
			Timeout:     time.Duration(v.GetInt("MARKETING_TIMEOUT_SECONDS")) * time.Second,
			MaxAttempts: v.GetInt("MARKETING_MAX_ATTEMPTS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate primary provider config
	if c.Primary.BaseURL == "" {
		return fmt.Errorf("PRIMARY_BASE_URL is required")
	}
	if c.Primary.Timeout <= 0 {
		return fmt.Errorf("PRIMARY_TIMEOUT_SECONDS must be positive")
	}
	if c.Primary.MaxAttempts < 1 {
		return fmt.Errorf("PRIMARY_MAX_ATTEMPTS must be at least 1")
	}

	// Validate secondary provider config (only when enabled)
	if c.Secondary.Enabled {
		if c.Secondary.BaseURL == "" {
			return fmt.Errorf("SECONDARY_BASE_URL is required when SECONDARY_ENABLED is true")
		}
		if c.Secondary.Timeout <= 0 {
			return fmt.Errorf("SECONDARY_TIMEOUT_SECONDS must be positive")
		}
		if c.Secondary.MaxAttempts < 1 {
			return fmt.Errorf("SECONDARY_MAX_ATTEMPTS must be at least 1")
		}
	}

	// Validate marketing config (only when enabled)
	if c.Marketing.Enabled {
		if c.Marketing.BaseURL == "" {
			return fmt.Errorf("MARKETING_BASE_URL is required when MARKETING_ENABLED is true")
		}
		if c.Marketing.Username == "" || c.Marketing.Password == "" {
			return fmt.Errorf("MARKETING_USERNAME and MARKETING_PASSWORD are required when MARKETING_ENABLED is true")
		}
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
