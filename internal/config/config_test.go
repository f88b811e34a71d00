package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Primary.BaseURL != "http://localhost:9001" {
		t.Errorf("Expected primary base URL http://localhost:9001, got %s", cfg.Primary.BaseURL)
	}
	if cfg.Primary.Timeout != 10*time.Second {
		t.Errorf("Expected primary timeout 10s, got %s", cfg.Primary.Timeout)
	}
	if cfg.Primary.MaxAttempts != 3 {
		t.Errorf("Expected primary max attempts 3, got %d", cfg.Primary.MaxAttempts)
	}
	if !cfg.Secondary.Enabled {
		t.Error("Expected secondary provider enabled by default")
	}
	if cfg.Secondary.MaxAttempts != 2 {
		t.Errorf("Expected secondary max attempts 2, got %d", cfg.Secondary.MaxAttempts)
	}
	if cfg.Marketing.Enabled {
		t.Error("Expected marketing disabled by default")
	}
	if cfg.Database.Name != "listings" {
		t.Errorf("Expected db name listings, got %s", cfg.Database.Name)
	}
	if cfg.Database.PoolMin != 2 {
		t.Errorf("Expected pool min 2, got %d", cfg.Database.PoolMin)
	}
	if cfg.Database.PoolMax != 10 {
		t.Errorf("Expected pool max 10, got %d", cfg.Database.PoolMax)
	}
	if len(cfg.CORS.Origins) != 1 {
		t.Errorf("Expected 1 CORS origin, got %d", len(cfg.CORS.Origins))
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()

	os.Setenv("PORT", "9090")
	os.Setenv("ENV", "production")
	os.Setenv("PRIMARY_BASE_URL", "https://sor.example.com/")
	os.Setenv("PRIMARY_API_KEY", "key-123")
	os.Setenv("PRIMARY_TIMEOUT_SECONDS", "5")
	os.Setenv("SECONDARY_ENABLED", "false")
	os.Setenv("MARKETING_ENABLED", "true")
	os.Setenv("MARKETING_BASE_URL", "https://mk.example.com")
	os.Setenv("MARKETING_USERNAME", "api")
	os.Setenv("MARKETING_PASSWORD", "secret")
	defer clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "production" {
		t.Errorf("Expected env production, got %s", cfg.Server.Env)
	}
	// Trailing slash is trimmed off base URLs
	if cfg.Primary.BaseURL != "https://sor.example.com" {
		t.Errorf("Expected trimmed primary base URL, got %s", cfg.Primary.BaseURL)
	}
	if cfg.Primary.APIKey != "key-123" {
		t.Errorf("Expected primary API key key-123, got %s", cfg.Primary.APIKey)
	}
	if cfg.Primary.Timeout != 5*time.Second {
		t.Errorf("Expected primary timeout 5s, got %s", cfg.Primary.Timeout)
	}
	if cfg.Secondary.Enabled {
		t.Error("Expected secondary provider disabled")
	}
	if !cfg.Marketing.Enabled {
		t.Error("Expected marketing enabled")
	}
	if cfg.Marketing.Username != "api" || cfg.Marketing.Password != "secret" {
		t.Error("Expected marketing credentials from env")
	}
}

func TestValidate_MissingPrimaryBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Primary.BaseURL = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for missing PRIMARY_BASE_URL")
	}
}

func TestValidate_SecondaryDisabledSkipsSecondaryChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Secondary.Enabled = false
	cfg.Secondary.BaseURL = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected disabled secondary to pass validation, got %v", err)
	}
}

func TestValidate_MarketingEnabledRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Marketing.Enabled = true
	cfg.Marketing.BaseURL = "https://mk.example.com"
	cfg.Marketing.Username = ""
	cfg.Marketing.Password = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for missing marketing credentials")
	}
}

func TestValidate_PoolBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Database.PoolMin = 20
	cfg.Database.PoolMax = 10

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for pool min > pool max")
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "test"},
		Primary: ProviderConfig{
			Enabled:     true,
			BaseURL:     "http://localhost:9001",
			Timeout:     10 * time.Second,
			MaxAttempts: 3,
		},
		Secondary: ProviderConfig{
			Enabled:     true,
			BaseURL:     "http://localhost:9002",
			Timeout:     10 * time.Second,
			MaxAttempts: 2,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			Name:    "listings",
			User:    "postgres",
			PoolMin: 2,
			PoolMax: 10,
		},
		CORS: CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
}

func clearConfigEnvVars() {
	vars := []string{
		"PORT", "ENV",
		"PRIMARY_BASE_URL", "PRIMARY_API_KEY", "PRIMARY_TIMEOUT_SECONDS", "PRIMARY_MAX_ATTEMPTS",
		"SECONDARY_ENABLED", "SECONDARY_BASE_URL", "SECONDARY_API_KEY", "SECONDARY_TIMEOUT_SECONDS", "SECONDARY_MAX_ATTEMPTS",
		"MARKETING_ENABLED", "MARKETING_BASE_URL", "MARKETING_USERNAME", "MARKETING_PASSWORD",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_POOL_MIN", "DB_POOL_MAX",
		"CORS_ORIGINS",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
