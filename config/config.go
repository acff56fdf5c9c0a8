package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Entra         EntraConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// EntraConfig holds Microsoft Entra ID (Azure AD) authentication configuration
type EntraConfig struct {
	// TenantID is the directory tenant that issues tokens for this API
	TenantID string

	// AppID is the App Registration application ID; it is both the expected
	// audience and the base of the api:// scope URIs
	AppID string

	// EmailClaim is the claim name carrying the caller identity
	EmailClaim string

	JWKSCacheTTL      time.Duration
	JWKSHTTPTimeout   time.Duration
	JWKSFetchesPerMin int
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists (.env when run from the module root)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Entra: EntraConfig{
			TenantID:          getEnv("AZURE_TENANT_ID", ""),
			AppID:             getEnv("API_APP_ID", ""),
			EmailClaim:        getEnv("EMAIL_CLAIM", "email"),
			JWKSCacheTTL:      getEnvAsDuration("JWKS_CACHE_TTL", 1*time.Hour),
			JWKSHTTPTimeout:   getEnvAsDuration("JWKS_HTTP_TIMEOUT", 10*time.Second),
			JWKSFetchesPerMin: getEnvAsInt("JWKS_REQUESTS_PER_MINUTE", 5),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Entra.TenantID == "" {
		return fmt.Errorf("AZURE_TENANT_ID is required")
	}
	if _, err := uuid.Parse(c.Entra.TenantID); err != nil {
		return fmt.Errorf("AZURE_TENANT_ID must be a valid tenant UUID: %w", err)
	}

	if c.Entra.AppID == "" {
		return fmt.Errorf("API_APP_ID is required")
	}
	if _, err := uuid.Parse(c.Entra.AppID); err != nil {
		return fmt.Errorf("API_APP_ID must be a valid application UUID: %w", err)
	}

	if c.Entra.EmailClaim == "" {
		return fmt.Errorf("EMAIL_CLAIM must not be empty")
	}
	if c.Entra.JWKSFetchesPerMin <= 0 {
		return fmt.Errorf("JWKS_REQUESTS_PER_MINUTE must be positive")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Observability.LogFormat)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IssuerURL returns the expected token issuer for the configured tenant
func (c *EntraConfig) IssuerURL() string {
	return fmt.Sprintf("https://sts.windows.net/%s/", c.TenantID)
}

// JWKSURL returns the tenant's signing-key discovery endpoint
func (c *EntraConfig) JWKSURL() string {
	return fmt.Sprintf("https://login.microsoftonline.com/%s/discovery/v2.0/keys", c.TenantID)
}

// ReadScope returns the fully qualified scope required to list employees
func (c *EntraConfig) ReadScope() string {
	return fmt.Sprintf("api://%s/Employee.Read.All", c.AppID)
}

// WriteScope returns the fully qualified scope required to create employees
func (c *EntraConfig) WriteScope() string {
	return fmt.Sprintf("api://%s/Employee.Write.All", c.AppID)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 3000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 3000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
