package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Redis    RedisConfig
	S3       S3Config
	Clover   CloverConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// CloverConfig holds the POS/payments provider settings. MerchantID and
// APIToken must both be present for the integration to be considered
// configured; everything keeps working locally without them.
type CloverConfig struct {
	MerchantID      string
	APIToken        string
	BaseURL         string
	CheckoutBaseURL string
	ChargeURL       string
	ChargeFallback  string
	PushEnabled     bool
}

// SyncConfig controls the optional periodic catalog pull from the POS.
// An empty cron expression disables scheduling; manual sync stays available.
type SyncConfig struct {
	Cron string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "cloudpuff"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-secret-key"),
			TokenExpiry: parseDuration(getEnv("JWT_TOKEN_EXPIRY", "24h")),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5176")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "cloudpuff-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Clover: CloverConfig{
			MerchantID:      getEnv("CLOVER_MERCHANT_ID", ""),
			APIToken:        getEnv("CLOVER_API_TOKEN", ""),
			BaseURL:         getEnv("CLOVER_BASE_URL", "https://apisandbox.dev.clover.com/v3/merchants"),
			CheckoutBaseURL: getEnv("CLOVER_CHECKOUT_BASE_URL", "https://apisandbox.dev.clover.com/invoicingcheckoutservice/v1/checkouts"),
			ChargeURL:       getEnv("CLOVER_CHARGE_URL", "https://scl-sandbox.dev.clover.com/v1/charges"),
			ChargeFallback:  getEnv("CLOVER_CHARGE_FALLBACK_URL", "https://scl.clover.com/v1/charges"),
			PushEnabled:     parseBool(getEnv("CLOVER_PUSH_ENABLED", "false")),
		},
		Sync: SyncConfig{
			Cron: getEnv("SYNC_CRON", ""),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default 24h", s)
		return 24 * time.Hour
	}
	return duration
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
