package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	Store    string
	LogLevel string

	JWTSecret string

	AlertSweepSchedule    string
	MonthlyReportSchedule string
	SweepWorkers          int
	InsightsCacheTTL      time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables, reading a .env file first if present
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		DBConn:                getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=finance sslmode=disable"),
		Store:                 getEnv("STORE", "postgres"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:             getEnv("JWT_SECRET", "secret"),
		AlertSweepSchedule:    getEnv("ALERT_SWEEP_SCHEDULE", "0 6 * * *"),
		MonthlyReportSchedule: getEnv("MONTHLY_REPORT_SCHEDULE", "0 7 1 * *"),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              getEnv("SMTP_PORT", "587"),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SenderEmail:           getEnv("SENDER_EMAIL", "reports@finance-insights.local"),
	}

	workers, err := strconv.Atoi(getEnv("SWEEP_WORKERS", "8"))
	if err != nil || workers <= 0 {
		return nil, fmt.Errorf("SWEEP_WORKERS must be a positive integer")
	}
	cfg.SweepWorkers = workers

	ttl, err := time.ParseDuration(getEnv("INSIGHTS_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid INSIGHTS_CACHE_TTL: %w", err)
	}
	cfg.InsightsCacheTTL = ttl

	switch cfg.Store {
	case "postgres":
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// MailEnabled reports whether SMTP delivery of monthly reports is configured
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
