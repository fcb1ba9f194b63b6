package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port          string
	DBConn        string
	LogLevel      string
	LateFeeAmount float64
	AccrualHour   int
	BaseRateURL   string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	SMTPFrom      string

	// RewardNotifyEmail receives reward-granted notifications; the engine
	// stores no user contact details itself.
	RewardNotifyEmail string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	lateFee, err := getEnvFloat("LATE_FEE_AMOUNT", 12.00)
	if err != nil {
		return nil, err
	}
	accrualHour, err := getEnvInt("ACCRUAL_HOUR", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=credit password=credit dbname=credit sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LateFeeAmount: lateFee,
		AccrualHour:   accrualHour,
		BaseRateURL:   getEnv("BASE_RATE_URL", "https://www.bankofengland.co.uk/boeapps/iadb/rates.xml"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", "noreply@lumafin.example"),

		RewardNotifyEmail: getEnv("REWARD_NOTIFY_EMAIL", ""),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.LateFeeAmount <= 0 {
		return nil, fmt.Errorf("LATE_FEE_AMOUNT must be positive")
	}
	if cfg.AccrualHour < 0 || cfg.AccrualHour > 23 {
		return nil, fmt.Errorf("ACCRUAL_HOUR must be between 0 and 23")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
