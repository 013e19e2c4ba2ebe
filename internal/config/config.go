package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// PayrollConfig holds the constants used by period creation and pay calculation.
type PayrollConfig struct {
	DefaultWorkingDays int
	HoursPerDay        int
	OvertimeMultiplier string
	ExcludeWeekends    bool
}

type CronConfig struct {
	Enabled        bool
	PeriodInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll configuration
	defaultWorkingDays, err := strconv.Atoi(getEnv("PAYROLL_DEFAULT_WORKING_DAYS", "22"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_DEFAULT_WORKING_DAYS: %w", err)
	}
	hoursPerDay, err := strconv.Atoi(getEnv("PAYROLL_HOURS_PER_DAY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_HOURS_PER_DAY: %w", err)
	}
	excludeWeekends, err := strconv.ParseBool(getEnv("PAYROLL_EXCLUDE_WEEKENDS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_EXCLUDE_WEEKENDS: %w", err)
	}

	config.Payroll = PayrollConfig{
		DefaultWorkingDays: defaultWorkingDays,
		HoursPerDay:        hoursPerDay,
		OvertimeMultiplier: getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.5"),
		ExcludeWeekends:    excludeWeekends,
	}

	// Cron configuration
	cronEnabled, err := strconv.ParseBool(getEnv("CRON_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_ENABLED: %w", err)
	}
	periodInterval, err := time.ParseDuration(getEnv("CRON_PERIOD_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_PERIOD_INTERVAL: %w", err)
	}

	config.Cron = CronConfig{
		Enabled:        cronEnabled,
		PeriodInterval: periodInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.DefaultWorkingDays <= 0 {
		return fmt.Errorf("PAYROLL_DEFAULT_WORKING_DAYS must be positive")
	}
	if c.Payroll.HoursPerDay <= 0 {
		return fmt.Errorf("PAYROLL_HOURS_PER_DAY must be positive")
	}
	if _, err := strconv.ParseFloat(c.Payroll.OvertimeMultiplier, 64); err != nil {
		return fmt.Errorf("PAYROLL_OVERTIME_MULTIPLIER must be a number")
	}
	if c.Cron.Enabled && c.Cron.PeriodInterval <= 0 {
		return fmt.Errorf("CRON_PERIOD_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
