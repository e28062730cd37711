package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	Rates    RatesConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StripeConfig holds payment processor configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Enabled       bool
}

// RatesConfig is the charge rate table for post-trip billing. Every rate the
// calculators use lives here so tests can run against alternate schedules and
// operations can tune rates without a deploy.
type RatesConfig struct {
	DailyIncludedMiles float64 // miles included per rental day
	MileageOverageRate float64 // dollars per mile over the allowance
	FuelQuarterRate    float64 // dollars per quarter tank of deficit
	LateGraceMinutes   int     // minutes late before billing starts
	LateHourlyRate     float64 // dollars per chargeable hour
	LateDailyCap       float64 // max late charge per day (full or partial)
	DamageMinor        float64
	DamageModerate     float64
	DamageMajor        float64
	CleaningStandard   float64
	CleaningDeep       float64
	CleaningBiohazard  float64
	TaxRate            float64 // flat sales tax applied to the subtotal
	HostDeductible     float64 // fixed deductible when host insurance is primary
	PlatformDeductible float64 // policy deductible when the platform is primary
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "rentalplatform"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Enabled:       getEnvAsBool("STRIPE_ENABLED", true),
		},
		Rates: DefaultRates(),
	}

	cfg.Rates.loadOverrides()

	return cfg, nil
}

// DefaultRates returns the standard charge rate table.
func DefaultRates() RatesConfig {
	return RatesConfig{
		DailyIncludedMiles: 200,
		MileageOverageRate: 0.45,
		FuelQuarterRate:    75.00,
		LateGraceMinutes:   30,
		LateHourlyRate:     50.00,
		LateDailyCap:       300.00,
		DamageMinor:        250.00,
		DamageModerate:     500.00,
		DamageMajor:        1000.00,
		CleaningStandard:   50.00,
		CleaningDeep:       150.00,
		CleaningBiohazard:  500.00,
		TaxRate:            0.10,
		HostDeductible:     500.00,
		PlatformDeductible: 1000.00,
	}
}

func (r *RatesConfig) loadOverrides() {
	r.DailyIncludedMiles = getEnvAsFloat("RATES_DAILY_INCLUDED_MILES", r.DailyIncludedMiles)
	r.MileageOverageRate = getEnvAsFloat("RATES_MILEAGE_OVERAGE_RATE", r.MileageOverageRate)
	r.FuelQuarterRate = getEnvAsFloat("RATES_FUEL_QUARTER_RATE", r.FuelQuarterRate)
	r.LateGraceMinutes = getEnvAsInt("RATES_LATE_GRACE_MINUTES", r.LateGraceMinutes)
	r.LateHourlyRate = getEnvAsFloat("RATES_LATE_HOURLY_RATE", r.LateHourlyRate)
	r.LateDailyCap = getEnvAsFloat("RATES_LATE_DAILY_CAP", r.LateDailyCap)
	r.DamageMinor = getEnvAsFloat("RATES_DAMAGE_MINOR", r.DamageMinor)
	r.DamageModerate = getEnvAsFloat("RATES_DAMAGE_MODERATE", r.DamageModerate)
	r.DamageMajor = getEnvAsFloat("RATES_DAMAGE_MAJOR", r.DamageMajor)
	r.CleaningStandard = getEnvAsFloat("RATES_CLEANING_STANDARD", r.CleaningStandard)
	r.CleaningDeep = getEnvAsFloat("RATES_CLEANING_DEEP", r.CleaningDeep)
	r.CleaningBiohazard = getEnvAsFloat("RATES_CLEANING_BIOHAZARD", r.CleaningBiohazard)
	r.TaxRate = getEnvAsFloat("RATES_TAX_RATE", r.TaxRate)
	r.HostDeductible = getEnvAsFloat("RATES_HOST_DEDUCTIBLE", r.HostDeductible)
	r.PlatformDeductible = getEnvAsFloat("RATES_PLATFORM_DEDUCTIBLE", r.PlatformDeductible)
}

// FullTankRate is the flat cost of refilling from empty. Four quarters of
// deficit priced per quarter lands on the same number by construction.
func (r *RatesConfig) FullTankRate() float64 {
	return r.FuelQuarterRate * 4
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
