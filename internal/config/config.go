package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	// APIKeyHash is the sha256 hex digest of the accepted API key.
	// Empty disables the auth middleware (local development only).
	APIKeyHash      string
	DefaultBranchID int64

	// SnowflakeNode distinguishes ID generators across replicas.
	SnowflakeNode int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Email EmailConfig

	Billing BillingConfig
}

// EmailConfig carries SMTP settings for reminder delivery.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// BillingConfig carries institute-wide billing policy.
type BillingConfig struct {
	// GSTRatePercent is the rate applied for each of CGST and SGST.
	GSTRatePercent   string
	ReminderDaysOut  int
	InstituteName    string
	InstituteAddress string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "coachdesk"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		APIKeyHash:      strings.TrimSpace(getenv("API_KEY_HASH", "")),
		DefaultBranchID: getenvInt64("DEFAULT_BRANCH", 0),
		SnowflakeNode:   getenvInt64("SNOWFLAKE_NODE", 1),

		DBType:            getenv("DB_TYPE", "sqlite"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBName:            getenv("DB_NAME", "coachdesk"),
		DBUser:            getenv("DB_USER", "coachdesk"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DB_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DB_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DB_CONN_MAX_IDLE_TIME", 60),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "billing@coachdesk.local"),
		},

		Billing: BillingConfig{
			GSTRatePercent:   getenv("GST_RATE_PERCENT", "9"),
			ReminderDaysOut:  getenvInt("REMINDER_DAYS_OUT", 3),
			InstituteName:    getenv("INSTITUTE_NAME", "CoachDesk Institute"),
			InstituteAddress: getenv("INSTITUTE_ADDRESS", ""),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := getenv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: invalid int for %s: %q", key, raw)
		return fallback
	}
	return value
}

func getenvInt64(key string, fallback int64) int64 {
	raw := getenv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("config: invalid int for %s: %q", key, raw)
		return fallback
	}
	return value
}
