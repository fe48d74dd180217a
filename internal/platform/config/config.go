package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	StoreDriver    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Location is the business time zone used for human numbers and maturity dates.
	Location *time.Location

	BulkConcurrency            int
	BulkMaxItems               int
	EarlyWithdrawalPenaltyRate decimal.Decimal

	RateLimit          string // ulule formatted rate, e.g. "120-M"
	CORSAllowedOrigins []string

	NotificationWorkers   int
	NotificationQueueSize int
	MailSender            string
	GmailClientID         string
	GmailClientSecret     string
	GmailRefreshToken     string

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "koperasi-backend")
	v.SetDefault("TIMEZONE", "Asia/Jakarta")
	v.SetDefault("BULK_CONCURRENCY", 4)
	v.SetDefault("BULK_MAX_ITEMS", 100)
	v.SetDefault("EARLY_WITHDRAWAL_PENALTY_RATE", "0.02")
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_QUEUE_SIZE", 256)
	v.SetDefault("MAIL_SENDER", "")
	v.SetDefault("GMAIL_CLIENT_ID", "")
	v.SetDefault("GMAIL_CLIENT_SECRET", "")
	v.SetDefault("GMAIL_REFRESH_TOKEN", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:           v.GetString("PGSQL_URL"),
		StoreDriver:           strings.ToLower(v.GetString("STORE_DRIVER")),
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:        v.GetString("MIGRATIONS_PATH"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTIssuer:             v.GetString("JWT_ISSUER"),
		BulkConcurrency:       v.GetInt("BULK_CONCURRENCY"),
		BulkMaxItems:          v.GetInt("BULK_MAX_ITEMS"),
		RateLimit:             v.GetString("RATE_LIMIT"),
		NotificationWorkers:   v.GetInt("NOTIFICATION_WORKERS"),
		NotificationQueueSize: v.GetInt("NOTIFICATION_QUEUE_SIZE"),
		MailSender:            v.GetString("MAIL_SENDER"),
		GmailClientID:         v.GetString("GMAIL_CLIENT_ID"),
		GmailClientSecret:     v.GetString("GMAIL_CLIENT_SECRET"),
		GmailRefreshToken:     v.GetString("GMAIL_REFRESH_TOKEN"),
		PosthogAPIKey:         v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:       v.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.StoreDriver != StoreDriverMemory && cfg.StoreDriver != StoreDriverPostgres {
		log.Printf("Warning: unknown STORE_DRIVER '%s'. Defaulting to %s.\n", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	tz := v.GetString("TIMEZONE")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		// Jakarta has no DST, a fixed offset is exact when tzdata is unavailable.
		loc = time.FixedZone("WIB", 7*60*60)
		log.Printf("Warning: could not load TIMEZONE '%s' (%v). Using fixed UTC+7.\n", tz, err)
	}
	cfg.Location = loc

	rate, err := decimal.NewFromString(v.GetString("EARLY_WITHDRAWAL_PENALTY_RATE"))
	if err != nil || rate.IsNegative() {
		rate = decimal.RequireFromString("0.02")
		log.Printf("Warning: Invalid EARLY_WITHDRAWAL_PENALTY_RATE. Defaulting to %s.\n", rate.String())
	}
	cfg.EarlyWithdrawalPenaltyRate = rate

	if cfg.BulkConcurrency <= 0 {
		cfg.BulkConcurrency = 4
	}
	if cfg.BulkMaxItems <= 0 {
		cfg.BulkMaxItems = 100
	}
	if cfg.NotificationWorkers <= 0 {
		cfg.NotificationWorkers = 2
	}
	if cfg.NotificationQueueSize <= 0 {
		cfg.NotificationQueueSize = 256
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if cfg.GmailClientID == "" || cfg.GmailRefreshToken == "" {
		log.Println("Warning: Gmail credentials not set. Notifications will only be logged.")
	}

	return cfg, nil
}
