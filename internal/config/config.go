package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	Auth       AuthConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Email      EmailConfig
	Redis      RedisConfig
	PDF        PDFConfig
	Portal     PortalConfig
	Booking    BookingConfig
	Reminders  RemindersConfig
	Agreements AgreementsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// AuthConfig holds social login settings. Social login is disabled when
// GoogleClientID is empty.
type AuthConfig struct {
	GoogleClientID string `mapstructure:"google_client_id"`
}

// S3Config holds AWS S3 settings for photos and rendered PDFs.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	MaxPhotoSizeMB int64  `mapstructure:"max_photo_size_mb"`
	PresignExpiry  int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// RedisConfig holds the connection used for the token blacklist. When
// Enabled is false the in-memory blacklist is used instead.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PDFConfig holds render queue and headless Chrome settings.
type PDFConfig struct {
	ChromeURL        string `mapstructure:"chrome_url"`
	RenderTimeoutSec int    `mapstructure:"render_timeout_secs"`
	PollIntervalSecs int    `mapstructure:"poll_interval_secs"`
	MaxRetries       int    `mapstructure:"max_retries"`
	Concurrency      int    `mapstructure:"concurrency"`
}

// PortalConfig holds the public customer portal settings.
type PortalConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// BookingConfig holds the working window used for availability sweeps.
type BookingConfig struct {
	DayStart     string `mapstructure:"day_start"`
	DayEnd       string `mapstructure:"day_end"`
	SlotStepMins int    `mapstructure:"slot_step_mins"`
	MinLeadMins  int    `mapstructure:"min_lead_mins"`
}

// RemindersConfig holds the appointment reminder worker settings.
type RemindersConfig struct {
	LeadTime     time.Duration `mapstructure:"lead_time"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// AgreementsConfig holds the agreement visit generation worker settings.
type AgreementsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// Load reads configuration from environment variables with the TAKLAGET_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TAKLAGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "taklaget")
	v.SetDefault("db.password", "taklaget_secret")
	v.SetDefault("db.name", "taklaget_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "taklaget-api")

	// Auth defaults
	v.SetDefault("auth.google_client_id", "")

	// S3 defaults
	v.SetDefault("s3.region", "eu-north-1")
	v.SetDefault("s3.bucket", "taklaget-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_photo_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-north-1")
	v.SetDefault("email.from_address", "noreply@taklaget.no")
	v.SetDefault("email.from_name", "Taklaget")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// PDF defaults
	v.SetDefault("pdf.chrome_url", "")
	v.SetDefault("pdf.render_timeout_secs", 60)
	v.SetDefault("pdf.poll_interval_secs", 10)
	v.SetDefault("pdf.max_retries", 3)
	v.SetDefault("pdf.concurrency", 2)

	// Portal defaults
	v.SetDefault("portal.base_url", "http://localhost:3000/portal")

	// Booking defaults
	v.SetDefault("booking.day_start", "07:00")
	v.SetDefault("booking.day_end", "17:00")
	v.SetDefault("booking.slot_step_mins", 30)
	v.SetDefault("booking.min_lead_mins", 60)

	// Reminder defaults
	v.SetDefault("reminders.lead_time", "24h")
	v.SetDefault("reminders.poll_interval", "10m")

	// Agreement worker defaults
	v.SetDefault("agreements.poll_interval", "24h")
	v.SetDefault("agreements.batch_size", 200)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "TAKLAGET_SERVER_PORT",
		"server.read_timeout":      "TAKLAGET_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "TAKLAGET_SERVER_WRITE_TIMEOUT",
		"server.environment":       "TAKLAGET_SERVER_ENVIRONMENT",
		"db.host":                  "TAKLAGET_DB_HOST",
		"db.port":                  "TAKLAGET_DB_PORT",
		"db.user":                  "TAKLAGET_DB_USER",
		"db.password":              "TAKLAGET_DB_PASSWORD",
		"db.name":                  "TAKLAGET_DB_NAME",
		"db.sslmode":               "TAKLAGET_DB_SSLMODE",
		"db.max_open":              "TAKLAGET_DB_MAX_OPEN",
		"db.max_idle":              "TAKLAGET_DB_MAX_IDLE",
		"jwt.secret":               "TAKLAGET_JWT_SECRET",
		"jwt.access_expiry":        "TAKLAGET_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":       "TAKLAGET_JWT_REFRESH_EXPIRY",
		"jwt.issuer":               "TAKLAGET_JWT_ISSUER",
		"auth.google_client_id":    "TAKLAGET_AUTH_GOOGLE_CLIENT_ID",
		"s3.region":                "TAKLAGET_S3_REGION",
		"s3.bucket":                "TAKLAGET_S3_BUCKET",
		"s3.endpoint":              "TAKLAGET_S3_ENDPOINT",
		"s3.access_key":            "TAKLAGET_S3_ACCESS_KEY",
		"s3.secret_key":            "TAKLAGET_S3_SECRET_KEY",
		"s3.max_photo_size_mb":     "TAKLAGET_S3_MAX_PHOTO_SIZE_MB",
		"s3.presign_expiry":        "TAKLAGET_S3_PRESIGN_EXPIRY",
		"log.level":                "TAKLAGET_LOG_LEVEL",
		"log.format":               "TAKLAGET_LOG_FORMAT",
		"cors.allowed_origins":     "TAKLAGET_CORS_ALLOWED_ORIGINS",
		"email.provider":           "TAKLAGET_EMAIL_PROVIDER",
		"email.region":             "TAKLAGET_EMAIL_REGION",
		"email.from_address":       "TAKLAGET_EMAIL_FROM_ADDRESS",
		"email.from_name":          "TAKLAGET_EMAIL_FROM_NAME",
		"email.frontend_url":       "TAKLAGET_EMAIL_FRONTEND_URL",
		"redis.enabled":            "TAKLAGET_REDIS_ENABLED",
		"redis.addr":               "TAKLAGET_REDIS_ADDR",
		"redis.password":           "TAKLAGET_REDIS_PASSWORD",
		"redis.db":                 "TAKLAGET_REDIS_DB",
		"pdf.chrome_url":           "TAKLAGET_PDF_CHROME_URL",
		"pdf.render_timeout_secs":  "TAKLAGET_PDF_RENDER_TIMEOUT_SECS",
		"pdf.poll_interval_secs":   "TAKLAGET_PDF_POLL_INTERVAL_SECS",
		"pdf.max_retries":          "TAKLAGET_PDF_MAX_RETRIES",
		"pdf.concurrency":          "TAKLAGET_PDF_CONCURRENCY",
		"portal.base_url":          "TAKLAGET_PORTAL_BASE_URL",
		"booking.day_start":        "TAKLAGET_BOOKING_DAY_START",
		"booking.day_end":          "TAKLAGET_BOOKING_DAY_END",
		"booking.slot_step_mins":   "TAKLAGET_BOOKING_SLOT_STEP_MINS",
		"booking.min_lead_mins":    "TAKLAGET_BOOKING_MIN_LEAD_MINS",
		"reminders.lead_time":      "TAKLAGET_REMINDERS_LEAD_TIME",
		"reminders.poll_interval":  "TAKLAGET_REMINDERS_POLL_INTERVAL",
		"agreements.poll_interval": "TAKLAGET_AGREEMENTS_POLL_INTERVAL",
		"agreements.batch_size":    "TAKLAGET_AGREEMENTS_BATCH_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TAKLAGET_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TAKLAGET_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.Auth = AuthConfig{
		GoogleClientID: v.GetString("auth.google_client_id"),
	}
	cfg.S3 = S3Config{
		Region:         v.GetString("s3.region"),
		Bucket:         v.GetString("s3.bucket"),
		Endpoint:       v.GetString("s3.endpoint"),
		AccessKey:      v.GetString("s3.access_key"),
		SecretKey:      v.GetString("s3.secret_key"),
		MaxPhotoSizeMB: v.GetInt64("s3.max_photo_size_mb"),
		PresignExpiry:  v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("redis.enabled"),
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.PDF = PDFConfig{
		ChromeURL:        v.GetString("pdf.chrome_url"),
		RenderTimeoutSec: v.GetInt("pdf.render_timeout_secs"),
		PollIntervalSecs: v.GetInt("pdf.poll_interval_secs"),
		MaxRetries:       v.GetInt("pdf.max_retries"),
		Concurrency:      v.GetInt("pdf.concurrency"),
	}
	cfg.Portal = PortalConfig{
		BaseURL: strings.TrimRight(v.GetString("portal.base_url"), "/"),
	}
	cfg.Booking = BookingConfig{
		DayStart:     v.GetString("booking.day_start"),
		DayEnd:       v.GetString("booking.day_end"),
		SlotStepMins: v.GetInt("booking.slot_step_mins"),
		MinLeadMins:  v.GetInt("booking.min_lead_mins"),
	}
	cfg.Reminders = RemindersConfig{
		LeadTime:     v.GetDuration("reminders.lead_time"),
		PollInterval: v.GetDuration("reminders.poll_interval"),
	}
	cfg.Agreements = AgreementsConfig{
		PollInterval: v.GetDuration("agreements.poll_interval"),
		BatchSize:    v.GetInt("agreements.batch_size"),
	}

	return cfg, nil
}
