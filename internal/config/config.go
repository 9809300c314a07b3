package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Sessions
	JWTSecret     string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool

	// Admin
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	// Logging
	LogLevel         string
	LogRetentionDays int

	// Events
	RabbitMQURL      string
	EntryEventsQueue string
}

var defaults = map[string]any{
	"db_host":            "localhost",
	"db_port":            "5432",
	"db_user":            "postgres",
	"db_password":        "",
	"db_name":            "caltrack",
	"db_sslmode":         "disable",
	"jwt_secret":         "",
	"session_ttl":        "168h",
	"session_cookie":     "caltrack_session",
	"cookie_secure":      false,
	"admin_emails":       "",
	"port":               "8080",
	"cors_origins":       "*",
	"app_env":            "development",
	"sentry_dsn":         "",
	"log_level":          "info",
	"log_retention_days": 30,
	"rabbitmq_url":       "",
	"entry_events_queue": "caltrack.entries",
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty path looks for
// caltrack.yaml in the working directory and ignores it when absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("caltrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return &Config{
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),

		JWTSecret:     v.GetString("jwt_secret"),
		SessionTTL:    parseDuration(v.GetString("session_ttl")),
		SessionCookie: v.GetString("session_cookie"),
		CookieSecure:  v.GetBool("cookie_secure"),

		AdminEmails: v.GetString("admin_emails"),

		Port:        v.GetString("port"),
		CORSOrigins: v.GetString("cors_origins"),
		AppEnv:      v.GetString("app_env"),
		SentryDSN:   v.GetString("sentry_dsn"),

		LogLevel:         v.GetString("log_level"),
		LogRetentionDays: v.GetInt("log_retention_days"),

		RabbitMQURL:      v.GetString("rabbitmq_url"),
		EntryEventsQueue: v.GetString("entry_events_queue"),
	}, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate(needDB bool) error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if needDB && c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AdminEmailList returns ADMIN_EMAILS split on commas, trimmed and lower-cased.
func (c *Config) AdminEmailList() []string {
	if c.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}
