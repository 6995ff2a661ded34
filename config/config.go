package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Motimate/extant-email/models"
	"github.com/Motimate/extant-email/utils"
	"github.com/Motimate/extant-email/verifier"
)

var AppConfig Config

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address" validate:"required_if=Enabled true"`
	Password string `json:"-"`
	DB       int    `json:"db" validate:"min=0"`
}

type Config struct {
	Environment string `json:"environment"`
	Host        string `json:"host" validate:"required"`
	Port        string `json:"port" validate:"required,numeric"`

	// Probe identity
	FromEmail          string        `json:"from_email" validate:"required,email"`
	HelloName          string        `json:"hello_name" validate:"required"`
	SMTPTimeout        time.Duration `json:"smtp_timeout" validate:"min=0"`
	SMTPPort           int           `json:"smtp_port" validate:"min=1,max=65535"`
	VendorAPIPreferred bool          `json:"vendor_api_preferred"`
	VendorAPIDomains   []string      `json:"vendor_api_domains"`
	SendGridAPIHost    string        `json:"sendgrid_api_host" validate:"omitempty,url"`
	SendGridAPIKey     string        `json:"-"`

	// Engine
	MaxAttempts            int      `json:"max_attempts" validate:"min=1,max=10"`
	ResultCacheSize        int      `json:"result_cache_size" validate:"min=1"`
	DNSServers             []string `json:"dns_servers"`
	ExtraDisposableDomains []string `json:"extra_disposable_domains"`
	TestMode               bool     `json:"test_mode"`

	// Observability
	LogLevel            string        `json:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat           string        `json:"log_format" validate:"oneof=text json"`
	SentryDSN           string        `json:"-"`
	CacheReportInterval time.Duration `json:"cache_report_interval" validate:"min=0"`

	// HTTP surface
	CORSAllowedOrigins []string      `json:"cors_allowed_origins"`
	RateLimitMax       int           `json:"rate_limit_max" validate:"min=0"`
	RateLimitWindow    time.Duration `json:"rate_limit_window"`
	Redis              RedisConfig   `json:"redis"`
}

func init() {
	// .env is optional
	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded .env file")
	}
}

// LoadConfig reads the environment into AppConfig.
func LoadConfig() error {
	cfg, err := New()
	if err != nil {
		return err
	}
	AppConfig = *cfg
	logConfig(cfg)
	return nil
}

// New reads and validates configuration from the environment.
func New() (*Config, error) {
	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8080"),

		FromEmail:          getEnv("FROM_EMAIL", "user@example.org"),
		HelloName:          getEnv("HELLO_NAME", defaultHelloName()),
		SMTPTimeout:        getEnvAsDuration("SMTP_TIMEOUT", 15*time.Second),
		SMTPPort:           getEnvAsInt("SMTP_PORT", 25),
		VendorAPIPreferred: getEnvAsBool("VENDOR_API_PREFERRED", true),
		VendorAPIDomains:   getEnvAsList("VENDOR_API_DOMAINS", []string{"yahoo.com", "ymail.com", "rocketmail.com"}),
		SendGridAPIHost:    getEnv("SENDGRID_API_HOST", "https://api.sendgrid.com"),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),

		MaxAttempts:            getEnvAsInt("MAX_ATTEMPTS", verifier.DefaultMaxAttempts),
		ResultCacheSize:        getEnvAsInt("RESULT_CACHE_SIZE", verifier.DefaultResultCacheSize),
		DNSServers:             getEnvAsList("DNS_SERVERS", nil),
		ExtraDisposableDomains: getEnvAsList("EXTRA_DISPOSABLE_DOMAINS", nil),
		TestMode:               getEnvAsBool("APP_TEST_MODE", false),

		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "text")),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		CacheReportInterval: getEnvAsDuration("CACHE_REPORT_INTERVAL", time.Minute),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 0),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// RequestOptions are the probe settings applied to every checked address.
func (c *Config) RequestOptions() models.RequestOptions {
	return models.RequestOptions{
		FromEmail:          c.FromEmail,
		HelloName:          c.HelloName,
		SMTPTimeout:        c.SMTPTimeout,
		VendorAPIPreferred: c.VendorAPIPreferred,
	}
}

// EngineConfig maps the configuration onto the verification engine.
func (c *Config) EngineConfig(log *logrus.Entry) verifier.EngineConfig {
	return verifier.EngineConfig{
		DNSServers:             c.DNSServers,
		SMTPPort:               c.SMTPPort,
		ResultCacheSize:        c.ResultCacheSize,
		TestMode:               c.TestMode,
		SendGridAPIHost:        c.SendGridAPIHost,
		SendGridAPIKey:         c.SendGridAPIKey,
		VendorDomains:          c.VendorAPIDomains,
		ExtraDisposableDomains: c.ExtraDisposableDomains,
		Log:                    log,
	}
}

// ConfigureLogger applies level and format to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func defaultHelloName() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		logrus.Warnf("invalid %s=%q, using default %d", key, valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		logrus.Warnf("invalid %s=%q, using default %t", key, valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		logrus.Warnf("invalid %s=%q, using default %s", key, valueStr, fallback)
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func logConfig(cfg *Config) {
	logrus.WithFields(logrus.Fields{
		"environment":       cfg.Environment,
		"addr":              cfg.Addr(),
		"from_email":        cfg.FromEmail,
		"hello_name":        cfg.HelloName,
		"smtp_timeout":      cfg.SMTPTimeout.String(),
		"max_attempts":      cfg.MaxAttempts,
		"result_cache_size": cfg.ResultCacheSize,
		"test_mode":         cfg.TestMode,
		"vendor_api":        cfg.SendGridAPIKey != "",
		"redis":             cfg.Redis.Enabled,
		"sentry":            cfg.SentryDSN != "",
	}).Info("Loaded configuration")
}
