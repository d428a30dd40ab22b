package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "signup/pkg/platform/strings"
)

// DefaultCountries are offered when SIGNUP_COUNTRIES is unset.
var DefaultCountries = []string{"United States", "Canada", "India", "Australia", "United Kingdom"}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	RequestTimeout time.Duration
	Countries      []string
}

// Account configures the remote account service client.
type Account struct {
	// URL is the account service base URL. Empty selects the in-memory stand-in.
	URL     string
	Timeout time.Duration
}

// Session configures the browser session cookie.
type Session struct {
	SigningKey string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// RedisConfig configures the alert store. Empty URL keeps alerts in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AlertTTL     time.Duration
}

// Audit selects the audit sink: Kafka when brokers are set, else PostgreSQL
// when a database URL is set, else memory.
type Audit struct {
	DatabaseURL  string
	KafkaBrokers []string
	Topic        string
	BufferSize   int
}

// Log configures slog.
type Log struct {
	Level  slog.Level
	Format string
}

// Config is the whole service configuration.
type Config struct {
	Server  Server
	Account Account
	Session Session
	Redis   RedisConfig
	Audit   Audit
	Log     Log
}

// Load reads a .env file when present and then builds the configuration from
// the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var p parser
	cfg := Config{
		Server: Server{
			Addr:           envOr("SIGNUP_ADDR", ":8080"),
			RequestTimeout: p.duration("SIGNUP_REQUEST_TIMEOUT", 30*time.Second),
			Countries:      countries(os.Getenv("SIGNUP_COUNTRIES")),
		},
		Account: Account{
			URL:     strings.TrimRight(os.Getenv("ACCOUNT_SERVICE_URL"), "/"),
			Timeout: p.duration("ACCOUNT_SERVICE_TIMEOUT", 10*time.Second),
		},
		Session: Session{
			// Use a default for development - should be overridden in production
			SigningKey: envOr("SESSION_SIGNING_KEY", "dev-session-key-change-in-production"),
			CookieName: envOr("SESSION_COOKIE_NAME", "signup_session"),
			TTL:        p.duration("SESSION_TTL", 24*time.Hour),
			Secure:     os.Getenv("SESSION_COOKIE_SECURE") == "true",
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			AlertTTL:     p.duration("ALERT_TTL", 30*time.Minute),
		},
		Audit: Audit{
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			KafkaBrokers: pstrings.SplitAndTrim(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:        envOr("AUDIT_TOPIC", "signup.audit"),
			BufferSize:   p.integer("AUDIT_BUFFER_SIZE", 256),
		},
		Log: Log{
			Level:  p.level("LOG_LEVEL", slog.LevelInfo),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}
	if p.err != nil {
		return Config{}, p.err
	}
	return cfg, nil
}

func countries(raw string) []string {
	if list := pstrings.SplitAndTrim(raw, ","); len(list) > 0 {
		return list
	}
	return append([]string(nil), DefaultCountries...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser keeps the first parse error so FromEnv can report it once.
type parser struct {
	err error
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return d
}

func (p *parser) integer(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return n
}

func (p *parser) level(key string, fallback slog.Level) slog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return lvl
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
}
