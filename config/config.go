package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends selectable with STORE_DRIVER.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// ErrMissingJWTSecret is returned by Load when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// DefaultAllowedOrigins is the production CORS allow-list used when
// CORS_ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://localhost",
	"capacitor://localhost",
	"ionic://localhost",
	"http://localhost:8100",
	"http://localhost:4200",
	"http://localhost:5173",
	"http://localhost:3001",
	"http://localhost:5000",
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Environment    string   `yaml:"environment"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	// TrustedProxies may set X-Forwarded-For. Empty means the socket
	// address is always the client IP.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type StorageConfig struct {
	Driver         string `yaml:"driver"`
	DataDir        string `yaml:"data_dir"`
	SubmissionsDir string `yaml:"submissions_dir"`
	SQLitePath     string `yaml:"sqlite_path"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DebugSQL bool   `yaml:"debug_sql"`
}

type RateLimitConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

type SMTPConfig struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	User          string   `yaml:"user"`
	Password      string   `yaml:"password"`
	From          string   `yaml:"from"`
	SkipTLSVerify bool     `yaml:"skip_tls_verify"`
	NotifyTo      []string `yaml:"notify_to"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: 3002, Environment: "development", MaxBodyBytes: 10 << 10},
		Storage: StorageConfig{
			Driver:         DriverFile,
			DataDir:        "./data",
			SubmissionsDir: "./submissions",
			SQLitePath:     "./data/submissions.db",
		},
		Database:  DatabaseConfig{Host: "127.0.0.1", Port: 3306},
		RateLimit: RateLimitConfig{Max: 100, Window: 15 * time.Minute},
		SMTP:      SMTPConfig{Port: 587},
		Log:       LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, in that order of precedence (environment wins).
func Load(configFile string) (*Config, error) {
	c := defaults()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
	}

	envOverride(&c.Auth.JWTSecret, "JWT_SECRET")
	envOverride(&c.Server.Environment, "NODE_ENV")
	envOverride(&c.Server.Environment, "ENVIRONMENT")
	envOverrideList(&c.Server.AllowedOrigins, "CORS_ALLOWED_ORIGINS")
	envOverrideList(&c.Server.TrustedProxies, "TRUSTED_PROXIES")
	envOverride(&c.Storage.Driver, "STORE_DRIVER")
	envOverride(&c.Storage.DataDir, "DATA_DIR")
	envOverride(&c.Storage.SubmissionsDir, "SUBMISSIONS_DIR")
	envOverride(&c.Storage.SQLitePath, "SQLITE_PATH")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.Name, "DB_DATABASE")
	envOverride(&c.Database.User, "DB_USERNAME")
	envOverride(&c.Database.Password, "DB_PASSWORD")
	envOverride(&c.SMTP.Host, "SMTP_HOST")
	envOverride(&c.SMTP.User, "SMTP_USER")
	envOverride(&c.SMTP.Password, "SMTP_PASS")
	envOverride(&c.SMTP.From, "SMTP_FROM")
	envOverrideList(&c.SMTP.NotifyTo, "NOTIFY_TO")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")

	var errs []error
	errs = append(errs,
		envOverrideInt(&c.Server.Port, "PORT"),
		envOverrideInt64(&c.Server.MaxBodyBytes, "MAX_BODY_BYTES"),
		envOverrideInt(&c.Database.Port, "DB_PORT"),
		envOverrideBool(&c.Database.DebugSQL, "DEBUG_SQL"),
		envOverrideInt(&c.RateLimit.Max, "RATE_LIMIT_MAX"),
		envOverrideDuration(&c.RateLimit.Window, "RATE_LIMIT_WINDOW"),
		envOverrideInt(&c.SMTP.Port, "SMTP_PORT"),
		envOverrideBool(&c.SMTP.SkipTLSVerify, "SMTP_SKIP_TLS_VERIFY"),
		envOverrideInt(&c.Log.MaxSizeMB, "LOG_MAX_SIZE_MB"),
		envOverrideInt(&c.Log.MaxBackups, "LOG_MAX_BACKUPS"),
		envOverrideInt(&c.Log.MaxAgeDays, "LOG_MAX_AGE_DAYS"),
	)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Storage.Driver)
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit must be positive (max=%d window=%s)", c.RateLimit.Max, c.RateLimit.Window)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	for _, proxy := range c.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy)
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// IsProduction reports whether strict CORS and gin release mode apply.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Server.Environment), "production")
}

// Origins returns the CORS allow-list used in production.
func (c *Config) Origins() []string {
	if len(c.Server.AllowedOrigins) > 0 {
		return c.Server.AllowedOrigins
	}
	return DefaultAllowedOrigins
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func envOverrideInt(dst *int, key string) error {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

func envOverrideInt64(dst *int64, key string) error {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

func envOverrideBool(dst *bool, key string) error {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = b
	}
	return nil
}

func envOverrideDuration(dst *time.Duration, key string) error {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
	}
	return nil
}
