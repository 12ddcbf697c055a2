package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

// MaxAPIAttempts bounds API_MAX_ATTEMPTS.
const MaxAPIAttempts = 10

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	ServerPort string
	AppEnv     string
	LogLevel   string
	Store      StoreConfig
	DB         DBConfig
	API        APIConfig
	Cognito    CognitoConfig

	parseErrs []error
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if err := errors.Join(c.parseErrs...); err != nil {
		return err
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}

	switch c.Store.Driver {
	case StoreMemory, StorePostgres:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: must be one of memory, sqlite, postgres", c.Store.Driver)
	}
	if c.Store.Key == "" {
		return fmt.Errorf("STORE_KEY must not be empty")
	}
	if c.Store.Driver == StoreMemory && c.AppEnv == "prod" {
		return fmt.Errorf("STORE_DRIVER memory must not be used in prod environment")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.API.MaxAttempts < 1 || c.API.MaxAttempts > MaxAPIAttempts {
		return fmt.Errorf("API_MAX_ATTEMPTS must be between 1 and %d, got %d", MaxAPIAttempts, c.API.MaxAttempts)
	}
	if c.API.BaseDelay <= 0 {
		return fmt.Errorf("API_BASE_DELAY must be positive, got %s", c.API.BaseDelay)
	}
	if c.API.CacheTTL < 0 {
		return fmt.Errorf("API_CACHE_TTL must not be negative, got %s", c.API.CacheTTL)
	}

	if c.Cognito.Enabled() {
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when Cognito credentials are set")
		}
		if c.Cognito.Username == "" || c.Cognito.Password == "" {
			return fmt.Errorf("COGNITO_USERNAME and COGNITO_PASSWORD are both required")
		}
	}
	return nil
}

type StoreConfig struct {
	Driver     string
	Key        string
	SQLitePath string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

// APIConfig configures the outbound REST client used for the users page.
type APIConfig struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	CacheTTL    time.Duration
}

// CognitoConfig supplies bearer tokens for the REST client when no static
// API_TOKEN is set.
type CognitoConfig struct {
	Region          string
	AppClientID     string
	AppClientSecret string
	Username        string
	Password        string
}

func (c CognitoConfig) Enabled() bool {
	return c.AppClientID != "" || c.Username != "" || c.Password != ""
}

func Load() Config {
	cfg := Config{
		ServerPort: envOrDefault("SERVER_PORT", "8080"),
		AppEnv:     envOrDefault("APP_ENV", "local"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Driver:     strings.ToLower(envOrDefault("STORE_DRIVER", StoreSQLite)),
			Key:        envOrDefault("STORE_KEY", "tasks"),
			SQLitePath: envOrDefault("SQLITE_PATH", "data/taskboard.db"),
		},
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "taskboard"),
			Password: envOrDefault("DB_PASSWORD", "taskboard"),
			Name:     envOrDefault("DB_NAME", "taskboard"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		API: APIConfig{
			BaseURL: envOrDefault("API_BASE_URL", "https://jsonplaceholder.typicode.com"),
			Token:   os.Getenv("API_TOKEN"),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
			Username:        os.Getenv("COGNITO_USERNAME"),
			Password:        os.Getenv("COGNITO_PASSWORD"),
		},
	}

	cfg.API.Timeout = cfg.duration("API_TIMEOUT", 5*time.Second)
	cfg.API.BaseDelay = cfg.duration("API_BASE_DELAY", time.Second)
	cfg.API.CacheTTL = cfg.duration("API_CACHE_TTL", 0)
	cfg.API.MaxAttempts = cfg.integer("API_MAX_ATTEMPTS", 3)
	return cfg
}

func (c *Config) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return d
}

func (c *Config) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return n
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
