package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

// Placeholder secrets accepted outside production so a fresh checkout boots.
const (
	DevAccessSecret  = "dev_access_secret"
	DevRefreshSecret = "dev_refresh_secret"
)

type Config struct {
	// Database
	DatabaseURL      string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	DBConnectTimeout time.Duration

	// Tokens
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration

	// Server
	Port            string
	CORSOrigins     string
	AppEnv          string
	SentryDSN       string
	RateLimit       int
	AuthRateLimit   int
	DefaultPageSize int
	MaxPageSize     int

	// Logging
	LogRetention time.Duration
}

// LoadDotenv loads the first .env file found in the working directory or its
// parent. Variables already present in the environment win.
func LoadDotenv() string {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func Load() *Config {
	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "feed_db"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		DBConnectTimeout: parseDuration(getEnv("DB_CONNECT_TIMEOUT", "8s"), 8*time.Second),

		AccessSecret:  getEnv("ACCESS_TOKEN_SECRET", DevAccessSecret),
		RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", DevRefreshSecret),
		AccessExpiry:  parseDuration(getEnv("ACCESS_TOKEN_LIFE", "15m"), 15*time.Minute),
		RefreshExpiry: parseDuration(getEnv("REFRESH_TOKEN_LIFE", "168h"), 7*24*time.Hour),

		Port:            getEnv("PORT", "3001"),
		CORSOrigins:     getEnv("CORS_ORIGIN", "http://localhost:3000"),
		AppEnv:          getEnv("APP_ENV", "development"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		RateLimit:       parseInt(getEnv("RATE_LIMIT_PER_MIN", "120"), 120),
		AuthRateLimit:   parseInt(getEnv("AUTH_RATE_LIMIT_PER_MIN", "20"), 20),
		DefaultPageSize: parseInt(getEnv("DEFAULT_PAGE_SIZE", "20"), 20),
		MaxPageSize:     parseInt(getEnv("MAX_PAGE_SIZE", "100"), 100),

		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.IsProduction() && (c.AccessSecret == DevAccessSecret || c.RefreshSecret == DevRefreshSecret) {
		return errors.New("development token secrets are not allowed in production")
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		return errors.New("page sizes must satisfy 1 <= DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE")
	}
	return nil
}

// TokenConfig is the explicit signing configuration handed to the auth layer.
func (c *Config) TokenConfig() tokens.Config {
	return tokens.Config{
		AccessSecret:  []byte(c.AccessSecret),
		RefreshSecret: []byte(c.RefreshSecret),
		AccessTTL:     c.AccessExpiry,
		RefreshTTL:    c.RefreshExpiry,
	}
}

// DSN returns DATABASE_URL when set, otherwise a key=value string built from
// the DB_* settings. Empty settings are left out.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	parts := []string{}
	for _, kv := range [][2]string{
		{"host", c.DBHost},
		{"user", c.DBUser},
		{"password", c.DBPassword},
		{"dbname", c.DBName},
		{"port", c.DBPort},
		{"sslmode", c.DBSSLMode},
		{"TimeZone", "UTC"},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+dsnValue(kv[1]))
		}
	}
	return strings.Join(parts, " ")
}

func dsnValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
