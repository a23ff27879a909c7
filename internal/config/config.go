// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Duration parses "10s", "5m" or a bare number of seconds.
type Duration time.Duration

// SetValue implements cleanenv.Setter.
func (d *Duration) SetValue(data string) error {
	v, err := parseDuration(data)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

// Server is the configuration of cmd/server and cmd/migrate.
type Server struct {
	Env      string `env:"ENV" env-default:"development"`
	Port     string `env:"PORT" env-default:"8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"INFO"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	// DatabaseServiceURL connects with the elevated role used for membership writes.
	DatabaseServiceURL string `env:"DATABASE_SERVICE_URL"`

	RedisURL     string   `env:"REDIS_URL"`
	PageCacheTTL Duration `env:"PAGE_CACHE_TTL" env-default:"5m"`

	SiteURL    string `env:"SITE_URL" env-default:"http://localhost:3000"`
	AppURL     string `env:"APP_URL" env-default:"http://localhost:3000"`
	BackendURL string `env:"BACKEND_URL" env-default:"http://localhost:8080"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	SessionTTL         Duration `env:"SESSION_TTL" env-default:"168h"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
}

// Production reports whether ENV is "production".
func (c Server) Production() bool { return c.Env == "production" }

// GitHubEnabled reports whether both GitHub OAuth credentials are set.
func (c Server) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Client is the configuration of the zippy CLI.
type Client struct {
	APIURL string `env:"ZIPPY_API_URL" env-default:"http://localhost:8080"`
	Token  string `env:"ZIPPY_TOKEN"`
}

// LoadDotEnv loads .env files if present. Variables already set win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// LoadServer reads the server configuration.
func LoadServer() (Server, error) {
	var cfg Server
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Server{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.DatabaseServiceURL == "" {
		cfg.DatabaseServiceURL = cfg.DatabaseURL
	}
	if cfg.SessionTTL <= 0 {
		return Server{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.RateLimitPerMinute <= 0 {
		return Server{}, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	return cfg, nil
}

// LoadClient reads the CLI configuration.
func LoadClient() (Client, error) {
	var cfg Client
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Client{}, fmt.Errorf("read env: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}
