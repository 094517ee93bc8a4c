package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no upstream credential is configured.
var ErrMissingAPIKey = errors.New("WEATHERAPI_API_KEY is required")

type AppConfig struct {
	WeatherAPIKey     string
	WeatherAPIBaseURL string

	Host string
	Port string

	// UpstreamTimeout bounds a single forecast call to the provider.
	UpstreamTimeout time.Duration

	// Circuit breaker around the provider.
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration

	AccessLog       bool
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment with sensible defaults.
// A missing credential or malformed value fails fast.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	if cfg.WeatherAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg.WeatherAPIBaseURL = getenvDefault("WEATHERAPI_BASE_URL", "https://api.weatherapi.com/v1/forecast.json")
	if err := validateBaseURL(cfg.WeatherAPIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid WEATHERAPI_BASE_URL: %w", err)
	}

	cfg.Host = getenvDefault("HOST", "127.0.0.1")
	cfg.Port = getenvDefault("PORT", "8080")
	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	var err error
	if cfg.UpstreamTimeout, err = getenvDuration("UPSTREAM_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.BreakerOpenTimeout, err = getenvDuration("BREAKER_OPEN_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.BreakerMaxFailures = getenvInt("BREAKER_MAX_FAILURES", 5)
	if cfg.BreakerMaxFailures <= 0 {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES: must be positive")
	}

	cfg.AccessLog = getenvBool("ACCESS_LOG", false)

	return cfg, nil
}

// Addr is the host:port the server binds to.
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is empty")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
