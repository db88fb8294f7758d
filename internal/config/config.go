package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL          string
	LiveURL         string
	DBPath          string
	FamilyNamespace string
	Passphrase      string
	HTTPTimeout     time.Duration
	LogLevel        string
}

const (
	defaultAPIURL    = "http://localhost:8080/api"
	defaultDBPath    = "kidscoin.db"
	defaultNamespace = "@kidscoin"
	defaultTimeout   = 10 * time.Second
)

// Load reads configuration from the environment, after filling it from a
// .env file in the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:          strings.TrimRight(getenv("KIDSCOIN_API_URL", defaultAPIURL), "/"),
		DBPath:          getenv("KIDSCOIN_DB_PATH", defaultDBPath),
		FamilyNamespace: getenv("KIDSCOIN_FAMILY_NAMESPACE", defaultNamespace),
		Passphrase:      os.Getenv("KIDSCOIN_PASSPHRASE"),
		LogLevel:        getenv("KIDSCOIN_LOG_LEVEL", "info"),
		HTTPTimeout:     defaultTimeout,
	}

	if v := os.Getenv("KIDSCOIN_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("KIDSCOIN_HTTP_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("KIDSCOIN_HTTP_TIMEOUT: must be positive, got %s", v)
		}
		cfg.HTTPTimeout = d
	}

	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("KIDSCOIN_API_URL: %w", err)
	}

	cfg.LiveURL = os.Getenv("KIDSCOIN_LIVE_URL")
	if cfg.LiveURL == "" {
		live, err := LiveURLFor(cfg.APIURL)
		if err != nil {
			return nil, err
		}
		cfg.LiveURL = live
	}

	return cfg, nil
}

// LiveURLFor derives the live endpoint from the API URL: same host and
// path with a ws scheme and a /ws suffix.
func LiveURLFor(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("api url scheme %q: want http or https", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
