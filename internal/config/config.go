package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gqlgateway/internal/platform/astronomy"
	"gqlgateway/internal/platform/satellite"
	"gqlgateway/internal/validation"

	"github.com/joho/godotenv"
)

// DemoAPIKey is NASA's shared, heavily rate limited key.
const DemoAPIKey = "DEMO_KEY"

type Config struct {
	Addr string `validate:"required"`

	NASAAPIKey       string        `validate:"required"`
	SatelliteBaseURL string        `validate:"required,url"`
	NASABaseURL      string        `validate:"required,url"`
	UpstreamTimeout  time.Duration `validate:"gt=0"`
	UpstreamRPS      float64       `validate:"gte=0"`
	UserAgent        string        `validate:"required"`

	// CatalogDSN, when set, loads the catalog from Postgres instead of the
	// built-in fixtures.
	CatalogDSN string

	CORSAllowedOrigins []string
	RateLimitRPS       float64 `validate:"gt=0"`
	RateLimitBurst     int     `validate:"gt=0"`
	MaxBodyBytes       int64   `validate:"gt=0"`
	EnableHSTS         bool
}

// LoadEnvFiles reads .env and .env.local into the process environment.
func LoadEnvFiles() {
	// Do not override environment provided by the runtime (e.g. Docker).
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Addr:             getEnv("APP_ADDR", ":4000"),
		NASAAPIKey:       getEnv("NASA_API_KEY", DemoAPIKey),
		SatelliteBaseURL: getEnv("SATELLITE_BASE_URL", satellite.DefaultBaseURL),
		NASABaseURL:      getEnv("NASA_BASE_URL", astronomy.DefaultBaseURL),
		UserAgent:        getEnv("USER_AGENT", "gqlgateway/1.0"),
		CatalogDSN:       os.Getenv("CATALOG_DSN"),
	}

	var err error
	if cfg.UpstreamTimeout, err = getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.UpstreamRPS, err = getEnvFloat("UPSTREAM_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 20); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 40); err != nil {
		return Config{}, err
	}
	maxBody, err := getEnvInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.EnableHSTS, err = getEnvBool("ENABLE_HSTS", false); err != nil {
		return Config{}, err
	}
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	if err := validation.Join(validation.ValidateStruct(cfg)); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if cfg.NASAAPIKey == DemoAPIKey {
		log.Printf("NASA_API_KEY not set, using %s (rate limited)", DemoAPIKey)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
