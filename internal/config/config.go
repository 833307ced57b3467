package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	Env         string
	LogLevel    string

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	ToggleMaxRetries int
	WriteRateLimit   float64
	WriteRateBurst   int

	ReconcileInterval  time.Duration
	WorkerPollInterval time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	dsn := getenv("DATABASE_URL", "")
	if dsn == "" {
		return Config{}, fmt.Errorf("missing env: DATABASE_URL")
	}

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          dsn,
		Env:                  getenv("APP_ENV", "development"),
		LogLevel:             strings.ToLower(getenv("LOG_LEVEL", "info")),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.ToggleMaxRetries, err = getInt("TOGGLE_MAX_RETRIES", 5, 1); err != nil {
		return Config{}, err
	}
	if cfg.WriteRateBurst, err = getInt("WRITE_RATE_BURST", 40, 0); err != nil {
		return Config{}, err
	}
	if cfg.WriteRateLimit, err = getFloat("WRITE_RATE_LIMIT", 20); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.WorkerPollInterval, err = getDuration("WORKER_POLL_INTERVAL", 800*time.Millisecond); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Production reports whether APP_ENV is "production".
func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// getInt parses key as an integer no smaller than floor.
func getInt(key string, def, floor int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}
