// README: Config loader with env defaults for HTTP, storage, Redis, maps, broker and pricing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

type Config struct {
	HTTP struct {
		Addr      string
		AccessKey string
		ListLimit int
	}
	Store struct {
		Driver   string
		BoltPath string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Maps struct {
		APIKey     string
		GeocodeTTL time.Duration
	}
	AMQP struct {
		URL      string
		Exchange string
	}
	Catalog struct {
		File string
	}
	Pricing struct {
		Preset string
	}
}

// Load reads CAMPD_* variables. Optional integrations (Redis, geocoder, broker) stay
// disabled while their variable is empty.
func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("CAMPD_HTTP_ADDR", ":8080")
	cfg.HTTP.AccessKey = os.Getenv("CAMPD_ACCESS_KEY")
	cfg.HTTP.ListLimit = envOrDefaultInt("CAMPD_LIST_LIMIT", 100)
	cfg.Store.Driver = strings.ToLower(envOrDefault("CAMPD_STORE", StoreBolt))
	cfg.Store.BoltPath = envOrDefault("CAMPD_BOLT_PATH", "data/campd.db")
	cfg.DB.DSN = os.Getenv("CAMPD_DB_DSN")
	cfg.Redis.Addr = os.Getenv("CAMPD_REDIS_ADDR")
	cfg.Maps.APIKey = os.Getenv("CAMPD_MAPS_API_KEY")
	cfg.Maps.GeocodeTTL = envOrDefaultDuration("CAMPD_GEOCODE_TTL", 24*time.Hour)
	cfg.AMQP.URL = os.Getenv("CAMPD_AMQP_URL")
	cfg.AMQP.Exchange = envOrDefault("CAMPD_AMQP_EXCHANGE", "campd.requests")
	cfg.Catalog.File = os.Getenv("CAMPD_CATALOG_FILE")
	cfg.Pricing.Preset = envOrDefault("CAMPD_PRICING_PRESET", "standard")

	switch cfg.Store.Driver {
	case StoreBolt:
	case StorePostgres:
		if cfg.DB.DSN == "" {
			return Config{}, fmt.Errorf("CAMPD_DB_DSN is required when CAMPD_STORE=%s", StorePostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown CAMPD_STORE %q", cfg.Store.Driver)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
