package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMigrationsPath  = "migrations/products"
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultCacheTTL      = 60 * time.Second
	defaultCacheTimeout  = 200 * time.Millisecond
	defaultCacheCapacity = 10000
)

type Products struct {
	DatabaseURL       string
	RabbitMQURL       string
	RedisURL          string
	HTTPAddr          string
	MigrationsPath    string
	LogLevel          zerolog.Level
	ShutdownTimeout   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
	ReadHeaderTimeout time.Duration
	Cache             Cache
}

// Cache configures both product caches. An empty RedisURL selects the
// in-process store.
type Cache struct {
	TTL                 time.Duration
	Timeout             time.Duration
	Capacity            int
	EvictSearchOnCreate bool
}

func LoadProducts() (Products, error) {
	cfg := Products{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		ShutdownTimeout:   defaultShutdownTimeout,
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBPingTimeout:     defaultDBPingTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	if cfg.DatabaseURL == "" {
		return Products{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RabbitMQURL == "" {
		return Products{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	var err error
	if cfg.LogLevel, err = getLogLevel(); err != nil {
		return Products{}, err
	}
	if cfg.Cache.TTL, err = getDuration("CACHE_TTL", defaultCacheTTL); err != nil {
		return Products{}, err
	}
	if cfg.Cache.Timeout, err = getDuration("CACHE_TIMEOUT", defaultCacheTimeout); err != nil {
		return Products{}, err
	}
	if cfg.Cache.Capacity, err = getInt("CACHE_CAPACITY", defaultCacheCapacity); err != nil {
		return Products{}, err
	}
	if cfg.Cache.EvictSearchOnCreate, err = getBool("CACHE_EVICT_SEARCH_ON_CREATE", false); err != nil {
		return Products{}, err
	}

	if cfg.Cache.TTL <= 0 {
		return Products{}, fmt.Errorf("CACHE_TTL must be positive")
	}
	if cfg.Cache.Capacity <= 0 {
		return Products{}, fmt.Errorf("CACHE_CAPACITY must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return v, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, raw)
	}
	return v, nil
}

func getLogLevel() (zerolog.Level, error) {
	raw := getEnv("LOG_LEVEL", defaultLogLevel)
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("LOG_LEVEL: invalid level %q", raw)
	}
	return level, nil
}
