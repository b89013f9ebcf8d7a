package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadProducts(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing DATABASE_URL",
			env:     map[string]string{"RABBITMQ_URL": "amqp://localhost"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "missing RABBITMQ_URL",
			env:     map[string]string{"DATABASE_URL": "postgres://localhost"},
			wantErr: "RABBITMQ_URL is required",
		},
		{
			name: "valid config with defaults",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"RABBITMQ_URL": "amqp://localhost",
			},
		},
		{
			name: "custom HTTP_ADDR overrides default",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"RABBITMQ_URL": "amqp://localhost",
				"HTTP_ADDR":    ":9090",
			},
		},
		{
			name: "invalid CACHE_TTL",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"RABBITMQ_URL": "amqp://localhost",
				"CACHE_TTL":    "soon",
			},
			wantErr: `CACHE_TTL: invalid duration "soon"`,
		},
		{
			name: "non-positive CACHE_TTL",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"RABBITMQ_URL": "amqp://localhost",
				"CACHE_TTL":    "0s",
			},
			wantErr: "CACHE_TTL must be positive",
		},
		{
			name: "invalid CACHE_CAPACITY",
			env: map[string]string{
				"DATABASE_URL":   "postgres://localhost/db",
				"RABBITMQ_URL":   "amqp://localhost",
				"CACHE_CAPACITY": "lots",
			},
			wantErr: `CACHE_CAPACITY: invalid integer "lots"`,
		},
		{
			name: "invalid CACHE_EVICT_SEARCH_ON_CREATE",
			env: map[string]string{
				"DATABASE_URL":                 "postgres://localhost/db",
				"RABBITMQ_URL":                 "amqp://localhost",
				"CACHE_EVICT_SEARCH_ON_CREATE": "maybe",
			},
			wantErr: `CACHE_EVICT_SEARCH_ON_CREATE: invalid boolean "maybe"`,
		},
		{
			name: "invalid LOG_LEVEL",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"RABBITMQ_URL": "amqp://localhost",
				"LOG_LEVEL":    "loud",
			},
			wantErr: `LOG_LEVEL: invalid level "loud"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadProducts()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tt.env["DATABASE_URL"] {
				t.Fatalf("want DatabaseURL %q, got %q", tt.env["DATABASE_URL"], cfg.DatabaseURL)
			}
			if cfg.RabbitMQURL != tt.env["RABBITMQ_URL"] {
				t.Fatalf("want RabbitMQURL %q, got %q", tt.env["RABBITMQ_URL"], cfg.RabbitMQURL)
			}
			if addr, ok := tt.env["HTTP_ADDR"]; ok && cfg.HTTPAddr != addr {
				t.Fatalf("want HTTPAddr %q, got %q", addr, cfg.HTTPAddr)
			}
			if _, ok := tt.env["HTTP_ADDR"]; !ok && cfg.HTTPAddr != defaultHTTPAddr {
				t.Fatalf("want default HTTPAddr %q, got %q", defaultHTTPAddr, cfg.HTTPAddr)
			}
			if cfg.DBMaxOpenConns != defaultDBMaxOpenConns {
				t.Fatalf("want DBMaxOpenConns %d, got %d", defaultDBMaxOpenConns, cfg.DBMaxOpenConns)
			}
			if cfg.ShutdownTimeout != defaultShutdownTimeout {
				t.Fatalf("want ShutdownTimeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
			}
			if cfg.Cache.TTL != defaultCacheTTL {
				t.Fatalf("want Cache.TTL %v, got %v", defaultCacheTTL, cfg.Cache.TTL)
			}
			if cfg.LogLevel != zerolog.InfoLevel {
				t.Fatalf("want info log level, got %v", cfg.LogLevel)
			}
		})
	}
}

func TestLoadProducts_CacheOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CACHE_TIMEOUT", "50ms")
	t.Setenv("CACHE_CAPACITY", "500")
	t.Setenv("CACHE_EVICT_SEARCH_ON_CREATE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadProducts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Cache{
		TTL:                 30 * time.Second,
		Timeout:             50 * time.Millisecond,
		Capacity:            500,
		EvictSearchOnCreate: true,
	}
	if cfg.Cache != want {
		t.Fatalf("want cache %+v, got %+v", want, cfg.Cache)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("want RedisURL set, got %q", cfg.RedisURL)
	}
	if cfg.LogLevel != zerolog.DebugLevel {
		t.Fatalf("want debug level, got %v", cfg.LogLevel)
	}
}

func TestLoadNotifications(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		wantErr       string
		wantThreshold int64
	}{
		{
			name:    "missing RABBITMQ_URL",
			env:     map[string]string{},
			wantErr: "RABBITMQ_URL is required",
		},
		{
			name:          "valid config",
			env:           map[string]string{"RABBITMQ_URL": "amqp://localhost"},
			wantThreshold: defaultLowStockThreshold,
		},
		{
			name:          "low stock threshold override",
			env:           map[string]string{"RABBITMQ_URL": "amqp://localhost", "LOW_STOCK_THRESHOLD": "0"},
			wantThreshold: 0,
		},
		{
			name:    "invalid low stock threshold",
			env:     map[string]string{"RABBITMQ_URL": "amqp://localhost", "LOW_STOCK_THRESHOLD": "few"},
			wantErr: `LOW_STOCK_THRESHOLD: invalid integer "few"`,
		},
		{
			name:    "negative low stock threshold",
			env:     map[string]string{"RABBITMQ_URL": "amqp://localhost", "LOW_STOCK_THRESHOLD": "-1"},
			wantErr: "LOW_STOCK_THRESHOLD must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadNotifications()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.RabbitMQURL != tt.env["RABBITMQ_URL"] {
				t.Fatalf("want RabbitMQURL %q, got %q", tt.env["RABBITMQ_URL"], cfg.RabbitMQURL)
			}
			if cfg.ShutdownTimeout != defaultShutdownTimeout {
				t.Fatalf("want ShutdownTimeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
			}
			if cfg.LowStockThreshold != tt.wantThreshold {
				t.Fatalf("want LowStockThreshold %d, got %d", tt.wantThreshold, cfg.LowStockThreshold)
			}
		})
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "RABBITMQ_URL", "REDIS_URL", "HTTP_ADDR", "MIGRATIONS_PATH", "LOG_LEVEL",
		"CACHE_TTL", "CACHE_TIMEOUT", "CACHE_CAPACITY", "CACHE_EVICT_SEARCH_ON_CREATE",
		"LOW_STOCK_THRESHOLD",
	} {
		if val, ok := os.LookupEnv(key); ok {
			t.Setenv(key, val)
		}
		os.Unsetenv(key)
	}
}
