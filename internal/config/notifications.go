package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const defaultLowStockThreshold = 5

type Notifications struct {
	RabbitMQURL       string
	LogLevel          zerolog.Level
	ShutdownTimeout   time.Duration
	LowStockThreshold int64
}

func LoadNotifications() (Notifications, error) {
	cfg := Notifications{
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if cfg.RabbitMQURL == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	level, err := getLogLevel()
	if err != nil {
		return Notifications{}, err
	}
	cfg.LogLevel = level

	threshold, err := getInt("LOW_STOCK_THRESHOLD", defaultLowStockThreshold)
	if err != nil {
		return Notifications{}, err
	}
	if threshold < 0 {
		return Notifications{}, fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	cfg.LowStockThreshold = int64(threshold)

	return cfg, nil
}
