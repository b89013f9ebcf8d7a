package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"product-catalog/internal/cache"
	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/products"
	producthttp "product-catalog/internal/products/http"
	"product-catalog/internal/products/messaging"
	"product-catalog/internal/products/repository"
	"product-catalog/internal/products/service"

	_ "product-catalog/docs"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const migrateSourcePrefix = "file://"

// @title        Product Catalog API
// @version      1.0
// @description  Product catalog with cached search and event notifications.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "products").Logger()

	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadProducts()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return 1
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogLevel > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("run migrations")
		return 1
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL, database.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		PingTimeout:     cfg.DBPingTimeout,
	})
	if err != nil {
		log.Error().Err(err).Msg("connect database")
		return 1
	}
	defer db.Close()

	store, closeStore, err := openCache(cfg)
	if err != nil {
		log.Error().Err(err).Msg("init cache")
		return 1
	}
	defer closeStore()

	rabbitConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Error().Err(err).Msg("connect rabbitmq")
		return 1
	}
	defer rabbitConn.Close()

	publisher, err := messaging.NewRabbitPublisher(rabbitConn, products.EventsQueue)
	if err != nil {
		log.Error().Err(err).Msg("init publisher")
		return 1
	}
	defer publisher.Close()

	metrics := service.NewMetrics()
	prometheus.MustRegister(metrics.Collectors()...)

	repo := repository.NewPostgres(db)
	svc := service.New(repo, store, publisher, log.Logger, metrics, service.Options{
		TTL:                 cfg.Cache.TTL,
		Timeout:             cfg.Cache.Timeout,
		EvictSearchOnCreate: cfg.Cache.EvictSearchOnCreate,
	})
	handler := producthttp.NewHandler(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(producthttp.RequestIDMiddleware())
	router.Use(producthttp.AccessLogMiddleware(log.Logger))
	producthttp.RegisterRoutes(router, handler, repo, store)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("products service started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return 1
	}
	log.Info().Msg("products service stopped")
	return 0
}

// openCache picks Redis when REDIS_URL is set and the in-process store otherwise.
func openCache(cfg config.Products) (cache.Store, func(), error) {
	if cfg.RedisURL == "" {
		store, err := cache.NewMemoryStore(cfg.Cache.Capacity)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Int("capacity", cfg.Cache.Capacity).Msg("using in-memory cache")
		return store, func() {}, nil
	}

	store, err := cache.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("using redis cache")
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}, nil
}

func runMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
