package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/cart"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/clients"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/events"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/favorites"
	h "github.com/BaoPhun/TreeStore-CustomerWeb/internal/http"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/promotion"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/store"
	"github.com/BaoPhun/TreeStore-CustomerWeb/pkg/metrics"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	BackendBaseURL  string
	KafkaBrokers    []string
	SettlementRate  decimal.Decimal
	Currency        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	rate, err := decimal.NewFromString(getEnv("SETTLEMENT_RATE", "23000"))
	if err != nil {
		log.Fatalf("invalid SETTLEMENT_RATE: %v", err)
	}

	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "http://localhost:5151"),
		KafkaBrokers:    brokers,
		SettlementRate:  rate,
		Currency:        getEnv("CURRENCY", "VND"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	engine := cart.NewEngine(store.NewRedisStore(redisClient))

	backend, err := clients.New("backend", cfg.BackendBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	if err != nil {
		log.Fatalf("Failed to configure backend client: %v", err)
	}
	catalog := clients.NewCatalogClient(backend)
	reconciler := favorites.NewReconciler(clients.NewFavoritesClient(backend))
	evaluator := promotion.NewEvaluator(clients.NewPromotionClient(backend))

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	serverMetrics := metrics.NewServerMetrics("customer_web")
	engine.Subscribe(func(c domain.Cart) {
		serverMetrics.CartItems.Set(float64(c.Count()))
		log.Printf("cart changed: %d items", c.Count())
	})

	router := h.NewRouter(h.RouterConfig{
		Products:  h.NewProductHandler(catalog, reconciler, cfg.RequestTimeout),
		Favorites: h.NewFavoritesHandler(catalog, reconciler, cfg.RequestTimeout),
		Cart:      h.NewCartHandler(engine, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(h.CheckoutDeps{
			Engine:         engine,
			Evaluator:      evaluator,
			Orders:         clients.NewOrderClient(backend),
			Publisher:      publisher,
			SettlementRate: cfg.SettlementRate,
			Currency:       cfg.Currency,
		}, cfg.RequestTimeout),
		Metrics:        serverMetrics,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
}
