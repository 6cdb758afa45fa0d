package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/savoria/storefront/internal/cache"
	"github.com/savoria/storefront/internal/consumer"
	h "github.com/savoria/storefront/internal/http"
	"github.com/savoria/storefront/internal/notifier"
	"github.com/savoria/storefront/internal/publisher"
	"github.com/savoria/storefront/internal/repository"
	"github.com/savoria/storefront/internal/service"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	KafkaBrokers    []string
	WebhookURL      string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		WebhookURL:      getEnv("NOTIFY_WEBHOOK_URL", ""),
		AllowedOrigins:  strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
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

func postgresCredentials() *repository.Credentials {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}
	return &repository.Credentials{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              port,
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "storefront"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./migrations"),
	}
}

func main() {
	log.Println("storefront starting...")
	cfg := loadConfig()
	var wg sync.WaitGroup

	// Postgres holds orders, reservations and the outbox.
	creds := postgresCredentials()
	pgRepo, err := repository.NewPostgresRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgRepo.Close()

	if err := pgRepo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Mongo holds carts.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startupCancel()

	mongoDB, err := repository.ConnectMongoDB(startupCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to mongo: %v", err)
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
	}()

	cartRepo := repository.NewMongoCartRepository(mongoDB)
	if err := cartRepo.CreateIndexes(startupCtx); err != nil {
		log.Fatalf("Failed to create mongo indexes: %v", err)
	}

	// Redis fronts cart reads.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	cartCache := cache.NewRedisCache(redisClient)

	// Services
	cartSvc := service.NewCartService(cartRepo, cartCache)
	checkoutSvc := service.NewCheckoutService(cartSvc, pgRepo)
	orderSvc := service.NewOrderService(pgRepo)
	bookingSvc := service.NewBookingService(pgRepo)

	// Outbox poller ships order events to Kafka.
	poller := publisher.NewOutboxPoller(pgRepo, cfg.KafkaBrokers...)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(workerCtx)
	}()

	// Notification consumer forwards order events to the webhook.
	var notificationConsumer *consumer.NotificationConsumer
	if cfg.WebhookURL != "" {
		webhook := notifier.NewWebhookNotifier(cfg.WebhookURL)
		notificationConsumer = consumer.NewNotificationConsumer(webhook, cfg.KafkaBrokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			notificationConsumer.Run(workerCtx)
		}()
	} else {
		log.Println("NOTIFY_WEBHOOK_URL not set, notification consumer disabled")
	}

	// Handlers
	cartHandler := h.NewCartHandler(cartSvc, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(orderSvc, cfg.RequestTimeout)
	reservationsHandler := h.NewReservationsHandler(bookingSvc, cfg.RequestTimeout)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.HeaderAuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Patch("/{order_id}/status", ordersHandler.UpdateStatus)
			r.Post("/{order_id}/cancel", ordersHandler.CancelOrder)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", reservationsHandler.CreateReservation)
			r.Get("/", reservationsHandler.ListReservations)
			r.Post("/{reservation_id}/cancel", reservationsHandler.CancelReservation)
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-User-ID", "X-User-Role", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(corsHandler, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	workerCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("workers stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("workers didn't stop in time")
	}

	poller.Close()
	if notificationConsumer != nil {
		notificationConsumer.Close()
	}
	log.Println("storefront stopped")
}
