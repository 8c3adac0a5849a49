package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	cartadapters "storefront/internal/cart/adapters"
	cartapp "storefront/internal/cart/application"
	cartinfra "storefront/internal/cart/infrastructure"
	orderadapters "storefront/internal/orders/adapters"
	orderapp "storefront/internal/orders/application"
	orderinfra "storefront/internal/orders/infrastructure"
	orderports "storefront/internal/orders/ports"
	reportadapters "storefront/internal/reports/adapters"
	reportapp "storefront/internal/reports/application"
	reportinfra "storefront/internal/reports/infrastructure"
	"storefront/pkg/config"
	"storefront/pkg/db"
	"storefront/pkg/events"
	"storefront/pkg/logger"
	"storefront/pkg/middleware"
	"storefront/pkg/rabbitmq"
	"storefront/pkg/redisconn"
)

func main() {
	// Money fields serialize as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting storefront service")

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		log.Fatal("invalid TAX_RATE: " + err.Error())
	}

	// Connect to database
	dbConn, err := db.NewConnection(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	log.Info("connected to database")

	// Repositories and migrations
	orderRepo := orderadapters.NewPostgresOrderRepository(dbConn)
	if err := orderRepo.Migrate(); err != nil {
		log.Fatal("failed to migrate orders: " + err.Error())
	}
	catalog := orderadapters.NewPostgresProductCatalog(dbConn)
	if err := catalog.Migrate(); err != nil {
		log.Fatal("failed to migrate products: " + err.Error())
	}

	// Connect to Redis for the session cart store
	redisClient, err := redisconn.NewClient(redisconn.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("failed to connect to redis: " + err.Error())
	}
	log.Info("connected to redis")

	// Connect to RabbitMQ (events are best-effort)
	var publisher orderports.EventPublisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
	} else {
		defer rabbitConn.Close()

		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create publisher: " + err.Error())
		} else {
			publisher = orderadapters.NewRabbitMQPublisher(pub, log)
		}
	}

	// Cart service
	cartStore := cartadapters.NewRedisCartStore(redisClient, cfg.CartTTL)
	cartCatalog := cartadapters.NewPostgresCatalogReader(dbConn)
	cartService := cartapp.NewCartService(cartStore, cartCatalog, log)

	// Order use case
	orderUseCase := orderapp.NewOrderUseCase(orderRepo, catalog, cartService, publisher, taxRate, log)

	// Reporting use case
	orderQuery := reportadapters.NewPostgresOrderQuery(dbConn)
	userDirectory := reportadapters.NewPostgresUserDirectory(dbConn)
	reportUseCase := reportapp.NewReportUseCase(orderQuery, userDirectory, log)

	// HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())
	router.Use(middleware.Identity())
	router.Use(middleware.Session())

	root := router.Group("/")
	cartinfra.NewHTTPHandler(cartService, taxRate).RegisterRoutes(root)
	orderinfra.NewHTTPHandler(orderUseCase).RegisterRoutes(root)

	admin := router.Group("/admin", middleware.RequireAdmin())
	reportinfra.NewHTTPHandler(reportUseCase).RegisterRoutes(admin)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error: " + err.Error())
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error: " + err.Error())
	}

	if err := redisClient.Close(); err != nil {
		log.Error("redis close error: " + err.Error())
	}

	log.Info("server stopped")
}
