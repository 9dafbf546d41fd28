package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-api/config"
	"bakery-api/internal/api"
	"bakery-api/internal/auth"
	"bakery-api/internal/broker"
	"bakery-api/internal/mailer"
	"bakery-api/internal/redisclient"
	"bakery-api/internal/service"
	"bakery-api/internal/store"
	"bakery-api/internal/uploads"
	"bakery-api/internal/util"
	"bakery-api/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting bakery API", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer(cfg.Observ.ServiceName, cfg.Observ.JaegerEndpoint, cfg.Server.Env)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx)
	migrateCancel()
	if err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database connected")

	// The product cache is optional; without Redis every listing hits Postgres.
	var cache service.ProductCache
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ProductCacheTTL)
	if err != nil {
		logger.Warn("Redis unavailable, product cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cache = redisClient
		logger.Info("Redis connected")
	}

	var eventPublisher service.EventPublisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		eventPublisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	mail := mailer.New(cfg.Mail, util.Component("mailer"))

	files, err := uploads.NewStorage(cfg.Uploads, cfg.Server.PublicURL)
	if err != nil {
		logger.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	accountService := service.NewAccountService(db, tokens, files, mail, cfg.Mail.OperatorAddress)
	productService := service.NewProductService(db, cache, files)
	cartService := service.NewCartService(db, db)
	orderService := service.NewOrderService(db, db, db, cache, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var notificationWorker *worker.NotificationWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		notificationWorker = worker.NewNotificationWorker(consumer, mail, cfg.Mail.OperatorAddress)
		go func() {
			if err := notificationWorker.Start(workerCtx); err != nil {
				logger.Error("Notification worker stopped", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(accountService, productService, cartService, orderService, tokens)
	handler.AddReadinessCheck("database", db)
	if redisClient != nil {
		handler.AddReadinessCheck("redis", redisClient)
	}
	handler.SetupRoutes(router, api.RouterOptions{
		ServiceName: cfg.Observ.ServiceName,
		CORSOrigin:  cfg.Server.CORSOrigin,
		UploadsDir:  files.Dir(),
		UploadsPath: files.PublicPath(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if notificationWorker != nil {
		if err := notificationWorker.Stop(); err != nil {
			logger.Warn("Error stopping notification worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
