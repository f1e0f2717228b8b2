package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/wallet-service/internal/command"
	"github.com/eaglebank/wallet-service/internal/config"
	"github.com/eaglebank/wallet-service/internal/events"
	"github.com/eaglebank/wallet-service/internal/handler"
	"github.com/eaglebank/wallet-service/internal/logging"
	"github.com/eaglebank/wallet-service/internal/mailer"
	"github.com/eaglebank/wallet-service/internal/metrics"
	"github.com/eaglebank/wallet-service/internal/middleware"
	"github.com/eaglebank/wallet-service/internal/migrations"
	"github.com/eaglebank/wallet-service/internal/models"
	"github.com/eaglebank/wallet-service/internal/query"
	redisClient "github.com/eaglebank/wallet-service/internal/redis"
	"github.com/eaglebank/wallet-service/internal/repository"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection (write store)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	if cfg.RunMigrations {
		if err := migrations.Up(db); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
		logger.Info("database migrations applied")
	}

	// Redis connection (profile cache + event streaming)
	redis, err := redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)
	profileCache := redisClient.NewViewCache[models.ProfileSnapshot](redis.Client, cfg.ProfileCacheTTL, component(logger, "profile-cache"))

	identityRepo := repository.NewIdentityRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	profileRepo := repository.NewProfileReadRepository(db, profileCache)

	commandSvc := command.NewWalletCommandService(
		identityRepo,
		accountRepo,
		transactionRepo,
		profileRepo,
		publisher,
		mailer.NewLogMailer(component(logger, "mailer")),
		cfg.OwnerEmail,
		component(logger, "commands"),
	)
	querySvc := query.NewWalletQueryService(profileRepo, component(logger, "queries"))

	m := metrics.New()
	walletHandler := handler.NewWalletHandler(commandSvc, querySvc, m, component(logger, "handler"))

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.ErrorHandler(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/v1/wallet")
	if cfg.JWTSecret != "" {
		v1.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	} else {
		logger.Warn("JWT_SECRET not set; trusting ownerID from request bodies")
	}
	walletHandler.RegisterRoutes(v1)

	// Identity and account changes made elsewhere invalidate cached profiles.
	subscriptions := []struct {
		name    string
		stream  string
		handler events.Handler
	}{
		{"identity-subscriber", cfg.IdentityEventsStream, querySvc.HandleIdentityEvent},
		{"account-subscriber", cfg.AccountEventsStream, querySvc.HandleAccountEvent},
	}
	for _, sub := range subscriptions {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "wallet-service-group",
			Consumer: "wallet-consumer-1",
			Stream:   sub.stream,
			Handler:  sub.handler,
		}, component(logger, sub.name))
		go func(name string) {
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("subscriber stopped", zap.String("subscriber", name), zap.Error(err))
			}
		}(sub.name)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("wallet service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func component(logger *zap.Logger, name string) *zap.Logger {
	return logger.With(zap.String("component", name))
}
