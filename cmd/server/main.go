package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"insightform/internal/cache"
	"insightform/internal/config"
	"insightform/internal/logger"
	"insightform/internal/repository"
	"insightform/internal/service"
	"insightform/internal/transport/rest"
	"insightform/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	zl.Info("ai config",
		zap.String("reportModel", aiConfig.Models.Report),
		zap.String("suggestModel", aiConfig.Models.Suggest),
		zap.Bool("enabled", aiConfig.IsEnabled()),
	)
	if !aiConfig.IsEnabled() {
		zl.Warn("GEMINI_API_KEY not set, reports use the local summary")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zl.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		zl.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	zl.Info("connected to MongoDB", zap.String("db", cfg.MongoDB))

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(pingCtx, db); err != nil {
		zl.Fatal("failed to create indexes", zap.Error(err))
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		zl.Fatal("failed to ping Redis", zap.Error(err))
	}
	zl.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	// Initialize WebSocket hub
	wsHub := ws.NewHub(zl)
	defer wsHub.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepo(db)
	formRepo := repository.NewFormRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	reportRepo := repository.NewReportRepo(db)

	// Initialize caches
	chartCache := cache.NewChartCache(rdb, cfg.ChartCacheTTL)
	linkCache := cache.NewLinkCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	formSvc := service.NewFormService(formRepo, responseRepo, reportRepo, linkCache, chartCache, zl)
	responseSvc := service.NewResponseService(formSvc, responseRepo, chartCache, zl)
	aiSvc := service.NewAIService(aiConfig, zl)
	reportSvc := service.NewReportService(formSvc, responseRepo, reportRepo, chartCache, aiSvc, zl)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	formSvc.SetBroadcaster(wsHub)
	responseSvc.SetBroadcaster(wsHub)
	reportSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:        authSvc,
		FormService:        formSvc,
		ResponseService:    responseSvc,
		ReportService:      reportSvc,
		WSHub:              wsHub,
		Logger:             zl,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies:     cfg.TrustedProxies,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}
