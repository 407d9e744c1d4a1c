package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/config"
	"github.com/kendall-kelly/campus-requests-api/controllers"
	"github.com/kendall-kelly/campus-requests-api/models"
	"github.com/kendall-kelly/campus-requests-api/routes"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Campus Requests API server...", zap.String("env", cfg.GoEnv))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := config.ConnectDatabase(cfg, logger); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed successfully")

	rdb, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to configure redis", zap.Error(err))
	}
	if rdb == nil {
		logger.Info("REDIS_URL not set, notifications will not be published")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	ctx := context.Background()
	receipts, err := services.NewReceiptStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}
	logger.Info("Receipt storage initialized", zap.String("backend", cfg.ReceiptStorage))

	ctl := newController(cfg, db, rdb, receipts, logger)
	router := routes.Setup(routes.Deps{
		Config:     cfg,
		Logger:     logger,
		Controller: ctl,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", zap.String("addr", "http://localhost"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

// newRedisClient returns nil when no URL is configured
func newRedisClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// newController wires the services behind the HTTP handlers
func newController(cfg *config.Config, db *gorm.DB, rdb *redis.Client, receipts services.ReceiptStore, logger *zap.Logger) *controllers.Controller {
	catalog := services.NewRequestCatalog(db, logger)
	notifications := services.NewNotificationService(db, rdb, logger)
	policy := services.NewRequestPolicy(cfg.MaxRequestCount)

	return &controllers.Controller{
		DB:            db,
		Users:         services.NewUserDirectory(db, logger),
		Catalog:       catalog,
		Requests:      services.NewRequestService(db, catalog, policy, receipts, notifications, logger),
		Query:         services.NewRequestQuery(db, receipts, logger),
		Notifications: notifications,
		Receipts:      receipts,
		UserInfo:      services.NewAuth0Service(cfg),
		Logger:        logger,
	}
}
