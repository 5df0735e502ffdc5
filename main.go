package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/cart-checkout-service/common/logger"
	"github.com/example/cart-checkout-service/config"
	"github.com/example/cart-checkout-service/database"
	"github.com/example/cart-checkout-service/kafka"
	aws_pkg "github.com/example/cart-checkout-service/pkg/aws"
	"github.com/example/cart-checkout-service/routes"
	"github.com/example/cart-checkout-service/services"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Environment)
	defer logger.Sync()

	if err := database.ConnectWithConfig(cfg.MongoURI, cfg.MongoDB); err != nil {
		logger.Log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Log.Error("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	if err := database.EnsureIndexes(context.Background(), database.DB); err != nil {
		logger.Log.Fatal("failed to create indexes", zap.Error(err))
	}

	redisClient := database.NewRedisClient(cfg.RedisURL)

	producer := kafka.NewProducer([]string{cfg.KafkaBrokers}, cfg.KafkaTopic)
	defer producer.Close()

	var snsClient aws_pkg.SNSPublisher
	if cfg.SNSTopicARN != "" {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Fatal("failed to load AWS config", zap.Error(err))
		}
		snsClient = aws_pkg.NewSNSClient(awsCfg)
	}

	cartRepo := database.NewCartRepository(database.DB)
	userRepo := database.NewUserRepository(database.DB)
	productRepo := database.NewProductRepository(database.DB)
	txnRunner := database.NewTxnRunner(database.MongoClient)
	idemStore := database.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)

	service := services.NewCartService(
		cartRepo, userRepo, productRepo, txnRunner,
		producer, snsClient, cfg.SNSTopicARN, logger.Log,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterCartRoutes(router, service, idemStore, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("cart service is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("shutdown error", zap.Error(err))
	}
	logger.Log.Info("server shutdown complete")
}
