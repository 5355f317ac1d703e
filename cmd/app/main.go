package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"hunty_backend/internal/api"
	"hunty_backend/internal/notify"
	"hunty_backend/internal/repository"
	"hunty_backend/internal/service"
	"hunty_backend/internal/stellar"
	"hunty_backend/pkg/auth"
	"hunty_backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	notifier, err := notify.NewTelegramNotifier(cfg.TelegramAuth.TelegramBotToken)
	if err != nil {
		zapLogger.Fatal("Failed to initialize notifier", zap.Error(err))
	}

	walletClient := stellar.NewClient(cfg.Stellar)
	eventHub := api.NewEventHub()

	huntService := service.NewHuntService(repo, eventHub, cfg.Rewards.DefaultCluePoints)
	settlementService := service.NewSettlementService(repo, repo, repo, walletClient, walletClient, eventHub, notifier)
	progressService := service.NewProgressService(repo, repo, settlementService, eventHub, notifier)

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")
	api.NewHuntRoutes(a, huntService, telegramAuth)
	api.NewProgressRoutes(a, progressService, settlementService, telegramAuth)
	api.NewEventRoutes(a, eventHub, telegramAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
