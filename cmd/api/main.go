package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chat-gateway/internal/config"
	"chat-gateway/internal/db"
	internalhttp "chat-gateway/internal/http"
	"chat-gateway/internal/llm"
	"chat-gateway/internal/repository"
	"chat-gateway/internal/service"
	"chat-gateway/internal/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, relying on environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database ready")

	chatRepo := repository.NewPgChatRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	llmClient := llm.NewOpenAIClient(
		cfg.LLMBaseURL,
		cfg.LLMAPIKey,
		cfg.LLMModel,
		cfg.LLMHistoryLimit,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
		logger,
	)

	registry := ws.NewRegistry(logger)

	var limiter service.ChatRateLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting disabled", zap.Error(err))
		} else {
			limiter = service.NewRedisChatRateLimiter(
				rdb,
				time.Duration(cfg.ChatRateWindow)*time.Second,
				cfg.ChatRateMax,
			)
			logger.Info("redis rate limiting enabled", zap.String("addr", cfg.RedisAddr))
		}
		cancel()
	}

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, 15*time.Minute)
		logger.Info("jwt auth enabled for REST endpoints")
	}

	turns := service.NewTurnService(logger, chatRepo, messageRepo, llmClient, registry, limiter)

	chatHandler := internalhttp.NewChatHandler(logger, chatRepo, messageRepo, turns)
	wsHandler := internalhttp.NewWSHandler(logger, registry, chatRepo, turns)

	router := internalhttp.NewRouter(logger, chatHandler, wsHandler, registry, jwtSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
