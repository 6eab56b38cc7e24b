package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	appkey "github.com/koppalanaveenkumar/ai-guardrails/pkg/app/apikey"
	appaudit "github.com/koppalanaveenkumar/ai-guardrails/pkg/app/audit"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/app/events"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/config"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/guardrail"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/guardrail/injection"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/guardrail/pii"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/guardrail/toxicity"
	handlers "github.com/koppalanaveenkumar/ai-guardrails/pkg/handlers/http"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/database"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/embedding"
	openaiembedding "github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/embedding/openai"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/httpx"
	infraLogger "github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/logger"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/ratelimiter"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/repository"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/infra/webhook"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/middleware"
	"github.com/koppalanaveenkumar/ai-guardrails/pkg/server"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("failed to close database")
		}
	}()

	httpClient := &fasthttp.Client{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// repository
	apiKeyRepository := repository.NewApiKeyRepository(db.DB)
	auditLogRepository := repository.NewAuditLogRepository(db.DB)

	// service
	apiKeyFinder := appkey.NewFinder(apiKeyRepository, logger)
	apiKeyCreator := appkey.NewCreator(apiKeyRepository)
	auditRecorder := appaudit.NewRecorder(auditLogRepository, logger)
	auditQuery := appaudit.NewQuery(auditLogRepository)

	dispatcher := events.NewDispatcher(logger, 4, 1024)
	defer dispatcher.Shutdown()

	notifier := webhook.NewNotifier(httpClient, cfg.Webhook.URL, cfg.Webhook.Timeout, logger)

	// The semantic injection tier needs an embedding backend; without a
	// configured key the scanner degrades to its deterministic tier.
	var embeddingCreator embedding.Creator
	var breaker httpx.CircuitBreaker
	if cfg.Guardrail.OpenAIKey != "" {
		embeddingCreator = openaiembedding.NewEmbeddingService(httpClient, cfg.Guardrail.OpenAIKey, logger)
		breaker = httpx.NewCircuitBreaker("embedding", 30*time.Second, 5)
	} else {
		logger.Warn("no OpenAI key configured, semantic injection and toxicity detection are disabled")
	}

	injectionScanner := injection.NewScanner(embeddingCreator, breaker, cfg.Guardrail.SimilarityThreshold, logger)

	var toxicityClassifier toxicity.Classifier
	if cfg.Guardrail.OpenAIKey != "" {
		toxicityClassifier = toxicity.NewOpenAIClassifier(httpClient, cfg.Guardrail.OpenAIKey, logger)
	}
	toxicityScanner := toxicity.NewScanner(toxicityClassifier, cfg.Guardrail.ToxicityThreshold, logger)

	pipeline := guardrail.NewPipeline(
		pii.NewRedactor(logger),
		injectionScanner,
		toxicityScanner,
		dispatcher,
		auditRecorder,
		notifier,
		logger,
		guardrail.PipelineOpts{
			ModelTag:     cfg.Guardrail.ModelTag,
			StageTimeout: cfg.Guardrail.StageTimeout,
		},
	)

	limiter := buildRateLimiter(cfg, logger)

	// middleware
	middlewareTransport := &middleware.Transport{
		AuthMiddleware:      middleware.NewAuthMiddleware(logger, apiKeyFinder),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(logger, limiter),
		MetricsMiddleware:   middleware.NewMetricsMiddleware(logger),
	}

	// Handler Transport
	handlerTransport := handlers.HandlerTransport{
		GuardHandler: handlers.NewGuardHandler(logger, pipeline),

		ListAuditLogsHandler:  handlers.NewListAuditLogsHandler(logger, auditQuery),
		PruneAuditLogsHandler: handlers.NewPruneAuditLogsHandler(logger, auditQuery),
		AuditStatsHandler:     handlers.NewAuditStatsHandler(logger, auditQuery),

		CreateAPIKeyHandler: handlers.NewCreateAPIKeyHandler(logger, apiKeyCreator),
		ListAPIKeysHandler:  handlers.NewListAPIKeysHandler(logger, apiKeyRepository),
		DeleteAPIKeyHandler: handlers.NewDeleteAPIKeyHandler(logger, apiKeyRepository),
	}

	srv := server.NewGatewayServer(server.GatewayServerDI{
		Config:              cfg,
		Logger:              logger,
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

// buildRateLimiter prefers the redis sliding window so limits hold across
// replicas; the in-process limiter is the single-node fallback.
func buildRateLimiter(cfg *config.Config, logger *logrus.Logger) ratelimiter.Limiter {
	limit := cfg.Guardrail.RateLimit.Limit
	window := cfg.Guardrail.RateLimit.Window

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis unavailable, falling back to in-memory rate limiting: %v", err)
			return ratelimiter.NewMemoryLimiter(limit, window, nil)
		}
		return ratelimiter.NewRedisLimiter(client, limit, window, nil)
	}

	return ratelimiter.NewMemoryLimiter(limit, window, nil)
}
