package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/ai-book/backend/config"
	"github.com/pageza/ai-book/backend/internal/api"
	"github.com/pageza/ai-book/backend/internal/conversation"
	"github.com/pageza/ai-book/backend/internal/database"
	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/middleware"
	"github.com/pageza/ai-book/backend/internal/router"
	"github.com/pageza/ai-book/backend/internal/server"
	"github.com/pageza/ai-book/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.With("main")

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis is optional; without it sessions stay in process and nothing is rate limited
	var (
		redisClient *redis.Client
		redisPing   api.Pinger
		sessions    conversation.SessionStore
		limiter     *middleware.RateLimiter
	)
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()
		redisPing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		sessions = conversation.NewRedisStore(redisClient, cfg.SessionTTL)
		if cfg.RecsRateLimitPerHour > 0 {
			limiter = middleware.NewRecommendationRateLimiter(redisClient, cfg.RecsRateLimitPerHour)
		}
	} else {
		log.Warn().Msg("Redis not configured, using in-memory conversation sessions")
		sessions = conversation.NewMemoryStore(cfg.SessionTTL)
	}

	// Initialize services
	llm, err := service.NewLLMService(service.LLMConfig{
		BaseURL:     cfg.LLMAPIURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Timeout:     cfg.LLMTimeout,
		Temperature: cfg.LLMTemperature,
		AppURL:      cfg.LLMAppURL,
		AppName:     cfg.LLMAppName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create LLM client")
	}
	breaker := service.NewBreakerCompleter(llm, service.BreakerConfig{
		FailureThreshold: cfg.LLMBreakerFailures,
		OpenTimeout:      cfg.LLMBreakerTimeout,
	})
	extractor := service.NewExtractor(service.ExtractorOptions{
		DedupeTitles:   cfg.DedupeTitles,
		DisableDefault: cfg.DisableDefault,
	})
	recommendations := service.NewRecommendationService(breaker, extractor)
	profiles := service.NewProfileService(db)
	quizzes := service.NewQuizService(db)
	flow := conversation.NewFlow(sessions, recommendations, profiles, quizzes)
	if limiter != nil {
		// chat requests spend the same per-user budget as the HTTP endpoint
		flow.WithLimiter(limiter)
	}

	deps := router.Dependencies{
		Recommendations: recommendations,
		Profiles:        profiles,
		Quizzes:         quizzes,
		Conversation:    flow,
		Health: api.NewHealthHandler(
			func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
			redisPing,
			breaker,
		),
		RateLimiter: limiter,
		CORSOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.JWTSecret != "" {
		auth, err := service.NewAuthService(cfg.JWTSecret)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create auth service")
		}
		deps.Auth = auth
	} else {
		log.Warn().Msg("JWT_SECRET not set, API is unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(net.JoinHostPort(cfg.ServerHost, cfg.ServerPort), router.SetupRouter(deps), cfg.LLMTimeout)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
