package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	mongodb "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/config"
	"github.com/amoradev/amora-backend/internal/delivery/http"
	"github.com/amoradev/amora-backend/internal/delivery/http/handler"
	"github.com/amoradev/amora-backend/internal/delivery/http/middleware"
	"github.com/amoradev/amora-backend/internal/infrastructure/database"
	"github.com/amoradev/amora-backend/internal/infrastructure/gemini"
	"github.com/amoradev/amora-backend/internal/infrastructure/mq"
	"github.com/amoradev/amora-backend/internal/infrastructure/server"
	mongorepo "github.com/amoradev/amora-backend/internal/repository/mongo"
	pgrepo "github.com/amoradev/amora-backend/internal/repository/postgres"
	redisrepo "github.com/amoradev/amora-backend/internal/repository/redis"
	"github.com/amoradev/amora-backend/internal/transport"
	"github.com/amoradev/amora-backend/internal/usecase/dialogue"
	"github.com/amoradev/amora-backend/internal/usecase/dispatcher"
	"github.com/amoradev/amora-backend/internal/usecase/interaction"
	"github.com/amoradev/amora-backend/internal/usecase/ranking"
	"github.com/amoradev/amora-backend/internal/usecase/search"
	"github.com/amoradev/amora-backend/pkg/backoff"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Mongo     *mongodb.Database
	DB        *sqlx.DB
	Redis     *redis.Client
	Publisher *mq.Publisher
	Server    *server.Server
	Gemini    *gemini.Client
	Log       *zap.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, log *zap.Logger) (*Container, error) {
	// Initialize stores
	mongoDB, err := database.NewMongoDatabase(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mongo: %w", err)
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Optional side channels: the bot stays up without them.
	var publisher *mq.Publisher
	if cfg.Rabbit.URL != "" {
		publisher, err = mq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Warn("failed to initialize rabbitmq publisher, moderation events disabled", zap.Error(err))
			publisher = nil
		}
	}

	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(cfg.GeminiAPIKey)
		if err != nil {
			log.Warn("failed to initialize gemini client, icebreakers disabled", zap.Error(err))
			geminiClient = nil
		}
	}

	// Initialize repositories
	profileRepo := mongorepo.NewProfileRepository(mongoDB)
	archiveRepo := pgrepo.NewArchiveRepository(db)
	sessionRepo := redisrepo.NewSessionRepository(redisClient, cfg.Engine.DraftTTL, cfg.Engine.SearchTTL)
	limiter := redisrepo.NewLimiter(redisClient, cfg.Engine.Cooldown)

	// Outbound gateway with bounded retries
	var notifier transport.Notifier = transport.NewGatewayNotifier(cfg.Gateway.URL, cfg.Gateway.Token)
	notifier = transport.NewRetryingNotifier(notifier, backoff.Default, log)

	// Initialize use cases
	ranker := ranking.NewRanker(profileRepo, archiveRepo, log, ranking.Options{
		TopK:            cfg.Engine.TopK,
		MaxAgeGap:       cfg.Engine.MaxAgeGap,
		MinHobbyOverlap: cfg.Engine.MinHobbyOverlap,
		ResurfaceWindow: cfg.Engine.ResurfaceWindow,
	})

	dialogueSvc := dialogue.NewService(profileRepo, sessionRepo, archiveRepo, notifier, log, backoff.Default)
	searchSvc := search.NewService(profileRepo, sessionRepo, ranker, notifier, log, backoff.Default, cfg.Engine.ResurfaceWindow)

	var icebreaker interaction.Icebreaker
	if geminiClient != nil {
		icebreaker = geminiClient
	}
	var modPublisher interaction.ModerationPublisher
	if publisher != nil {
		modPublisher = publisher
	}

	interactionSvc := interaction.NewService(
		profileRepo,
		archiveRepo,
		searchSvc,
		notifier,
		icebreaker,
		modPublisher,
		log,
		backoff.Default,
		cfg.Engine.ReportThreshold,
		cfg.Gateway.AdminChatID,
	)

	disp := dispatcher.New(
		limiter,
		sessionRepo,
		profileRepo,
		dialogueSvc,
		searchSvc,
		interactionSvc,
		notifier,
		log,
	)

	// Initialize handlers and middleware
	eventHandler := handler.NewEventHandler(disp, log)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.GatewaySecret)

	// Initialize router
	router := http.NewRouter(eventHandler, authMiddleware)
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter, log)

	return &Container{
		Config:    cfg,
		Mongo:     mongoDB,
		DB:        db,
		Redis:     redisClient,
		Publisher: publisher,
		Server:    srv,
		Gemini:    geminiClient,
		Log:       log,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Log.Warn("error closing rabbitmq publisher", zap.Error(err))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("error closing redis", zap.Error(err))
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Mongo.Client().Disconnect(ctx); err != nil {
			c.Log.Warn("error closing mongo", zap.Error(err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
