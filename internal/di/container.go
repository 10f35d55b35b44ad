package di

import (
	"context"
	"fmt"

	"github.com/fanvault/user-service/internal/config"
	"github.com/fanvault/user-service/internal/handler"
	"github.com/fanvault/user-service/internal/repository"
	"github.com/fanvault/user-service/internal/service"
	"github.com/fanvault/user-service/internal/token"
	"github.com/fanvault/user-service/internal/worker"
	"github.com/fanvault/user-service/pkg/database"
	"github.com/fanvault/user-service/pkg/logger"
	"github.com/fanvault/user-service/pkg/redis"
)

// Container holds all dependencies for the user service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Cache *redis.Client

	// Repositories
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository

	// Services
	TokenService   token.Service
	SessionManager *service.SessionManager
	EventPublisher service.EventPublisher
	AuthService    service.AuthService

	// Workers
	CleanupWorker *worker.SessionCleanupWorker

	// Handlers
	HealthHandler *handler.HealthHandler
	AuthHandler   *handler.AuthHandler
}

// NewContainer wires the service graph from configuration and the
// already-connected infrastructure clients. The Redis client may be
// nil; token revocation then runs in degraded fail-open mode.
func NewContainer(ctx context.Context, cfg *config.Config, db *database.PostgresDB, cache *redis.Client) (*Container, error) {
	c := &Container{
		DB:    db,
		Cache: cache,
	}

	c.UserRepo = repository.NewPostgresUserRepository(db.Pool())
	c.SessionRepo = repository.NewPostgresSessionRepository(db.Pool())

	revocation := token.NewRevocationList(ctx, cache)
	c.TokenService = token.NewService(&token.Config{
		Secret:          cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	}, revocation)

	c.SessionManager = service.NewSessionManager(c.SessionRepo, c.TokenService, &service.SessionManagerConfig{
		MaxConcurrentSessions: cfg.Security.MaxConcurrentSessions,
		SessionTTL:            cfg.Security.SessionTTL,
	})

	if cfg.Kafka.Enabled {
		publisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
		c.EventPublisher = publisher
	} else {
		logger.Get().Warn("Kafka disabled, user events will not be published")
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	c.AuthService = service.NewAuthService(
		c.UserRepo,
		c.SessionManager,
		c.TokenService,
		c.EventPublisher,
		&service.AuthServiceConfig{
			BcryptCost:       cfg.Security.BcryptCost,
			MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
			LockoutDuration:  cfg.Security.LockoutDuration,
			AccessTokenTTL:   cfg.JWT.AccessTokenTTL,
		},
	)

	c.CleanupWorker = worker.NewSessionCleanupWorker(c.SessionRepo, &worker.SessionCleanupConfig{
		ScanInterval: cfg.Security.CleanupInterval,
	})

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Cache)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)

	return c, nil
}

// Close releases container-owned resources. Infrastructure clients
// passed into NewContainer are closed by their creator.
func (c *Container) Close() {
	if c.CleanupWorker != nil {
		c.CleanupWorker.Stop()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			logger.Get().Warn(fmt.Sprintf("Failed to close event publisher: %v", err))
		}
	}
}
