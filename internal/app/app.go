// Package app groups the fx providers shared by the binaries.
package app

import (
	"context"
	"time"

	"crm-notifications/internal/config"
	"crm-notifications/internal/database"
	"crm-notifications/internal/features/account"
	"crm-notifications/internal/features/crossdomain"
	"crm-notifications/internal/features/notification"
	"crm-notifications/internal/features/sequence"
	"crm-notifications/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Storage provides the stores selected by cfg.StorageDriver
func Storage(cfg *config.Config) fx.Option {
	if cfg.UsesMemoryStorage() {
		return fx.Options(
			fx.Provide(
				func() *database.MongodbDB { return nil },
				notification.NewMemoryStore,
				func(s *notification.MemoryStore) notification.RepositoryFactory { return s.Factory() },
				sequence.NewMemoryStore,
				func(s *sequence.MemoryStore) sequence.RepositoryFactory { return s.Factory() },
				fx.Annotate(account.NewMemoryAccountRepository, fx.As(new(account.AccountRepository))),
			),
		)
	}
	return fx.Options(
		fx.Provide(
			database.NewDatabase,
			notification.NewMongoStore,
			func(s *notification.MongoStore) notification.RepositoryFactory { return s.Factory() },
			sequence.NewSequenceRepositoryFactory,
			account.NewAccountRepository,
		),
		fx.Invoke(InitializeIndexes),
	)
}

// Core provides logging and the notification pipeline on top of Storage
func Core(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		Storage(cfg),
		fx.Provide(
			logger.NewLogger,
			notification.NewHub,
			NewDependencies,
			crossdomain.NewSubscriber,
			notification.NewNotificationService,
			func(repositories notification.RepositoryFactory, logger *zap.Logger) *notification.CleanupService {
				return notification.NewCleanupService(repositories, cfg.RetentionDays, logger)
			},
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func NewDependencies(
	notifications notification.RepositoryFactory,
	sequences sequence.RepositoryFactory,
	logger *zap.Logger,
	hub *notification.Hub,
) crossdomain.Dependencies {
	return crossdomain.Dependencies{
		Notifications: notifications,
		Sequences:     sequences,
		Logger:        logger,
		Publisher:     hub,
	}
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, store *notification.MongoStore, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := store.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure notification indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}
