package main

import (
	"context"
	"log"
	"time"

	"crm-notifications/internal/app"
	"crm-notifications/internal/config"
	"crm-notifications/internal/features/notification"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Sweep runs the notification retention cleanup once and stops the app
func Sweep(lc fx.Lifecycle, cleanup *notification.CleanupService, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
				defer cancel()

				logger.Info("Removing notifications past retention", zap.Time("cutoff", cleanup.Cutoff()))
				if _, err := cleanup.CleanupOldNotifications(ctx); err != nil {
					logger.Error("Cleanup failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fx.New(
		app.Core(cfg),
		fx.Invoke(Sweep),
	).Run()
}
