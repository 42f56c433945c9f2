package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupService removes notifications past the retention period
type CleanupService struct {
	repositories  RepositoryFactory
	retentionDays int
	logger        *zap.Logger

	scheduler *cron.Cron
	mu        sync.Mutex
}

func NewCleanupService(repositories RepositoryFactory, retentionDays int, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		repositories:  repositories,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Cutoff is the creation time below which notifications are removed
func (c *CleanupService) Cutoff() time.Time {
	return now().Add(-time.Duration(c.retentionDays) * 24 * time.Hour)
}

// CleanupOldNotifications deletes every notification older than the
// retention period. A non-positive retention disables it.
func (c *CleanupService) CleanupOldNotifications(ctx context.Context) (int64, error) {
	if c.retentionDays <= 0 {
		return 0, nil
	}
	startTime := time.Now()
	cutoff := c.Cutoff()

	deleted, err := c.repositories().DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		c.logger.Error("Error cleaning up old notifications", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}

	c.logger.Info("Notification cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
		zap.Duration("duration", time.Since(startTime)),
	)
	return deleted, nil
}

// Start schedules the cleanup on a standard cron spec
func (c *CleanupService) Start(schedule string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scheduler != nil {
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _ = c.CleanupOldNotifications(ctx)
	}); err != nil {
		return err
	}
	scheduler.Start()
	c.scheduler = scheduler

	c.logger.Info("Notification cleanup scheduled",
		zap.String("schedule", schedule),
		zap.Int("retention_days", c.retentionDays),
	)
	return nil
}

// Stop waits for a running cleanup to finish
func (c *CleanupService) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scheduler == nil {
		return
	}
	<-c.scheduler.Stop().Done()
	c.scheduler = nil
}
