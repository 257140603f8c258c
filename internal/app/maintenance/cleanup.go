package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ufoundit-dev/ufoundit/internal/app"
	"github.com/ufoundit-dev/ufoundit/internal/models"
	"github.com/ufoundit-dev/ufoundit/pkg/logger"
)

// Cleaner prunes aged rows on a cron schedule: read notifications past their
// retention window and terminal requests past theirs. Live data is never
// touched.
type Cleaner struct {
	db   *gorm.DB
	cfg  app.MaintenanceConfig
	cron *cron.Cron
	log  *zap.Logger
	now  func() time.Time
}

// NewCleaner constructs a Cleaner.
func NewCleaner(db *gorm.DB, cfg app.MaintenanceConfig) (*Cleaner, error) {
	if db == nil {
		return nil, errors.New("maintenance: db is required")
	}
	return &Cleaner{
		db:  db,
		cfg: cfg,
		log: logger.WithModule("maintenance"),
		now: time.Now,
	}, nil
}

// Start schedules the cleanup job. No-op when maintenance is disabled.
func (c *Cleaner) Start() error {
	if !c.cfg.Enabled {
		c.log.Info("maintenance disabled")
		return nil
	}

	schedule := c.cfg.Schedule
	if schedule == "" {
		schedule = "@daily"
	}

	c.cron = cron.New()
	_, err := c.cron.AddFunc(schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Error("cleanup run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", schedule, err)
	}

	c.cron.Start()
	c.log.Info("maintenance scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (c *Cleaner) Stop() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
}

// RunOnce executes a single cleanup pass. Each pruning step runs even when an
// earlier one fails; errors are combined.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	var errs error

	if days := c.cfg.NotificationRetentionDays; days > 0 {
		cutoff := c.now().UTC().AddDate(0, 0, -days)
		result := c.db.WithContext(ctx).
			Where("is_read = ? AND created_at < ?", true, cutoff).
			Delete(&models.Notification{})
		if result.Error != nil {
			errs = multierr.Append(errs, fmt.Errorf("prune notifications: %w", result.Error))
		} else if result.RowsAffected > 0 {
			c.log.Info("pruned notifications", zap.Int64("rows", result.RowsAffected))
		}
	}

	if days := c.cfg.RequestRetentionDays; days > 0 {
		cutoff := c.now().UTC().AddDate(0, 0, -days)
		terminal := []models.RequestStatus{models.RequestCompleted, models.RequestRejected}

		result := c.db.WithContext(ctx).
			Where("status IN ? AND updated_at < ?", terminal, cutoff).
			Delete(&models.DropoffRequest{})
		if result.Error != nil {
			errs = multierr.Append(errs, fmt.Errorf("prune dropoff requests: %w", result.Error))
		} else if result.RowsAffected > 0 {
			c.log.Info("pruned dropoff requests", zap.Int64("rows", result.RowsAffected))
		}

		result = c.db.WithContext(ctx).
			Where("status IN ? AND updated_at < ?", terminal, cutoff).
			Delete(&models.PickupRequest{})
		if result.Error != nil {
			errs = multierr.Append(errs, fmt.Errorf("prune pickup requests: %w", result.Error))
		} else if result.RowsAffected > 0 {
			c.log.Info("pruned pickup requests", zap.Int64("rows", result.RowsAffected))
		}
	}

	return errs
}
