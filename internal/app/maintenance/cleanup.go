// Package maintenance runs the periodic housekeeping jobs: flipping overdue
// invitations to EXPIRED and purging lapsed cache entries.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/saaskit-io/saaskit/internal/cache"
	"github.com/saaskit-io/saaskit/internal/services"
	"github.com/saaskit-io/saaskit/pkg/logger"
)

// Cleaner owns the maintenance schedule.
type Cleaner struct {
	invitations *services.InvitationService
	dbCache     *cache.DatabaseStore
	schedule    string
	now         func() time.Time

	cron *cron.Cron
	log  *zap.Logger
}

// Option customises Cleaner behaviour.
type Option func(*Cleaner)

// WithClock injects a custom clock, primarily for testing.
func WithClock(clock func() time.Time) Option {
	return func(c *Cleaner) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewCleaner constructs a Cleaner. dbCache may be nil when Redis serves the
// cache; Redis expires its own keys.
func NewCleaner(invitations *services.InvitationService, dbCache *cache.DatabaseStore, schedule string, opts ...Option) (*Cleaner, error) {
	if invitations == nil {
		return nil, errors.New("maintenance: invitation service is required")
	}
	if schedule == "" {
		schedule = "@hourly"
	}

	cleaner := &Cleaner{
		invitations: invitations,
		dbCache:     dbCache,
		schedule:    schedule,
		now:         time.Now,
		log:         logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(cleaner)
	}
	return cleaner, nil
}

// Start registers the cron entry and begins the schedule.
func (c *Cleaner) Start() error {
	c.cron = cron.New()
	_, err := c.cron.AddFunc(c.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := c.RunOnce(ctx); err != nil {
			c.log.Error("maintenance run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("maintenance: bad schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()
	c.log.Info("maintenance scheduler started", zap.String("schedule", c.schedule))
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (c *Cleaner) Stop() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
}

// RunOnce executes every housekeeping job, collecting failures so one broken
// job does not starve the others.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	now := c.now()
	var errs error

	expired, err := c.invitations.ExpireStale(ctx, now)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("expire invitations: %w", err))
	} else if expired > 0 {
		c.log.Info("expired stale invitations", zap.Int64("count", expired))
	}

	if c.dbCache != nil {
		purged, err := c.dbCache.PurgeExpired(ctx, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("purge cache: %w", err))
		} else if purged > 0 {
			c.log.Info("purged expired cache entries", zap.Int64("count", purged))
		}
	}

	return errs
}
