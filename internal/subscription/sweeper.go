package subscription

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultSweepInterval = 1 * time.Hour

// Sweeper periodically marks overdue subscriptions as expired.
type Sweeper struct {
	db       *gorm.DB
	interval time.Duration
	now      func() time.Time
}

// NewSweeper constructs an expiry sweeper.
func NewSweeper(db *gorm.DB) *Sweeper {
	if db == nil {
		return nil
	}
	return &Sweeper{
		db:       db,
		interval: defaultSweepInterval,
		now:      time.Now,
	}
}

// Start runs the sweep loop in the background.
func (s *Sweeper) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go s.run(ctx)
	log.Infof("subscription expiry sweeper started (interval=%s)", s.interval)
}

func (s *Sweeper) run(ctx context.Context) {
	interval := s.interval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	if err := s.SweepOnce(ctx); err != nil {
		log.WithError(err).Warn("expiry sweeper: initial sweep failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				log.WithError(err).Warn("expiry sweeper: sweep failed")
			}
		}
	}
}

// SweepOnce expires every active subscription whose end date has passed.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("expiry sweeper: nil db")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	clock := s.now
	if clock == nil {
		clock = time.Now
	}

	updated, err := ExpireOverdue(ctx, s.db, clock().UTC())
	if err != nil {
		return err
	}
	if updated > 0 {
		log.Infof("expiry sweeper: expired %d subscriptions", updated)
	}
	return nil
}
