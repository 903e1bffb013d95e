package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
)

// HousekeepingService periodically cleans up expired records so invitations
// and reset tokens don't accumulate forever.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A zero or negative
// interval defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker, blocking until any in-progress cleanup ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run once at startup.
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs each deletion independently so one failure doesn't stop the
// others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	if err := s.Store.Invitations().DeleteExpired(ctx); err != nil {
		s.Logger.Error("failed to delete expired invitations", "error", err)
	}

	if err := s.Store.Users().ClearExpiredResetTokens(ctx); err != nil {
		s.Logger.Error("failed to clear expired reset tokens", "error", err)
	}

	s.Logger.Debug("housekeeping cleanup completed")
}
