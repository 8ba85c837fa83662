package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
	"go.uber.org/atomic"
)

// sweepCancelled counts donations auto-cancelled over the process
// lifetime, readable without locking from the stats endpoint.
var sweepCancelled = atomic.NewInt64(0)

// SweepCancelledTotal returns the number of donations the sweep has
// auto-cancelled since startup.
func SweepCancelledTotal() int64 {
	return sweepCancelled.Load()
}

// RunSweep auto-cancels donations stuck in manual assignment whose
// scheduled pickup time has passed, restoring their inventory. It is
// idempotent: each candidate is re-checked under lock, so a donation
// cancelled by a concurrent run is skipped.
func (s *Service) RunSweep(ctx context.Context) (int, error) {
	due, err := s.store.Donations().ListManualAssignmentDue(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue donations: %w", err)
	}

	cancelled := 0
	for _, candidate := range due {
		err := s.store.InTx(ctx, func(tx repository.Store) error {
			donation, err := tx.Donations().GetByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return fmt.Errorf("failed to lock donation %d: %w", candidate.ID, err)
			}
			// Re-check under lock: another run may have resolved it.
			if donation == nil || donation.Status != models.DonationStatusManualAssignment {
				return nil
			}
			if donation.ScheduledPickupTime.After(time.Now()) {
				return nil
			}

			donation.Status = models.DonationStatusCancelled
			if err := restoreInventory(ctx, tx, donation); err != nil {
				return err
			}
			if _, err := tx.Donations().Update(ctx, donation); err != nil {
				return fmt.Errorf("failed to cancel donation %d: %w", donation.ID, err)
			}
			cancelled++
			return nil
		})
		if err != nil {
			s.logger.WithError(err).Errorf("Sweep failed for donation %d", candidate.ID)
		}
	}

	if cancelled > 0 {
		sweepCancelled.Add(int64(cancelled))
		s.metrics.SweepCancellations.Add(float64(cancelled))
		s.logger.Infof("Sweep auto-cancelled %d overdue donations", cancelled)
	}
	return cancelled, nil
}

// StartSweeper runs the auto-cancel sweep on a low-frequency ticker
// until the context is cancelled. Launch it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Auto-cancel sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Auto-cancel sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunSweep(ctx); err != nil {
				s.logger.WithError(err).Error("Sweep run failed")
			}
		}
	}
}
