package dispatch

import (
	"context"
	"fmt"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
	"github.com/sirupsen/logrus"
)

// Planner orchestrates re-matching rounds for a donation. Each round
// excludes every volunteer who was ever the subject of a delivery
// request for the donation, whatever that request's status, so a
// volunteer is contacted at most once per donation.
type Planner struct {
	selector *Selector
	logger   *logrus.Logger
}

// NewPlanner creates a delivery planner around a volunteer selector.
func NewPlanner(selector *Selector, logger *logrus.Logger) *Planner {
	return &Planner{selector: selector, logger: logger}
}

// NextVolunteer finds the best previously-uncontacted volunteer for
// the donation. A zero Selection means the pool is exhausted and the
// donation needs manual assignment.
//
// store must be the transaction-scoped Store of the enclosing
// lifecycle operation so the contacted set and the resulting request
// commit atomically.
func (p *Planner) NextVolunteer(ctx context.Context, store repository.Store, donation *models.Donation, donor *models.DonorProfile, recipient *models.RecipientProfile) (Selection, error) {
	contacted, err := store.DeliveryRequests().ContactedVolunteerIDs(ctx, donation.ID)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to load contacted volunteers for donation %d: %w", donation.ID, err)
	}

	pool, err := store.Volunteers().ListDispatchable(ctx, contacted)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to load volunteer pool for donation %d: %w", donation.ID, err)
	}

	selection := p.selector.FindOptimalVolunteer(ctx, donor, recipient, pool)
	if selection.Volunteer == nil {
		p.logger.Infof("No uncontacted volunteer for donation %d (%d already contacted)", donation.ID, len(contacted))
	}
	return selection, nil
}
