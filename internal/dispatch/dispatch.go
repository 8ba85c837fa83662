// Package dispatch selects the best volunteer courier for a donation
// leg and wraps that selection with contacted-volunteer exclusion so
// no volunteer is ever asked twice for the same donation.
package dispatch

import (
	"context"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/routing"
	"github.com/sirupsen/logrus"
)

// Volunteer scoring constants.
const (
	baseScore = 100

	farPenalty    = 50 // pickup leg > 20 km
	midPenalty    = 30 // pickup leg > 10 km
	nearPenalty   = 10 // pickup leg > 5 km
	farThresholdKm  = 20
	midThresholdKm  = 10
	nearThresholdKm = 5

	ratingFactor        = 5
	experienceBonus     = 20
	experienceThreshold = 50
	vehicleBonus        = 15

	// Assigned when the volunteer has no known location: ranks them
	// last without excluding them outright.
	unknownLocationPenaltyKm = 100
)

// Selection is the outcome of a volunteer search.
type Selection struct {
	Volunteer *models.VolunteerProfile
	Score     float64
}

// Selector scores candidate volunteers against a donor→recipient leg.
type Selector struct {
	router routing.Router
	logger *logrus.Logger
}

// NewSelector creates a volunteer selector using the given router for
// leg distances.
func NewSelector(router routing.Router, logger *logrus.Logger) *Selector {
	return &Selector{router: router, logger: logger}
}

// FindOptimalVolunteer scores each candidate and returns the best one,
// or a zero Selection when the pool is empty or fully filtered out.
// Unavailable and unverified candidates are skipped. Ties keep pool
// iteration order.
func (s *Selector) FindOptimalVolunteer(ctx context.Context, donor *models.DonorProfile, recipient *models.RecipientProfile, pool []*models.VolunteerProfile) Selection {
	if len(pool) == 0 {
		return Selection{}
	}

	// The donor→recipient leg is shared by every candidate; resolve it
	// once. Missing coordinates degrade to a zero-length leg; the leg
	// distance does not differentiate candidates anyway.
	var deliveryLegKm float64
	if donor.HasCoordinates() && recipient.HasCoordinates() {
		deliveryLegKm = s.router.DistanceKm(ctx,
			routing.Coordinate{Lat: *donor.Latitude, Lon: *donor.Longitude},
			routing.Coordinate{Lat: *recipient.Latitude, Lon: *recipient.Longitude},
		)
	}

	best := Selection{}
	for _, volunteer := range pool {
		if !volunteer.IsAvailable || !volunteer.IsVerified {
			continue
		}

		pickupKm := float64(unknownLocationPenaltyKm)
		if volunteer.HasCoordinates() && donor.HasCoordinates() {
			pickupKm = s.router.DistanceKm(ctx,
				routing.Coordinate{Lat: *volunteer.Latitude, Lon: *volunteer.Longitude},
				routing.Coordinate{Lat: *donor.Latitude, Lon: *donor.Longitude},
			)
		}

		score := scoreVolunteer(volunteer, pickupKm)
		s.logger.Debugf("Volunteer %d scored %.1f (pickup %.1f km, trip %.1f km)",
			volunteer.ID, score, pickupKm, pickupKm+deliveryLegKm)

		if best.Volunteer == nil || score > best.Score {
			best = Selection{Volunteer: volunteer, Score: score}
		}
	}
	return best
}

func scoreVolunteer(v *models.VolunteerProfile, pickupKm float64) float64 {
	score := float64(baseScore)

	switch {
	case pickupKm > farThresholdKm:
		score -= farPenalty
	case pickupKm > midThresholdKm:
		score -= midPenalty
	case pickupKm > nearThresholdKm:
		score -= nearPenalty
	}

	score += v.Rating * ratingFactor
	if v.TotalDeliveries > experienceThreshold {
		score += experienceBonus
	}
	if v.HasVehicle {
		score += vehicleBonus
	}
	return score
}
