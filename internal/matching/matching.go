// Package matching scores available food items against candidate
// recipients and ranks them for donation creation.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shareeat/shareeat/internal/freshness"
	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
	"github.com/sirupsen/logrus"
)

// Scoring weights for the recipient match score.
const (
	capacityWeight = 30
	localityBonus  = 20
	needBonus      = 10
)

var urgencyWeights = map[models.UrgencyLevel]float64{
	models.UrgencyCritical: 40,
	models.UrgencyHigh:     30,
	models.UrgencyMedium:   20,
	models.UrgencyLow:      10,
}

// DefaultMaxMatches caps the number of recipients returned per item.
const DefaultMaxMatches = 5

// Match pairs a candidate recipient with its compatibility score.
type Match struct {
	Recipient *models.RecipientProfile `json:"recipient"`
	Score     float64                  `json:"score"`
}

// Engine ranks recipients for a food item.
type Engine struct {
	recipients repository.RecipientRepository
	logger     *logrus.Logger
}

// NewEngine creates a matching engine.
func NewEngine(recipients repository.RecipientRepository, logger *logrus.Logger) *Engine {
	return &Engine{recipients: recipients, logger: logger}
}

// MatchScore computes the compatibility of one item/recipient pair
// from four independent components: item urgency, capacity fit, a flat
// locality bonus when both parties have coordinates, and a flat bonus
// for an active need matching the item's category.
//
// Note the locality component only checks coordinate presence; actual
// distance is scored downstream during volunteer selection.
func MatchScore(item *models.FoodItem, donor *models.DonorProfile, recipient *models.RecipientProfile, needs []models.RecipientNeed) float64 {
	score := urgencyWeights[item.UrgencyLevel]

	if cap := recipient.AvailableCapacity(); cap > 0 {
		ratio := item.Quantity / float64(cap)
		if ratio > 1 {
			ratio = 1
		}
		score += ratio * capacityWeight
	}

	if donor.HasCoordinates() && recipient.HasCoordinates() {
		score += localityBonus
	}

	if item.Category != nil {
		for _, need := range needs {
			if need.IsActive && strings.EqualFold(need.FoodCategory, item.Category.Name) {
				score += needBonus
				break
			}
		}
	}

	return score
}

// FindBestMatches ranks verified recipients with available capacity
// against the item and returns up to maxResults of them, best first.
// An empty candidate pool yields an empty slice, not an error. Ties
// keep the candidate iteration order (stable sort).
func (e *Engine) FindBestMatches(ctx context.Context, item *models.FoodItem, donor *models.DonorProfile, maxResults int) ([]Match, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxMatches
	}

	item.UrgencyLevel = freshness.Urgency(time.Now(), item.ExpiryDate)

	candidates, err := e.recipients.ListVerifiedWithCapacity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate recipients: %w", err)
	}

	matches := make([]Match, 0, len(candidates))
	for _, recipient := range candidates {
		if !recipient.CanAccept(item.Quantity) {
			continue
		}
		needs, err := e.recipients.ActiveNeeds(ctx, recipient.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load needs for recipient %d: %w", recipient.ID, err)
		}
		matches = append(matches, Match{
			Recipient: recipient,
			Score:     MatchScore(item, donor, recipient, needs),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	e.logger.Debugf("Matched item %d against %d candidates, returning %d", item.ID, len(candidates), len(matches))
	return matches, nil
}
