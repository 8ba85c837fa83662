// Package freshness computes the time-to-expiry urgency bucket and the
// continuous freshness score for food items. Both are pure functions of
// their inputs; callers recompute them before every persist instead of
// relying on stored values.
package freshness

import (
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

// Urgency band thresholds, in hours until expiry.
const (
	criticalWithinHours = 2
	highWithinHours     = 6
	mediumWithinHours   = 24
)

// Weighting of the freshness score components.
const (
	timeWeight = 70
	maxScore   = 100
)

var conditionBonus = map[models.FoodCondition]float64{
	models.FoodConditionExcellent: 30,
	models.FoodConditionGood:      20,
	models.FoodConditionFair:      10,
	models.FoodConditionPoor:      0,
}

// Urgency buckets an expiry timestamp into a triage level. Boundaries
// are inclusive: an item expiring in exactly 2 hours is critical.
func Urgency(now, expiry time.Time) models.UrgencyLevel {
	hoursLeft := expiry.Sub(now).Hours()
	switch {
	case hoursLeft <= criticalWithinHours:
		return models.UrgencyCritical
	case hoursLeft <= highWithinHours:
		return models.UrgencyHigh
	case hoursLeft <= mediumWithinHours:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

// Score rates an item 0-100 from its remaining share of the category's
// average shelf life plus a condition bonus. Expired items score 0.
func Score(now, expiry time.Time, avgShelfLifeHours int, condition models.FoodCondition) float64 {
	if !now.Before(expiry) {
		return 0
	}
	hoursLeft := expiry.Sub(now).Hours()
	score := (hoursLeft/float64(avgShelfLifeHours))*timeWeight + conditionBonus[condition]
	if score > maxScore {
		return maxScore
	}
	return score
}

// ItemScore is a convenience wrapper over Score for a loaded item with
// its category attached.
func ItemScore(now time.Time, item *models.FoodItem) float64 {
	if item.Category == nil {
		return 0
	}
	return Score(now, item.ExpiryDate, item.Category.AverageShelfLifeHours, item.Condition)
}
