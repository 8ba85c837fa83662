package matching

import (
	"sort"
	"time"

	"github.com/shareeat/shareeat/internal/freshness"
	"github.com/shareeat/shareeat/internal/models"
)

// PriorityScore rates how soon an item should move: tighter expiry,
// better freshness, and larger quantity all raise the score.
func PriorityScore(now time.Time, item *models.FoodItem) float64 {
	score := 0.0

	switch hoursLeft := item.HoursUntilExpiry(now); {
	case hoursLeft <= 2:
		score += 50
	case hoursLeft <= 6:
		score += 40
	case hoursLeft <= 12:
		score += 30
	case hoursLeft <= 24:
		score += 20
	default:
		score += 10
	}

	score += (freshness.ItemScore(now, item) / 100) * 30

	// Larger batches feed more people.
	switch {
	case item.Quantity >= 50:
		score += 20
	case item.Quantity >= 20:
		score += 15
	case item.Quantity >= 10:
		score += 10
	default:
		score += 5
	}

	return score
}

// PrioritizedItems filters to available, unexpired items and sorts
// them by descending priority score. limit <= 0 means no truncation.
func PrioritizedItems(now time.Time, items []*models.FoodItem, limit int) []*models.FoodItem {
	type scored struct {
		item  *models.FoodItem
		score float64
	}

	ranked := make([]scored, 0, len(items))
	for _, item := range items {
		if !item.IsAvailable || item.IsExpired(now) {
			continue
		}
		ranked = append(ranked, scored{item: item, score: PriorityScore(now, item)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]*models.FoodItem, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out
}

// BatchEntry is one item plus the quantity taken from it in a batch.
type BatchEntry struct {
	Item     *models.FoodItem
	Quantity float64
}

// OptimalBatch greedily assembles a donation batch for a recipient,
// taking items in priority order until the recipient's available
// capacity (and the optional max weight) is filled. Unverified or
// full recipients get an empty batch.
func OptimalBatch(now time.Time, items []*models.FoodItem, recipient *models.RecipientProfile, maxWeight *float64) []BatchEntry {
	if !recipient.IsVerified {
		return nil
	}
	capacity := float64(recipient.AvailableCapacity())
	if capacity <= 0 {
		return nil
	}

	var batch []BatchEntry
	total := 0.0
	for _, item := range PrioritizedItems(now, items, 0) {
		if maxWeight != nil && total >= *maxWeight {
			break
		}

		take := item.Quantity
		if rem := capacity - total; take > rem {
			take = rem
		}
		if maxWeight != nil {
			if rem := *maxWeight - total; take > rem {
				take = rem
			}
		}

		if take > 0 {
			batch = append(batch, BatchEntry{Item: item, Quantity: take})
			total += take
		}
	}
	return batch
}

// EstimateMeals converts a batch's total weight into a meal count.
func EstimateMeals(batch []BatchEntry) int {
	total := 0.0
	for _, entry := range batch {
		total += entry.Quantity
	}
	return int(total / models.MealWeightKg)
}

// AverageFreshness returns the mean freshness score of the items, or
// zero for an empty slice.
func AverageFreshness(now time.Time, items []*models.FoodItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += freshness.ItemScore(now, item)
	}
	return total / float64(len(items))
}
