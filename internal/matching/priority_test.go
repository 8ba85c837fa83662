package matching

import (
	"math"
	"testing"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

func availableItem(id int64, quantity float64, hoursLeft float64, now time.Time) *models.FoodItem {
	return &models.FoodItem{
		ID:          id,
		Quantity:    quantity,
		Unit:        "kg",
		Condition:   models.FoodConditionGood,
		ExpiryDate:  now.Add(time.Duration(hoursLeft * float64(time.Hour))),
		IsAvailable: true,
		Category:    &models.FoodCategory{Name: "Produce", AverageShelfLifeHours: 96},
	}
}

func TestPriorityScoreBands(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		quantity  float64
		hoursLeft float64
		wantBase  float64 // time band + quantity band, freshness excluded
	}{
		{"critical large batch", 60, 1, 70},
		{"soon medium batch", 25, 5, 55},
		{"half day small batch", 12, 10, 40},
		{"day out tiny batch", 3, 20, 25},
		{"relaxed tiny batch", 3, 48, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := availableItem(1, tt.quantity, tt.hoursLeft, now)
			got := PriorityScore(now, item)
			// The freshness component contributes at most 30.
			if got < tt.wantBase || got > tt.wantBase+30 {
				t.Errorf("PriorityScore() = %.2f, want within [%.2f, %.2f]", got, tt.wantBase, tt.wantBase+30)
			}
		})
	}
}

func TestPrioritizedItemsFiltersAndSorts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	urgent := availableItem(1, 60, 1, now)
	relaxed := availableItem(2, 3, 48, now)
	expired := availableItem(3, 40, -1, now)
	claimed := availableItem(4, 40, 4, now)
	claimed.IsAvailable = false

	got := PrioritizedItems(now, []*models.FoodItem{relaxed, expired, claimed, urgent}, 0)
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("order = [%d, %d], want [1, 2]", got[0].ID, got[1].ID)
	}

	truncated := PrioritizedItems(now, []*models.FoodItem{relaxed, urgent}, 1)
	if len(truncated) != 1 || truncated[0].ID != 1 {
		t.Errorf("limit 1 should keep only the most urgent item")
	}
}

func TestOptimalBatchRespectsCapacity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	items := []*models.FoodItem{
		availableItem(1, 30, 1, now), // most urgent, taken first
		availableItem(2, 30, 10, now),
	}
	recipient := &models.RecipientProfile{
		Capacity:   40,
		IsVerified: true,
	}

	batch := OptimalBatch(now, items, recipient, nil)
	if len(batch) != 2 {
		t.Fatalf("got %d entries, want 2", len(batch))
	}
	if batch[0].Item.ID != 1 || batch[0].Quantity != 30 {
		t.Errorf("entry[0] = item %d qty %.0f, want item 1 qty 30", batch[0].Item.ID, batch[0].Quantity)
	}
	if batch[1].Item.ID != 2 || batch[1].Quantity != 10 {
		t.Errorf("entry[1] = item %d qty %.0f, want item 2 qty 10 (capacity remainder)", batch[1].Item.ID, batch[1].Quantity)
	}
}

func TestOptimalBatchMaxWeight(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	items := []*models.FoodItem{availableItem(1, 50, 1, now)}
	recipient := &models.RecipientProfile{Capacity: 100, IsVerified: true}
	maxWeight := 20.0

	batch := OptimalBatch(now, items, recipient, &maxWeight)
	if len(batch) != 1 || batch[0].Quantity != 20 {
		t.Fatalf("max weight not honored: %+v", batch)
	}
}

func TestOptimalBatchUnverifiedRecipient(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	items := []*models.FoodItem{availableItem(1, 10, 1, now)}
	if batch := OptimalBatch(now, items, &models.RecipientProfile{Capacity: 50}, nil); batch != nil {
		t.Errorf("unverified recipient got a batch: %+v", batch)
	}
}

func TestEstimateMeals(t *testing.T) {
	batch := []BatchEntry{{Quantity: 6}, {Quantity: 2}}
	if got := EstimateMeals(batch); got != 20 {
		t.Errorf("EstimateMeals() = %d, want 20", got)
	}
}

func TestAverageFreshness(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := AverageFreshness(now, nil); got != 0 {
		t.Errorf("AverageFreshness(empty) = %.2f, want 0", got)
	}

	items := []*models.FoodItem{
		availableItem(1, 10, 48, now),
		availableItem(2, 10, 48, now),
	}
	avg := AverageFreshness(now, items)
	single := AverageFreshness(now, items[:1])
	if math.Abs(avg-single) > 1e-9 {
		t.Errorf("identical items should average to the single score: avg=%.2f single=%.2f", avg, single)
	}
}
