package models

import "time"

// FoodCondition describes the physical condition of a food batch
type FoodCondition string

const (
	FoodConditionExcellent FoodCondition = "excellent"
	FoodConditionGood      FoodCondition = "good"
	FoodConditionFair      FoodCondition = "fair"
	FoodConditionPoor      FoodCondition = "poor"
)

// UrgencyLevel is the coarse time-to-expiry bucket used for triage.
// It is always derived from the expiry timestamp, never set directly.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// FoodItem represents a batch of surplus food offered by a donor.
// Quantity is decremented as donations claim it; IsAvailable flips off
// once the batch is exhausted or locked into a confirmed donation.
type FoodItem struct {
	ID           int64         `json:"id" db:"id"`
	DonorID      int64         `json:"donor_id" db:"donor_id"`
	CategoryID   int64         `json:"category_id" db:"category_id"`
	Name         string        `json:"name" db:"name"`
	Description  string        `json:"description" db:"description"`
	Quantity     float64       `json:"quantity" db:"quantity"`
	Unit         string        `json:"unit" db:"unit"`
	Condition    FoodCondition `json:"condition" db:"condition"`
	ExpiryDate   time.Time     `json:"expiry_date" db:"expiry_date"`
	PickupBefore time.Time     `json:"pickup_before" db:"pickup_before"`
	IsAvailable  bool          `json:"is_available" db:"is_available"`
	UrgencyLevel UrgencyLevel  `json:"urgency_level" db:"urgency_level"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`

	Category *FoodCategory `json:"category,omitempty"`
}

// HoursUntilExpiry returns the hours remaining before the item expires,
// clamped at zero. Unavailable items report zero.
func (f *FoodItem) HoursUntilExpiry(now time.Time) float64 {
	if !f.IsAvailable {
		return 0
	}
	h := f.ExpiryDate.Sub(now).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// IsExpired returns true if the item has passed its expiry date.
func (f *FoodItem) IsExpired(now time.Time) bool {
	return !now.Before(f.ExpiryDate)
}
