package models

import "time"

// DonationStatus represents where a donation sits in its lifecycle
type DonationStatus string

const (
	DonationStatusPending          DonationStatus = "pending"
	DonationStatusConfirmed        DonationStatus = "confirmed"
	DonationStatusPickedUp         DonationStatus = "picked_up"
	DonationStatusInTransit        DonationStatus = "in_transit"
	DonationStatusDelivered        DonationStatus = "delivered"
	DonationStatusCompleted        DonationStatus = "completed"
	DonationStatusCancelled        DonationStatus = "cancelled"
	DonationStatusManualAssignment DonationStatus = "pending_manual_assignment"
)

// MealWeightKg is the assumed weight of a single meal, used to derive
// the estimated meal count from total donation weight.
const MealWeightKg = 0.4

// Donation is a transaction moving claimed food from one donor to one
// recipient, optionally via one volunteer courier. It exclusively owns
// its DonationItem collection.
type Donation struct {
	ID                    int64          `json:"id" db:"id"`
	DonorID               int64          `json:"donor_id" db:"donor_id"`
	RecipientID           int64          `json:"recipient_id" db:"recipient_id"`
	VolunteerID           *int64         `json:"volunteer_id" db:"volunteer_id"`
	Status                DonationStatus `json:"status" db:"status"`
	ScheduledPickupTime   time.Time      `json:"scheduled_pickup_time" db:"scheduled_pickup_time"`
	ActualPickupTime      *time.Time     `json:"actual_pickup_time" db:"actual_pickup_time"`
	ScheduledDeliveryTime time.Time      `json:"scheduled_delivery_time" db:"scheduled_delivery_time"`
	ActualDeliveryTime    *time.Time     `json:"actual_delivery_time" db:"actual_delivery_time"`
	TotalWeight           float64        `json:"total_weight" db:"total_weight"`
	EstimatedMeals        int            `json:"estimated_meals" db:"estimated_meals"`
	Notes                 string         `json:"notes" db:"notes"`
	Rating                *int           `json:"rating" db:"rating"`
	Feedback              string         `json:"feedback" db:"feedback"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`

	Items []DonationItem `json:"items,omitempty"`
}

// RecomputeTotals rebuilds the derived weight and meal count from the
// current item set. Callers must invoke it before reading either field
// for a business decision.
func (d *Donation) RecomputeTotals() {
	total := 0.0
	for _, it := range d.Items {
		total += it.Quantity
	}
	d.TotalWeight = total
	d.EstimatedMeals = int(total / MealWeightKg)
}

// HasVolunteer reports whether a courier is already assigned.
func (d *Donation) HasVolunteer() bool {
	return d.VolunteerID != nil
}

// IsOpen returns true while the donation can still be cancelled by a
// participant (before pickup).
func (d *Donation) IsOpen() bool {
	return d.Status == DonationStatusPending || d.Status == DonationStatusConfirmed
}

// DeliveryDurationMinutes returns the pickup-to-delivery duration, or
// zero when either timestamp is missing.
func (d *Donation) DeliveryDurationMinutes() float64 {
	if d.ActualPickupTime == nil || d.ActualDeliveryTime == nil {
		return 0
	}
	return d.ActualDeliveryTime.Sub(*d.ActualPickupTime).Minutes()
}

// DonationItem links a claimed quantity of a FoodItem to a Donation.
// The food item itself stays owned by the donor; this is a claim, not
// a transfer of ownership.
type DonationItem struct {
	ID         int64   `json:"id" db:"id"`
	DonationID int64   `json:"donation_id" db:"donation_id"`
	FoodItemID int64   `json:"food_item_id" db:"food_item_id"`
	Quantity   float64 `json:"quantity" db:"quantity"`
}
