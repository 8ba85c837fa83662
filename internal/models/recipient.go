package models

import "time"

// RecipientType classifies the receiving organization
type RecipientType string

const (
	RecipientTypeNGO        RecipientType = "ngo"
	RecipientTypeShelter    RecipientType = "shelter"
	RecipientTypeIndividual RecipientType = "individual"
	RecipientTypeCommunity  RecipientType = "community"
)

// NeedPriority ranks how urgently a recipient needs a food category
type NeedPriority string

const (
	NeedPriorityLow    NeedPriority = "low"
	NeedPriorityMedium NeedPriority = "medium"
	NeedPriorityHigh   NeedPriority = "high"
	NeedPriorityUrgent NeedPriority = "urgent"
)

// RecipientProfile represents an organization or individual receiving
// donations. Capacity is the number of people it can serve; occupancy
// tracks how many it currently serves.
type RecipientProfile struct {
	ID               int64         `json:"id" db:"id"`
	UserID           int64         `json:"user_id" db:"user_id"`
	RecipientType    RecipientType `json:"recipient_type" db:"recipient_type"`
	OrganizationName string        `json:"organization_name" db:"organization_name"`
	Phone            string        `json:"phone" db:"phone"`
	Address          string        `json:"address" db:"address"`
	Latitude         *float64      `json:"latitude" db:"latitude"`
	Longitude        *float64      `json:"longitude" db:"longitude"`
	Capacity         int           `json:"capacity" db:"capacity"`
	CurrentOccupancy int           `json:"current_occupancy" db:"current_occupancy"`
	IsVerified       bool          `json:"is_verified" db:"is_verified"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// AvailableCapacity returns the remaining capacity, never negative.
func (r *RecipientProfile) AvailableCapacity() int {
	c := r.Capacity - r.CurrentOccupancy
	if c < 0 {
		return 0
	}
	return c
}

// CanAccept reports whether the recipient may take on the given
// quantity: it must be verified and have the headroom.
func (r *RecipientProfile) CanAccept(quantity float64) bool {
	return r.IsVerified && quantity <= float64(r.AvailableCapacity())
}

// HasCoordinates returns true when the recipient location is geocoded.
func (r *RecipientProfile) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// RecipientNeed is a standing request for a food category, consumed by
// the matching engine as a scoring bonus.
type RecipientNeed struct {
	ID             int64        `json:"id" db:"id"`
	RecipientID    int64        `json:"recipient_id" db:"recipient_id"`
	FoodCategory   string       `json:"food_category" db:"food_category"`
	QuantityNeeded int          `json:"quantity_needed" db:"quantity_needed"`
	Priority       NeedPriority `json:"priority" db:"priority"`
	Description    string       `json:"description" db:"description"`
	IsActive       bool         `json:"is_active" db:"is_active"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}
