package models

import "time"

// DonorProfile represents a food donor (restaurant, grocery, household).
type DonorProfile struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	BusinessName string    `json:"business_name" db:"business_name"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	Latitude     *float64  `json:"latitude" db:"latitude"`
	Longitude    *float64  `json:"longitude" db:"longitude"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasCoordinates returns true when the donor location is geocoded.
func (d *DonorProfile) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}
