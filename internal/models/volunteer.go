package models

import "time"

// VehicleType describes a volunteer's transport
type VehicleType string

const (
	VehicleBicycle    VehicleType = "bicycle"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
	VehicleVan        VehicleType = "van"
	VehicleTruck      VehicleType = "truck"
)

// VolunteerProfile represents a courier who moves donations between
// donors and recipients. Rating is a running average over rated
// deliveries; TotalDeliveries only ever grows.
type VolunteerProfile struct {
	ID              int64        `json:"id" db:"id"`
	UserID          int64        `json:"user_id" db:"user_id"`
	Phone           string       `json:"phone" db:"phone"`
	Address         string       `json:"address" db:"address"`
	Latitude        *float64     `json:"latitude" db:"latitude"`
	Longitude       *float64     `json:"longitude" db:"longitude"`
	HasVehicle      bool         `json:"has_vehicle" db:"has_vehicle"`
	VehicleType     *VehicleType `json:"vehicle_type" db:"vehicle_type"`
	VehicleCapacity *float64     `json:"vehicle_capacity" db:"vehicle_capacity"`
	IsAvailable     bool         `json:"is_available" db:"is_available"`
	IsVerified      bool         `json:"is_verified" db:"is_verified"`
	Rating          float64      `json:"rating" db:"rating"`
	TotalDeliveries int          `json:"total_deliveries" db:"total_deliveries"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// HasCoordinates returns true when the volunteer location is geocoded.
func (v *VolunteerProfile) HasCoordinates() bool {
	return v.Latitude != nil && v.Longitude != nil
}

// ApplyRating folds a new 1-5 delivery rating into the running average
// and bumps the delivery counter.
func (v *VolunteerProfile) ApplyRating(rating int) {
	v.Rating = (v.Rating*float64(v.TotalDeliveries) + float64(rating)) / float64(v.TotalDeliveries+1)
	v.TotalDeliveries++
}
