package models

import "time"

// DeliveryRequestStatus represents the state of a courier request
type DeliveryRequestStatus string

const (
	RequestStatusPending   DeliveryRequestStatus = "pending"
	RequestStatusAccepted  DeliveryRequestStatus = "accepted"
	RequestStatusRejected  DeliveryRequestStatus = "rejected"
	RequestStatusExpired   DeliveryRequestStatus = "expired"
	RequestStatusDelivered DeliveryRequestStatus = "delivered"
	RequestStatusCompleted DeliveryRequestStatus = "completed"
)

// DeliveryRequest asks one volunteer to courier one donation. A
// volunteer is contacted at most once per donation, so the
// (donation, volunteer) pair is unique; at most one request per
// donation is ever accepted.
type DeliveryRequest struct {
	ID          int64                 `json:"id" db:"id"`
	DonationID  int64                 `json:"donation_id" db:"donation_id"`
	VolunteerID int64                 `json:"volunteer_id" db:"volunteer_id"`
	Status      DeliveryRequestStatus `json:"status" db:"status"`
	CreatedAt   time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at" db:"updated_at"`
}

// IsPending returns true while the request still awaits an answer.
func (r *DeliveryRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
