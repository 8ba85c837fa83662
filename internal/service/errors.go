package service

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// Reason codes attached to rejected operations so callers can react
// programmatically.
const (
	ReasonInvalidState     = "invalid_state"
	ReasonForbidden        = "forbidden"
	ReasonAlreadyAssigned  = "already_assigned"
	ReasonItemUnavailable  = "item_unavailable"
	ReasonItemExpired      = "item_expired"
	ReasonItemLocked       = "item_locked"
	ReasonDuplicateRequest = "duplicate_request"
	ReasonInvalidQuantity  = "invalid_quantity"
	ReasonInvalidRating    = "invalid_rating"
	ReasonInvalidResolution = "invalid_resolution"
)

// GuardError reports an operation attempted from the wrong state or by
// the wrong actor. No mutation has occurred.
type GuardError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GuardError) Error() string { return e.Message }

// ValidationError reports invalid input (quantity, rating). No
// mutation has occurred.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func guardf(code, msg string) *GuardError        { return &GuardError{Code: code, Message: msg} }
func invalidf(code, msg string) *ValidationError { return &ValidationError{Code: code, Message: msg} }

// IsRejected reports whether err is a guard or validation rejection,
// as opposed to an infrastructure failure.
func IsRejected(err error) bool {
	var g *GuardError
	var v *ValidationError
	return errors.As(err, &g) || errors.As(err, &v)
}
