package models

// ActorRole identifies which kind of participant is performing an
// operation.
type ActorRole string

const (
	RoleDonor     ActorRole = "donor"
	RoleRecipient ActorRole = "recipient"
	RoleVolunteer ActorRole = "volunteer"
	RoleAdmin     ActorRole = "admin"
)

// Actor is the caller of a lifecycle operation, resolved once at the
// API boundary and passed into the core explicitly. ProfileID refers
// to the role-specific profile (donor, recipient, volunteer); admins
// carry their user id instead.
type Actor struct {
	Role      ActorRole `json:"role"`
	ProfileID int64     `json:"profile_id"`
}

// IsAdmin reports whether the actor holds operator privileges.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
