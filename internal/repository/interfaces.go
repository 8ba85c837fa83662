package repository

import (
	"context"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

// Store bundles all repositories behind one handle and provides
// transactional execution. Inside InTx every repository operates on
// the same database transaction, so a lifecycle operation can lock a
// donation row, mutate its items and requests, and commit atomically.
type Store interface {
	Users() UserRepository
	Donors() DonorRepository
	Recipients() RecipientRepository
	Volunteers() VolunteerRepository
	Categories() CategoryRepository
	FoodItems() FoodItemRepository
	Donations() DonationRepository
	DeliveryRequests() DeliveryRequestRepository
	Notifications() NotificationRepository
	Impact() ImpactRepository

	// InTx runs fn against a transaction-scoped Store. fn returning an
	// error rolls everything back.
	InTx(ctx context.Context, fn func(Store) error) error
}

// UserRepository defines the interface for user account operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	AdminUserIDs(ctx context.Context) ([]int64, error)
}

// DonorRepository defines the interface for donor profile operations
type DonorRepository interface {
	Create(ctx context.Context, donor *models.DonorProfile) (*models.DonorProfile, error)
	GetByID(ctx context.Context, id int64) (*models.DonorProfile, error)
	Update(ctx context.Context, donor *models.DonorProfile) (*models.DonorProfile, error)
}

// RecipientRepository defines the interface for recipient profile and
// need operations
type RecipientRepository interface {
	Create(ctx context.Context, recipient *models.RecipientProfile) (*models.RecipientProfile, error)
	GetByID(ctx context.Context, id int64) (*models.RecipientProfile, error)
	Update(ctx context.Context, recipient *models.RecipientProfile) (*models.RecipientProfile, error)
	// ListVerifiedWithCapacity returns the matching-engine candidate
	// pool: verified recipients whose configured capacity is positive.
	ListVerifiedWithCapacity(ctx context.Context) ([]*models.RecipientProfile, error)
	AddNeed(ctx context.Context, need *models.RecipientNeed) (*models.RecipientNeed, error)
	ActiveNeeds(ctx context.Context, recipientID int64) ([]models.RecipientNeed, error)
}

// VolunteerRepository defines the interface for volunteer profile
// operations
type VolunteerRepository interface {
	Create(ctx context.Context, volunteer *models.VolunteerProfile) (*models.VolunteerProfile, error)
	GetByID(ctx context.Context, id int64) (*models.VolunteerProfile, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.VolunteerProfile, error)
	Update(ctx context.Context, volunteer *models.VolunteerProfile) (*models.VolunteerProfile, error)
	// ListDispatchable returns available, verified volunteers whose id
	// is not in exclude, the delivery planner's candidate pool.
	ListDispatchable(ctx context.Context, exclude []int64) ([]*models.VolunteerProfile, error)
}

// CategoryRepository defines the interface for food category
// operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.FoodCategory) (*models.FoodCategory, error)
	GetByID(ctx context.Context, id int64) (*models.FoodCategory, error)
	List(ctx context.Context) ([]*models.FoodCategory, error)
}

// FoodItemRepository defines the interface for inventory operations
type FoodItemRepository interface {
	Create(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error)
	GetByID(ctx context.Context, id int64) (*models.FoodItem, error)
	// GetByIDForUpdate locks the item row for the duration of the
	// enclosing transaction, serializing concurrent claims.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.FoodItem, error)
	Update(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error)
	ListAvailable(ctx context.Context) ([]*models.FoodItem, error)
	ListUrgent(ctx context.Context) ([]*models.FoodItem, error)
}

// DonationFilters narrows donation list queries.
type DonationFilters struct {
	Status      *models.DonationStatus
	DonorID     *int64
	RecipientID *int64
	VolunteerID *int64
	Limit       int
	Offset      int
}

// DonationRepository defines the interface for donation operations
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	GetByID(ctx context.Context, id int64) (*models.Donation, error)
	// GetByIDForUpdate locks the donation row, establishing the
	// single-writer-per-donation discipline.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Donation, error)
	Update(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	List(ctx context.Context, filters DonationFilters) ([]*models.Donation, error)
	AddItem(ctx context.Context, item *models.DonationItem) (*models.DonationItem, error)
	// ListManualAssignmentDue returns donations stuck in manual
	// assignment whose scheduled pickup passed before the cutoff.
	ListManualAssignmentDue(ctx context.Context, cutoff time.Time) ([]*models.Donation, error)
	// HasOpenClaim reports whether any open donation (pending by any
	// recipient, or pending/confirmed/in-transit by this recipient)
	// already claims the item.
	HasOpenClaim(ctx context.Context, foodItemID int64) (bool, error)
	HasOpenClaimByRecipient(ctx context.Context, foodItemID, recipientID int64) (bool, error)
}

// DeliveryRequestRepository defines the interface for courier request
// operations
type DeliveryRequestRepository interface {
	Create(ctx context.Context, request *models.DeliveryRequest) (*models.DeliveryRequest, error)
	GetByID(ctx context.Context, id int64) (*models.DeliveryRequest, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.DeliveryRequest, error)
	Update(ctx context.Context, request *models.DeliveryRequest) (*models.DeliveryRequest, error)
	ListByDonation(ctx context.Context, donationID int64) ([]*models.DeliveryRequest, error)
	ListByVolunteer(ctx context.Context, volunteerID int64) ([]*models.DeliveryRequest, error)
	// ContactedVolunteerIDs returns every volunteer ever the subject
	// of a request for the donation, regardless of request status.
	ContactedVolunteerIDs(ctx context.Context, donationID int64) ([]int64, error)
	// ExpirePendingExcept force-expires all pending sibling requests
	// once one request has been accepted.
	ExpirePendingExcept(ctx context.Context, donationID, acceptedID int64) error
	// MarkAllCompleted closes out every request for a donation when
	// receipt is confirmed.
	MarkAllCompleted(ctx context.Context, donationID int64) error
}

// NotificationRepository defines the interface for in-app notification
// operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// ImpactRepository defines the interface for impact metric operations
type ImpactRepository interface {
	Create(ctx context.Context, metrics *models.ImpactMetrics) (*models.ImpactMetrics, error)
	GetByDonation(ctx context.Context, donationID int64) (*models.ImpactMetrics, error)
}
