package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shareeat/shareeat/internal/dispatch"
	"github.com/shareeat/shareeat/internal/freshness"
	"github.com/shareeat/shareeat/internal/matching"
	"github.com/shareeat/shareeat/internal/metrics"
	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/notify"
	"github.com/shareeat/shareeat/internal/repository"
	"github.com/sirupsen/logrus"
)

// Default gap between scheduled pickup and scheduled delivery when a
// donation is created from a single item request.
const defaultDeliveryWindow = 2 * time.Hour

// Service is the donation lifecycle engine. All state transitions run
// through it under a single-writer-per-donation discipline; matching,
// dispatch, notifications, and escalation hang off the transitions.
type Service struct {
	store    repository.Store
	matcher  *matching.Engine
	planner  *dispatch.Planner
	notifier notify.Notifier
	alerts   notify.AlertSink
	admins   notify.EscalationTargets
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// New creates the lifecycle service with all required collaborators.
func New(store repository.Store, matcher *matching.Engine, planner *dispatch.Planner,
	notifier notify.Notifier, alerts notify.AlertSink, admins notify.EscalationTargets,
	m *metrics.Metrics, logger *logrus.Logger,
) *Service {
	return &Service{
		store:    store,
		matcher:  matcher,
		planner:  planner,
		notifier: notifier,
		alerts:   alerts,
		admins:   admins,
		metrics:  m,
		logger:   logger,
	}
}

// pendingNotification is queued during a transaction and delivered
// only after commit, outside any lock.
type pendingNotification struct {
	userID   int64
	title    string
	message  string
	severity models.NotificationSeverity
	link     string
}

// dispatchNotifications delivers queued notifications best-effort.
// Failures are aggregated, logged, and swallowed.
func (s *Service) dispatchNotifications(ctx context.Context, notes []pendingNotification) {
	var errs *multierror.Error
	for _, n := range notes {
		if err := s.notifier.Notify(ctx, n.userID, n.title, n.message, n.severity, n.link); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		s.logger.WithError(err).Error("Failed to deliver notifications")
	}
}

// sendAlert fires an operator alert best-effort.
func (s *Service) sendAlert(ctx context.Context, subject, body string) {
	if err := s.alerts.Alert(ctx, subject, body); err != nil {
		s.logger.WithError(err).Error("Failed to send operator alert")
	}
}

// escalationNotices builds one admin notification per escalation
// target. A failed target lookup degrades to no notices rather than
// blocking the transition.
func (s *Service) escalationNotices(ctx context.Context, donation *models.Donation, title, message string) []pendingNotification {
	adminIDs, err := s.admins.AdminUserIDs(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to resolve escalation targets")
		return nil
	}

	notes := make([]pendingNotification, 0, len(adminIDs))
	for _, id := range adminIDs {
		notes = append(notes, pendingNotification{
			userID:   id,
			title:    title,
			message:  message,
			severity: models.SeverityWarning,
			link:     fmt.Sprintf("/admin/donations/%d", donation.ID),
		})
	}
	return notes
}

// CreateFoodItem registers a new inventory item for a donor, deriving
// the urgency level before the first persist.
func (s *Service) CreateFoodItem(ctx context.Context, actor models.Actor, item *models.FoodItem) (*models.FoodItem, error) {
	if actor.Role != models.RoleDonor && !actor.IsAdmin() {
		return nil, guardf(ReasonForbidden, "only donors can add food items")
	}
	if actor.Role == models.RoleDonor {
		item.DonorID = actor.ProfileID
	}
	if item.Quantity <= 0 {
		return nil, invalidf(ReasonInvalidQuantity, "quantity must be positive")
	}

	now := time.Now()
	item.IsAvailable = true
	item.UrgencyLevel = freshness.Urgency(now, item.ExpiryDate)

	created, err := s.store.FoodItems().Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to create food item: %w", err)
	}
	s.logger.Infof("Donor %d listed item %d (%s, urgency %s)", created.DonorID, created.ID, created.Name, created.UrgencyLevel)
	return created, nil
}

// FindMatches ranks candidate recipients for an available item.
func (s *Service) FindMatches(ctx context.Context, foodItemID int64, maxResults int) ([]matching.Match, error) {
	item, err := s.store.FoodItems().GetByID(ctx, foodItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get food item %d: %w", foodItemID, err)
	}
	if item == nil {
		return nil, ErrNotFound
	}

	donor, err := s.store.Donors().GetByID(ctx, item.DonorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donor %d: %w", item.DonorID, err)
	}
	if donor == nil {
		return nil, ErrNotFound
	}

	s.metrics.MatchesComputed.Inc()
	return s.matcher.FindBestMatches(ctx, item, donor, maxResults)
}

// UrgentItems lists available items in the critical or high urgency
// bands, soonest expiry first.
func (s *Service) UrgentItems(ctx context.Context) ([]*models.FoodItem, error) {
	return s.store.FoodItems().ListUrgent(ctx)
}

// PrioritizedItems lists available, unexpired items ordered by the
// prioritization engine.
func (s *Service) PrioritizedItems(ctx context.Context, limit int) ([]*models.FoodItem, error) {
	items, err := s.store.FoodItems().ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available items: %w", err)
	}
	return matching.PrioritizedItems(time.Now(), items, limit), nil
}

// AvailableItems lists items currently open for requests.
func (s *Service) AvailableItems(ctx context.Context) ([]*models.FoodItem, error) {
	return s.store.FoodItems().ListAvailable(ctx)
}

// Recipients lists verified recipients with spare capacity.
func (s *Service) Recipients(ctx context.Context) ([]*models.RecipientProfile, error) {
	return s.store.Recipients().ListVerifiedWithCapacity(ctx)
}

// Volunteers lists volunteers currently eligible for dispatch.
func (s *Service) Volunteers(ctx context.Context) ([]*models.VolunteerProfile, error) {
	return s.store.Volunteers().ListDispatchable(ctx, nil)
}

// GetDonation loads one donation with its items.
func (s *Service) GetDonation(ctx context.Context, id int64) (*models.Donation, error) {
	donation, err := s.store.Donations().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation %d: %w", id, err)
	}
	if donation == nil {
		return nil, ErrNotFound
	}
	return donation, nil
}

// ListDonations returns donations matching the filters.
func (s *Service) ListDonations(ctx context.Context, filters repository.DonationFilters) ([]*models.Donation, error) {
	return s.store.Donations().List(ctx, filters)
}

// Notifications returns a user's in-app notifications.
func (s *Service) Notifications(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, userID, unreadOnly)
}

// MarkNotificationRead flags one notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.store.Notifications().MarkRead(ctx, id)
}
