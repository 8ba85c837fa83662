package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/freshness"
	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
)

// RequestItem creates a pending donation claiming a quantity of one
// food item for the requesting recipient. The claim decrements the
// item's stock atomically; a quantity of zero claims the full batch.
func (s *Service) RequestItem(ctx context.Context, actor models.Actor, foodItemID int64, quantity float64) (*models.Donation, error) {
	if actor.Role != models.RoleRecipient {
		return nil, guardf(ReasonForbidden, "only recipients can request food items")
	}

	var donation *models.Donation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		item, err := tx.FoodItems().GetByIDForUpdate(ctx, foodItemID)
		if err != nil {
			return fmt.Errorf("failed to lock food item %d: %w", foodItemID, err)
		}
		if item == nil {
			return ErrNotFound
		}

		now := time.Now()
		if !item.IsAvailable {
			return guardf(ReasonItemUnavailable, "this item is no longer available")
		}
		if item.IsExpired(now) {
			return guardf(ReasonItemExpired, "this item has expired")
		}

		// One pending donation at a time may hold a claim on an item.
		locked, err := tx.Donations().HasOpenClaim(ctx, foodItemID)
		if err != nil {
			return fmt.Errorf("failed to check open claims on item %d: %w", foodItemID, err)
		}
		if locked {
			return guardf(ReasonItemLocked, "this item is pending approval for another request")
		}

		duplicate, err := tx.Donations().HasOpenClaimByRecipient(ctx, foodItemID, actor.ProfileID)
		if err != nil {
			return fmt.Errorf("failed to check duplicate claims on item %d: %w", foodItemID, err)
		}
		if duplicate {
			return guardf(ReasonDuplicateRequest, "you have already requested this item")
		}

		if quantity == 0 {
			quantity = item.Quantity
		}
		if quantity < 0 {
			return invalidf(ReasonInvalidQuantity, "quantity must be positive")
		}
		if quantity > item.Quantity {
			return invalidf(ReasonInvalidQuantity,
				fmt.Sprintf("requested quantity exceeds available amount (%.2f)", item.Quantity))
		}

		recipient, err := tx.Recipients().GetByID(ctx, actor.ProfileID)
		if err != nil {
			return fmt.Errorf("failed to get recipient %d: %w", actor.ProfileID, err)
		}
		if recipient == nil {
			return ErrNotFound
		}

		donation, err = tx.Donations().Create(ctx, &models.Donation{
			DonorID:               item.DonorID,
			RecipientID:           recipient.ID,
			Status:                models.DonationStatusPending,
			ScheduledPickupTime:   item.PickupBefore,
			ScheduledDeliveryTime: item.PickupBefore.Add(defaultDeliveryWindow),
			Notes:                 fmt.Sprintf("Requested by %s", recipient.OrganizationName),
		})
		if err != nil {
			return fmt.Errorf("failed to create donation: %w", err)
		}

		claim, err := tx.Donations().AddItem(ctx, &models.DonationItem{
			DonationID: donation.ID,
			FoodItemID: item.ID,
			Quantity:   quantity,
		})
		if err != nil {
			return fmt.Errorf("failed to claim item %d: %w", item.ID, err)
		}
		donation.Items = append(donation.Items, *claim)

		item.Quantity -= quantity
		if item.Quantity <= 0 {
			item.Quantity = 0
			item.IsAvailable = false
		}
		item.UrgencyLevel = freshness.Urgency(now, item.ExpiryDate)
		if _, err := tx.FoodItems().Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update item %d stock: %w", item.ID, err)
		}

		donation.RecomputeTotals()
		donation, err = tx.Donations().Update(ctx, donation)
		if err != nil {
			return fmt.Errorf("failed to update donation totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DonationTransitions.WithLabelValues(string(models.DonationStatusPending)).Inc()
	s.logger.Infof("Recipient %d requested %.2f of item %d (donation %d)", actor.ProfileID, quantity, foodItemID, donation.ID)
	return donation, nil
}

// Confirm moves a pending donation to confirmed, force-marks claimed
// items unavailable, and runs the first volunteer matching round.
// Finding no volunteer escalates the donation to manual assignment.
func (s *Service) Confirm(ctx context.Context, actor models.Actor, donationID int64) (*models.Donation, error) {
	var (
		donation  *models.Donation
		notes     []pendingNotification
		escalated bool
	)

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		donation, err = tx.Donations().GetByIDForUpdate(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", donationID, err)
		}
		if donation == nil {
			return ErrNotFound
		}

		if !actor.IsAdmin() && !(actor.Role == models.RoleDonor && actor.ProfileID == donation.DonorID) {
			return guardf(ReasonForbidden, "only the donor can confirm this donation")
		}
		if donation.Status != models.DonationStatusPending {
			return guardf(ReasonInvalidState, "only pending donations can be confirmed")
		}

		donation.Status = models.DonationStatusConfirmed

		// Force the claimed items off the market even when residual
		// stock would otherwise keep them listed.
		now := time.Now()
		for _, claim := range donation.Items {
			item, err := tx.FoodItems().GetByIDForUpdate(ctx, claim.FoodItemID)
			if err != nil {
				return fmt.Errorf("failed to lock item %d: %w", claim.FoodItemID, err)
			}
			if item == nil {
				continue
			}
			item.IsAvailable = false
			item.UrgencyLevel = freshness.Urgency(now, item.ExpiryDate)
			if _, err := tx.FoodItems().Update(ctx, item); err != nil {
				return fmt.Errorf("failed to mark item %d unavailable: %w", item.ID, err)
			}
		}

		donor, err := tx.Donors().GetByID(ctx, donation.DonorID)
		if err != nil {
			return fmt.Errorf("failed to get donor %d: %w", donation.DonorID, err)
		}
		recipient, err := tx.Recipients().GetByID(ctx, donation.RecipientID)
		if err != nil {
			return fmt.Errorf("failed to get recipient %d: %w", donation.RecipientID, err)
		}
		if donor == nil || recipient == nil {
			return ErrNotFound
		}

		selection, err := s.planner.NextVolunteer(ctx, tx, donation, donor, recipient)
		if err != nil {
			return err
		}

		if selection.Volunteer != nil {
			if _, err := tx.DeliveryRequests().Create(ctx, &models.DeliveryRequest{
				DonationID:  donation.ID,
				VolunteerID: selection.Volunteer.ID,
				Status:      models.RequestStatusPending,
			}); err != nil {
				return fmt.Errorf("failed to create delivery request: %w", err)
			}
			notes = append(notes, pendingNotification{
				userID:   selection.Volunteer.UserID,
				title:    "New Delivery Request",
				message:  fmt.Sprintf("You have a new delivery request from %s", donor.BusinessName),
				severity: models.SeverityInfo,
				link:     "/volunteer/requests",
			})
		} else {
			donation.Status = models.DonationStatusManualAssignment
			escalated = true
			notes = append(notes, s.escalationNotices(ctx, donation,
				"Action Required: No Volunteer Available",
				fmt.Sprintf("No volunteer found for Donation #%d. Please assign manually.", donation.ID))...)
		}

		notes = append(notes, pendingNotification{
			userID:   recipient.UserID,
			title:    "Donation Confirmed",
			message:  fmt.Sprintf("Your request has been confirmed by %s", donor.BusinessName),
			severity: models.SeveritySuccess,
			link:     fmt.Sprintf("/donations/%d", donation.ID),
		})

		donation, err = tx.Donations().Update(ctx, donation)
		if err != nil {
			return fmt.Errorf("failed to update donation %d: %w", donation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DonationTransitions.WithLabelValues(string(donation.Status)).Inc()
	s.dispatchNotifications(ctx, notes)
	if escalated {
		s.metrics.Escalations.Inc()
		s.sendAlert(ctx,
			fmt.Sprintf("Urgent: No Volunteer Available for Donation #%d", donation.ID),
			fmt.Sprintf("Donation #%d confirmed but no volunteers available. Please assign manually via the admin panel.", donation.ID))
	}
	return donation, nil
}

// MarkPickedUp records the pickup. Only the assigned volunteer may
// trigger it, and only from the confirmed state.
func (s *Service) MarkPickedUp(ctx context.Context, actor models.Actor, donationID int64) (*models.Donation, error) {
	var (
		donation *models.Donation
		notes    []pendingNotification
	)

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		donation, err = tx.Donations().GetByIDForUpdate(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", donationID, err)
		}
		if donation == nil {
			return ErrNotFound
		}

		if actor.Role != models.RoleVolunteer || donation.VolunteerID == nil || *donation.VolunteerID != actor.ProfileID {
			return guardf(ReasonForbidden, "only the assigned volunteer can mark pickup")
		}
		if donation.Status != models.DonationStatusConfirmed {
			return guardf(ReasonInvalidState, "donation must be confirmed before pickup")
		}

		now := time.Now()
		donation.Status = models.DonationStatusPickedUp
		donation.ActualPickupTime = &now

		recipient, err := tx.Recipients().GetByID(ctx, donation.RecipientID)
		if err != nil {
			return fmt.Errorf("failed to get recipient %d: %w", donation.RecipientID, err)
		}
		if recipient != nil {
			notes = append(notes, pendingNotification{
				userID:   recipient.UserID,
				title:    "Donation on the Way",
				message:  fmt.Sprintf("Donation #%d has been picked up.", donation.ID),
				severity: models.SeverityInfo,
				link:     fmt.Sprintf("/donations/%d", donation.ID),
			})
		}

		donation, err = tx.Donations().Update(ctx, donation)
		if err != nil {
			return fmt.Errorf("failed to update donation %d: %w", donation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DonationTransitions.WithLabelValues(string(models.DonationStatusPickedUp)).Inc()
	s.dispatchNotifications(ctx, notes)
	return donation, nil
}

// MarkInTransit moves a picked-up donation into transit.
func (s *Service) MarkInTransit(ctx context.Context, actor models.Actor, donationID int64) (*models.Donation, error) {
	donation, err := s.volunteerTransition(ctx, actor, donationID,
		[]models.DonationStatus{models.DonationStatusPickedUp},
		models.DonationStatusInTransit, false)
	if err != nil {
		return nil, err
	}
	s.metrics.DonationTransitions.WithLabelValues(string(models.DonationStatusInTransit)).Inc()
	return donation, nil
}

// MarkDelivered records the drop-off by the assigned volunteer.
// Receipt confirmation by the recipient still completes the donation.
func (s *Service) MarkDelivered(ctx context.Context, actor models.Actor, donationID int64) (*models.Donation, error) {
	donation, err := s.volunteerTransition(ctx, actor, donationID,
		[]models.DonationStatus{models.DonationStatusPickedUp, models.DonationStatusInTransit},
		models.DonationStatusDelivered, true)
	if err != nil {
		return nil, err
	}
	s.metrics.DonationTransitions.WithLabelValues(string(models.DonationStatusDelivered)).Inc()
	return donation, nil
}

// volunteerTransition applies a status change that only the assigned
// volunteer may trigger.
func (s *Service) volunteerTransition(ctx context.Context, actor models.Actor, donationID int64, from []models.DonationStatus, to models.DonationStatus, stampDelivery bool) (*models.Donation, error) {
	var donation *models.Donation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		donation, err = tx.Donations().GetByIDForUpdate(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", donationID, err)
		}
		if donation == nil {
			return ErrNotFound
		}

		if actor.Role != models.RoleVolunteer || donation.VolunteerID == nil || *donation.VolunteerID != actor.ProfileID {
			return guardf(ReasonForbidden, "only the assigned volunteer can update delivery progress")
		}
		allowed := false
		for _, st := range from {
			if donation.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return guardf(ReasonInvalidState, fmt.Sprintf("donation cannot move to %s from %s", to, donation.Status))
		}

		donation.Status = to
		if stampDelivery {
			now := time.Now()
			donation.ActualDeliveryTime = &now
		}
		donation, err = tx.Donations().Update(ctx, donation)
		if err != nil {
			return fmt.Errorf("failed to update donation %d: %w", donation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return donation, nil
}

// ConfirmReceipt completes the donation. Only the assigned recipient
// may trigger it. An optional 1-5 rating updates the volunteer's
// running average and delivery counter; all delivery requests for the
// donation are closed out and impact metrics are recorded.
func (s *Service) ConfirmReceipt(ctx context.Context, actor models.Actor, donationID int64, rating *int, feedback string) (*models.Donation, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, invalidf(ReasonInvalidRating, "rating must be between 1 and 5")
	}

	var donation *models.Donation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		donation, err = tx.Donations().GetByIDForUpdate(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", donationID, err)
		}
		if donation == nil {
			return ErrNotFound
		}

		if actor.Role != models.RoleRecipient || actor.ProfileID != donation.RecipientID {
			return guardf(ReasonForbidden, "only the assigned recipient can confirm receipt")
		}
		switch donation.Status {
		case models.DonationStatusPickedUp, models.DonationStatusInTransit, models.DonationStatusDelivered:
		default:
			return guardf(ReasonInvalidState, "donation must be picked up before confirming receipt")
		}

		now := time.Now()
		donation.Status = models.DonationStatusCompleted
		donation.ActualDeliveryTime = &now

		if rating != nil {
			donation.Rating = rating
			donation.Feedback = feedback

			if donation.VolunteerID != nil {
				volunteer, err := tx.Volunteers().GetByIDForUpdate(ctx, *donation.VolunteerID)
				if err != nil {
					return fmt.Errorf("failed to lock volunteer %d: %w", *donation.VolunteerID, err)
				}
				if volunteer != nil {
					volunteer.ApplyRating(*rating)
					if _, err := tx.Volunteers().Update(ctx, volunteer); err != nil {
						return fmt.Errorf("failed to update volunteer %d rating: %w", volunteer.ID, err)
					}
				}
			}
		}

		if err := tx.DeliveryRequests().MarkAllCompleted(ctx, donation.ID); err != nil {
			return fmt.Errorf("failed to close delivery requests for donation %d: %w", donation.ID, err)
		}

		if _, err := tx.Impact().Create(ctx, models.NewImpactMetrics(donation, now)); err != nil {
			return fmt.Errorf("failed to record impact metrics for donation %d: %w", donation.ID, err)
		}

		donation, err = tx.Donations().Update(ctx, donation)
		if err != nil {
			return fmt.Errorf("failed to update donation %d: %w", donation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DonationTransitions.WithLabelValues(string(models.DonationStatusCompleted)).Inc()
	s.logger.Infof("Donation %d completed", donation.ID)
	return donation, nil
}

// Cancel aborts a pending or confirmed donation, restoring every
// claimed item's quantity and availability.
func (s *Service) Cancel(ctx context.Context, actor models.Actor, donationID int64) (*models.Donation, error) {
	var donation *models.Donation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		donation, err = tx.Donations().GetByIDForUpdate(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", donationID, err)
		}
		if donation == nil {
			return ErrNotFound
		}

		isParticipant := (actor.Role == models.RoleDonor && actor.ProfileID == donation.DonorID) ||
			(actor.Role == models.RoleRecipient && actor.ProfileID == donation.RecipientID)
		if !isParticipant && !actor.IsAdmin() {
			return guardf(ReasonForbidden, "only a participant can cancel this donation")
		}
		if !donation.IsOpen() {
			return guardf(ReasonInvalidState, "only pending or confirmed donations can be cancelled")
		}

		donation.Status = models.DonationStatusCancelled
		if err := restoreInventory(ctx, tx, donation); err != nil {
			return err
		}

		donation, err = tx.Donations().Update(ctx, donation)
		if err != nil {
			return fmt.Errorf("failed to update donation %d: %w", donation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DonationTransitions.WithLabelValues(string(models.DonationStatusCancelled)).Inc()
	s.logger.Infof("Donation %d cancelled, inventory restored", donation.ID)
	return donation, nil
}

// ResolveException lets an operator resolve a donation stuck in manual
// assignment, to either completed or cancelled. No other state may use
// this path.
func (s *Service) ResolveException(ctx context.Context, actor models.Actor, donationID int64, resolution models.DonationStatus) (*models.Donation, error) {
	if !actor.IsAdmin() {
		return nil, guardf(ReasonForbidden, "only operators can resolve exceptions")
	}
	if resolution != models.DonationStatusCompleted && resolution != models.DonationStatusCancelled {
		return nil, invalidf(ReasonInvalidResolution, `resolution must be "completed" or "cancelled"`)
	}

	var donation *models.Donation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		donation, err = tx.Donations().GetByIDForUpdate(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", donationID, err)
		}
		if donation == nil {
			return ErrNotFound
		}
		if donation.Status != models.DonationStatusManualAssignment {
			return guardf(ReasonInvalidState, "only donations pending manual assignment can be resolved here")
		}

		donation.Status = resolution
		switch resolution {
		case models.DonationStatusCompleted:
			now := time.Now()
			donation.ActualDeliveryTime = &now
		case models.DonationStatusCancelled:
			if err := restoreInventory(ctx, tx, donation); err != nil {
				return err
			}
		}

		donation, err = tx.Donations().Update(ctx, donation)
		if err != nil {
			return fmt.Errorf("failed to update donation %d: %w", donation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DonationTransitions.WithLabelValues(string(donation.Status)).Inc()
	s.logger.Infof("Operator resolved donation %d as %s", donation.ID, donation.Status)
	return donation, nil
}

// restoreInventory adds each claimed quantity back to its food item
// and re-lists items that end up with positive stock.
func restoreInventory(ctx context.Context, tx repository.Store, donation *models.Donation) error {
	now := time.Now()
	for _, claim := range donation.Items {
		item, err := tx.FoodItems().GetByIDForUpdate(ctx, claim.FoodItemID)
		if err != nil {
			return fmt.Errorf("failed to lock item %d: %w", claim.FoodItemID, err)
		}
		if item == nil {
			continue
		}
		item.Quantity += claim.Quantity
		if item.Quantity > 0 {
			item.IsAvailable = true
		}
		item.UrgencyLevel = freshness.Urgency(now, item.ExpiryDate)
		if _, err := tx.FoodItems().Update(ctx, item); err != nil {
			return fmt.Errorf("failed to restore item %d: %w", item.ID, err)
		}
	}
	return nil
}
