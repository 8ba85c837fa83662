package service

import (
	"context"
	"fmt"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
)

// RequestsForVolunteer lists a volunteer's delivery requests, newest
// first.
func (s *Service) RequestsForVolunteer(ctx context.Context, volunteerID int64) ([]*models.DeliveryRequest, error) {
	return s.store.DeliveryRequests().ListByVolunteer(ctx, volunteerID)
}

// AcceptRequest assigns the request's volunteer to the donation. Only
// one request per donation can ever win: the donation row is locked,
// a second acceptance observes "already assigned", and every sibling
// pending request is force-expired.
func (s *Service) AcceptRequest(ctx context.Context, actor models.Actor, requestID int64) (*models.DeliveryRequest, error) {
	var (
		request *models.DeliveryRequest
		notes   []pendingNotification
	)

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.DeliveryRequests().GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to lock delivery request %d: %w", requestID, err)
		}
		if request == nil {
			return ErrNotFound
		}

		if actor.Role != models.RoleVolunteer || actor.ProfileID != request.VolunteerID {
			return guardf(ReasonForbidden, "only the contacted volunteer can answer this request")
		}
		if !request.IsPending() {
			return guardf(ReasonInvalidState, "this request is no longer pending")
		}

		donation, err := tx.Donations().GetByIDForUpdate(ctx, request.DonationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", request.DonationID, err)
		}
		if donation == nil {
			return ErrNotFound
		}
		if donation.HasVolunteer() {
			return guardf(ReasonAlreadyAssigned, "this donation is already assigned to another volunteer")
		}

		donation.VolunteerID = &request.VolunteerID
		if _, err := tx.Donations().Update(ctx, donation); err != nil {
			return fmt.Errorf("failed to assign volunteer to donation %d: %w", donation.ID, err)
		}

		request.Status = models.RequestStatusAccepted
		request, err = tx.DeliveryRequests().Update(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to update request %d: %w", request.ID, err)
		}

		if err := tx.DeliveryRequests().ExpirePendingExcept(ctx, donation.ID, request.ID); err != nil {
			return fmt.Errorf("failed to expire sibling requests for donation %d: %w", donation.ID, err)
		}

		donor, err := tx.Donors().GetByID(ctx, donation.DonorID)
		if err != nil {
			return fmt.Errorf("failed to get donor %d: %w", donation.DonorID, err)
		}
		if donor != nil {
			notes = append(notes, pendingNotification{
				userID:   donor.UserID,
				title:    "Volunteer Assigned",
				message:  fmt.Sprintf("A volunteer has accepted to deliver donation #%d.", donation.ID),
				severity: models.SeveritySuccess,
				link:     fmt.Sprintf("/donations/%d", donation.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DeliveryRequests.WithLabelValues(string(models.RequestStatusAccepted)).Inc()
	s.dispatchNotifications(ctx, notes)
	s.logger.Infof("Volunteer %d accepted request %d", actor.ProfileID, requestID)
	return request, nil
}

// RejectRequest declines the request and runs a fresh matching round
// excluding every previously contacted volunteer. Exactly one of two
// outcomes happens: a new pending request for an uncontacted
// volunteer, or escalation to manual assignment.
func (s *Service) RejectRequest(ctx context.Context, actor models.Actor, requestID int64) (*models.DeliveryRequest, error) {
	var (
		request   *models.DeliveryRequest
		donation  *models.Donation
		notes     []pendingNotification
		escalated bool
	)

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.DeliveryRequests().GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to lock delivery request %d: %w", requestID, err)
		}
		if request == nil {
			return ErrNotFound
		}

		if actor.Role != models.RoleVolunteer || actor.ProfileID != request.VolunteerID {
			return guardf(ReasonForbidden, "only the contacted volunteer can answer this request")
		}
		if !request.IsPending() {
			return guardf(ReasonInvalidState, "this request is no longer pending")
		}

		request.Status = models.RequestStatusRejected
		request, err = tx.DeliveryRequests().Update(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to update request %d: %w", request.ID, err)
		}

		donation, err = tx.Donations().GetByIDForUpdate(ctx, request.DonationID)
		if err != nil {
			return fmt.Errorf("failed to lock donation %d: %w", request.DonationID, err)
		}
		if donation == nil {
			return ErrNotFound
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

		// The rejecting volunteer is already in the contacted set, so
		// the next round cannot pick them again.
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
			if _, err := tx.Donations().Update(ctx, donation); err != nil {
				return fmt.Errorf("failed to escalate donation %d: %w", donation.ID, err)
			}
			notes = append(notes, s.escalationNotices(ctx, donation,
				"Action Required: Volunteer Rejected & No Backup",
				fmt.Sprintf("All matched volunteers rejected or unavailable for Donation #%d. Please assign manually.", donation.ID))...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.DeliveryRequests.WithLabelValues(string(models.RequestStatusRejected)).Inc()
	s.dispatchNotifications(ctx, notes)
	if escalated {
		s.metrics.Escalations.Inc()
		s.sendAlert(ctx,
			fmt.Sprintf("Urgent: Volunteer Rejection - No Backup for Donation #%d", donation.ID),
			fmt.Sprintf("Donation #%d has been rejected by the assigned volunteer and no backup volunteers are available. Please assign manually via the admin panel.", donation.ID))
	}
	return request, nil
}
