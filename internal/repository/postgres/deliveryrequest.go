package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

type deliveryRequestRepository struct {
	q querier
}

const requestColumns = `id, donation_id, volunteer_id, status, created_at, updated_at`

func scanRequestRow(scan func(dest ...any) error) (*models.DeliveryRequest, error) {
	req := &models.DeliveryRequest{}
	err := scan(&req.ID, &req.DonationID, &req.VolunteerID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *deliveryRequestRepository) Create(ctx context.Context, request *models.DeliveryRequest) (*models.DeliveryRequest, error) {
	query := `INSERT INTO delivery_requests (donation_id, volunteer_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	err := r.q.QueryRowContext(ctx, query,
		request.DonationID, request.VolunteerID, request.Status, request.CreatedAt, request.UpdatedAt,
	).Scan(&request.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery request: %w", err)
	}
	return request, nil
}

func (r *deliveryRequestRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*models.DeliveryRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM delivery_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	req, err := scanRequestRow(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get delivery request: %w", err)
	}
	return req, nil
}

func (r *deliveryRequestRepository) GetByID(ctx context.Context, id int64) (*models.DeliveryRequest, error) {
	return r.getByID(ctx, id, false)
}

func (r *deliveryRequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.DeliveryRequest, error) {
	return r.getByID(ctx, id, true)
}

func (r *deliveryRequestRepository) Update(ctx context.Context, request *models.DeliveryRequest) (*models.DeliveryRequest, error) {
	query := `UPDATE delivery_requests SET status = $1, updated_at = $2 WHERE id = $3`
	request.UpdatedAt = time.Now()
	if _, err := r.q.ExecContext(ctx, query, request.Status, request.UpdatedAt, request.ID); err != nil {
		return nil, fmt.Errorf("failed to update delivery request: %w", err)
	}
	return request, nil
}

func (r *deliveryRequestRepository) list(ctx context.Context, where string, args ...any) ([]*models.DeliveryRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM delivery_requests ` + where
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.DeliveryRequest
	for rows.Next() {
		req, err := scanRequestRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *deliveryRequestRepository) ListByDonation(ctx context.Context, donationID int64) ([]*models.DeliveryRequest, error) {
	return r.list(ctx, `WHERE donation_id = $1 ORDER BY created_at DESC`, donationID)
}

func (r *deliveryRequestRepository) ListByVolunteer(ctx context.Context, volunteerID int64) ([]*models.DeliveryRequest, error) {
	return r.list(ctx, `WHERE volunteer_id = $1 ORDER BY created_at DESC`, volunteerID)
}

func (r *deliveryRequestRepository) ContactedVolunteerIDs(ctx context.Context, donationID int64) ([]int64, error) {
	query := `SELECT volunteer_id FROM delivery_requests WHERE donation_id = $1`
	rows, err := r.q.QueryContext(ctx, query, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacted volunteers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan volunteer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *deliveryRequestRepository) ExpirePendingExcept(ctx context.Context, donationID, acceptedID int64) error {
	query := `UPDATE delivery_requests
		SET status = $1, updated_at = $2
		WHERE donation_id = $3 AND status = $4 AND id <> $5`
	_, err := r.q.ExecContext(ctx, query,
		models.RequestStatusExpired, time.Now(), donationID, models.RequestStatusPending, acceptedID)
	if err != nil {
		return fmt.Errorf("failed to expire sibling requests: %w", err)
	}
	return nil
}

func (r *deliveryRequestRepository) MarkAllCompleted(ctx context.Context, donationID int64) error {
	query := `UPDATE delivery_requests SET status = $1, updated_at = $2 WHERE donation_id = $3`
	_, err := r.q.ExecContext(ctx, query, models.RequestStatusCompleted, time.Now(), donationID)
	if err != nil {
		return fmt.Errorf("failed to complete delivery requests: %w", err)
	}
	return nil
}
