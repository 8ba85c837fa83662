package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
)

type donationRepository struct {
	q querier
}

const donationColumns = `id, donor_id, recipient_id, volunteer_id, status, scheduled_pickup_time, actual_pickup_time, scheduled_delivery_time, actual_delivery_time, total_weight, estimated_meals, notes, rating, feedback, created_at, updated_at`

func scanDonationRow(scan func(dest ...any) error) (*models.Donation, error) {
	d := &models.Donation{}
	err := scan(
		&d.ID, &d.DonorID, &d.RecipientID, &d.VolunteerID, &d.Status,
		&d.ScheduledPickupTime, &d.ActualPickupTime, &d.ScheduledDeliveryTime, &d.ActualDeliveryTime,
		&d.TotalWeight, &d.EstimatedMeals, &d.Notes, &d.Rating, &d.Feedback,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *donationRepository) Create(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	query := `INSERT INTO donations (donor_id, recipient_id, volunteer_id, status, scheduled_pickup_time, scheduled_delivery_time, total_weight, estimated_meals, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	now := time.Now()
	donation.CreatedAt = now
	donation.UpdatedAt = now
	if donation.Status == "" {
		donation.Status = models.DonationStatusPending
	}
	err := r.q.QueryRowContext(ctx, query,
		donation.DonorID, donation.RecipientID, donation.VolunteerID, donation.Status,
		donation.ScheduledPickupTime, donation.ScheduledDeliveryTime,
		donation.TotalWeight, donation.EstimatedMeals, donation.Notes,
		donation.CreatedAt, donation.UpdatedAt,
	).Scan(&donation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}
	return donation, nil
}

func (r *donationRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	donation, err := scanDonationRow(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	if err := r.loadItems(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *donationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	return r.getByID(ctx, id, false)
}

func (r *donationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Donation, error) {
	return r.getByID(ctx, id, true)
}

func (r *donationRepository) loadItems(ctx context.Context, donation *models.Donation) error {
	query := `SELECT id, donation_id, food_item_id, quantity FROM donation_items WHERE donation_id = $1 ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, donation.ID)
	if err != nil {
		return fmt.Errorf("failed to query donation items: %w", err)
	}
	defer rows.Close()

	donation.Items = nil
	for rows.Next() {
		var item models.DonationItem
		if err := rows.Scan(&item.ID, &item.DonationID, &item.FoodItemID, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan donation item: %w", err)
		}
		donation.Items = append(donation.Items, item)
	}
	return rows.Err()
}

func (r *donationRepository) Update(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	query := `UPDATE donations
		SET volunteer_id = $1, status = $2, scheduled_pickup_time = $3, actual_pickup_time = $4,
			scheduled_delivery_time = $5, actual_delivery_time = $6, total_weight = $7,
			estimated_meals = $8, notes = $9, rating = $10, feedback = $11, updated_at = $12
		WHERE id = $13`
	donation.UpdatedAt = time.Now()
	_, err := r.q.ExecContext(ctx, query,
		donation.VolunteerID, donation.Status, donation.ScheduledPickupTime, donation.ActualPickupTime,
		donation.ScheduledDeliveryTime, donation.ActualDeliveryTime, donation.TotalWeight,
		donation.EstimatedMeals, donation.Notes, donation.Rating, donation.Feedback,
		donation.UpdatedAt, donation.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update donation: %w", err)
	}
	return donation, nil
}

func (r *donationRepository) List(ctx context.Context, filters repository.DonationFilters) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE 1=1`
	var args []any
	argIdx := 1

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filters.Status)
		argIdx++
	}
	if filters.DonorID != nil {
		query += fmt.Sprintf(" AND donor_id = $%d", argIdx)
		args = append(args, *filters.DonorID)
		argIdx++
	}
	if filters.RecipientID != nil {
		query += fmt.Sprintf(" AND recipient_id = $%d", argIdx)
		args = append(args, *filters.RecipientID)
		argIdx++
	}
	if filters.VolunteerID != nil {
		query += fmt.Sprintf(" AND volunteer_id = $%d", argIdx)
		args = append(args, *filters.VolunteerID)
		argIdx++
	}

	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		d, err := scanDonationRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, d := range donations {
		if err := r.loadItems(ctx, d); err != nil {
			return nil, err
		}
	}
	return donations, nil
}

func (r *donationRepository) AddItem(ctx context.Context, item *models.DonationItem) (*models.DonationItem, error) {
	query := `INSERT INTO donation_items (donation_id, food_item_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := r.q.QueryRowContext(ctx, query, item.DonationID, item.FoodItemID, item.Quantity).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add donation item: %w", err)
	}
	return item, nil
}

func (r *donationRepository) ListManualAssignmentDue(ctx context.Context, cutoff time.Time) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations
		WHERE status = $1 AND scheduled_pickup_time < $2
		ORDER BY scheduled_pickup_time`
	rows, err := r.q.QueryContext(ctx, query, models.DonationStatusManualAssignment, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue donations: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		d, err := scanDonationRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func (r *donationRepository) HasOpenClaim(ctx context.Context, foodItemID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM donation_items di
		JOIN donations d ON d.id = di.donation_id
		WHERE di.food_item_id = $1 AND d.status = $2
	)`
	var exists bool
	if err := r.q.QueryRowContext(ctx, query, foodItemID, models.DonationStatusPending).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check open claims: %w", err)
	}
	return exists, nil
}

func (r *donationRepository) HasOpenClaimByRecipient(ctx context.Context, foodItemID, recipientID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM donation_items di
		JOIN donations d ON d.id = di.donation_id
		WHERE di.food_item_id = $1 AND d.recipient_id = $2 AND d.status IN ($3, $4, $5)
	)`
	var exists bool
	err := r.q.QueryRowContext(ctx, query, foodItemID, recipientID,
		models.DonationStatusPending, models.DonationStatusConfirmed, models.DonationStatusInTransit,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recipient claims: %w", err)
	}
	return exists, nil
}
