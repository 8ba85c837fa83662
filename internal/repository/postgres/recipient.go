package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

type recipientRepository struct {
	q querier
}

const recipientColumns = `id, user_id, recipient_type, organization_name, phone, address, latitude, longitude, capacity, current_occupancy, is_verified, created_at, updated_at`

func scanRecipientRow(scan func(dest ...any) error) (*models.RecipientProfile, error) {
	p := &models.RecipientProfile{}
	err := scan(
		&p.ID, &p.UserID, &p.RecipientType, &p.OrganizationName, &p.Phone, &p.Address,
		&p.Latitude, &p.Longitude, &p.Capacity, &p.CurrentOccupancy, &p.IsVerified,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *recipientRepository) Create(ctx context.Context, recipient *models.RecipientProfile) (*models.RecipientProfile, error) {
	query := `INSERT INTO recipient_profiles (user_id, recipient_type, organization_name, phone, address, latitude, longitude, capacity, current_occupancy, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	now := time.Now()
	recipient.CreatedAt = now
	recipient.UpdatedAt = now
	err := r.q.QueryRowContext(ctx, query,
		recipient.UserID, recipient.RecipientType, recipient.OrganizationName, recipient.Phone,
		recipient.Address, recipient.Latitude, recipient.Longitude, recipient.Capacity,
		recipient.CurrentOccupancy, recipient.IsVerified, recipient.CreatedAt, recipient.UpdatedAt,
	).Scan(&recipient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient: %w", err)
	}
	return recipient, nil
}

func (r *recipientRepository) GetByID(ctx context.Context, id int64) (*models.RecipientProfile, error) {
	query := `SELECT ` + recipientColumns + ` FROM recipient_profiles WHERE id = $1`
	p, err := scanRecipientRow(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	return p, nil
}

func (r *recipientRepository) Update(ctx context.Context, recipient *models.RecipientProfile) (*models.RecipientProfile, error) {
	query := `UPDATE recipient_profiles
		SET recipient_type = $1, organization_name = $2, phone = $3, address = $4, latitude = $5,
			longitude = $6, capacity = $7, current_occupancy = $8, is_verified = $9, updated_at = $10
		WHERE id = $11`
	recipient.UpdatedAt = time.Now()
	_, err := r.q.ExecContext(ctx, query,
		recipient.RecipientType, recipient.OrganizationName, recipient.Phone, recipient.Address,
		recipient.Latitude, recipient.Longitude, recipient.Capacity, recipient.CurrentOccupancy,
		recipient.IsVerified, recipient.UpdatedAt, recipient.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipient: %w", err)
	}
	return recipient, nil
}

func (r *recipientRepository) ListVerifiedWithCapacity(ctx context.Context) ([]*models.RecipientProfile, error) {
	query := `SELECT ` + recipientColumns + ` FROM recipient_profiles
		WHERE is_verified = TRUE AND capacity > 0
		ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []*models.RecipientProfile
	for rows.Next() {
		p, err := scanRecipientRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, p)
	}
	return recipients, rows.Err()
}

func (r *recipientRepository) AddNeed(ctx context.Context, need *models.RecipientNeed) (*models.RecipientNeed, error) {
	query := `INSERT INTO recipient_needs (recipient_id, food_category, quantity_needed, priority, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	need.CreatedAt = time.Now()
	err := r.q.QueryRowContext(ctx, query,
		need.RecipientID, need.FoodCategory, need.QuantityNeeded, need.Priority,
		need.Description, need.IsActive, need.CreatedAt,
	).Scan(&need.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipient need: %w", err)
	}
	return need, nil
}

func (r *recipientRepository) ActiveNeeds(ctx context.Context, recipientID int64) ([]models.RecipientNeed, error) {
	query := `SELECT id, recipient_id, food_category, quantity_needed, priority, description, is_active, created_at
		FROM recipient_needs
		WHERE recipient_id = $1 AND is_active = TRUE
		ORDER BY priority DESC, created_at DESC`
	rows, err := r.q.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipient needs: %w", err)
	}
	defer rows.Close()

	var needs []models.RecipientNeed
	for rows.Next() {
		var n models.RecipientNeed
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.FoodCategory, &n.QuantityNeeded, &n.Priority,
			&n.Description, &n.IsActive, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recipient need: %w", err)
		}
		needs = append(needs, n)
	}
	return needs, rows.Err()
}
