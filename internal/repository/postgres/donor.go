package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

type donorRepository struct {
	q querier
}

const donorColumns = `id, user_id, business_name, phone, address, latitude, longitude, is_verified, created_at, updated_at`

func scanDonor(row *sql.Row) (*models.DonorProfile, error) {
	d := &models.DonorProfile{}
	err := row.Scan(
		&d.ID, &d.UserID, &d.BusinessName, &d.Phone, &d.Address,
		&d.Latitude, &d.Longitude, &d.IsVerified, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan donor: %w", err)
	}
	return d, nil
}

func (r *donorRepository) Create(ctx context.Context, donor *models.DonorProfile) (*models.DonorProfile, error) {
	query := `INSERT INTO donor_profiles (user_id, business_name, phone, address, latitude, longitude, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	now := time.Now()
	donor.CreatedAt = now
	donor.UpdatedAt = now
	err := r.q.QueryRowContext(ctx, query,
		donor.UserID, donor.BusinessName, donor.Phone, donor.Address,
		donor.Latitude, donor.Longitude, donor.IsVerified, donor.CreatedAt, donor.UpdatedAt,
	).Scan(&donor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create donor: %w", err)
	}
	return donor, nil
}

func (r *donorRepository) GetByID(ctx context.Context, id int64) (*models.DonorProfile, error) {
	query := `SELECT ` + donorColumns + ` FROM donor_profiles WHERE id = $1`
	return scanDonor(r.q.QueryRowContext(ctx, query, id))
}

func (r *donorRepository) Update(ctx context.Context, donor *models.DonorProfile) (*models.DonorProfile, error) {
	query := `UPDATE donor_profiles
		SET business_name = $1, phone = $2, address = $3, latitude = $4, longitude = $5, is_verified = $6, updated_at = $7
		WHERE id = $8`
	donor.UpdatedAt = time.Now()
	_, err := r.q.ExecContext(ctx, query,
		donor.BusinessName, donor.Phone, donor.Address, donor.Latitude, donor.Longitude,
		donor.IsVerified, donor.UpdatedAt, donor.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update donor: %w", err)
	}
	return donor, nil
}
