package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shareeat/shareeat/internal/models"
)

type volunteerRepository struct {
	q querier
}

const volunteerColumns = `id, user_id, phone, address, latitude, longitude, has_vehicle, vehicle_type, vehicle_capacity, is_available, is_verified, rating, total_deliveries, created_at, updated_at`

func scanVolunteerRow(scan func(dest ...any) error) (*models.VolunteerProfile, error) {
	v := &models.VolunteerProfile{}
	err := scan(
		&v.ID, &v.UserID, &v.Phone, &v.Address, &v.Latitude, &v.Longitude,
		&v.HasVehicle, &v.VehicleType, &v.VehicleCapacity, &v.IsAvailable, &v.IsVerified,
		&v.Rating, &v.TotalDeliveries, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *volunteerRepository) Create(ctx context.Context, volunteer *models.VolunteerProfile) (*models.VolunteerProfile, error) {
	query := `INSERT INTO volunteer_profiles (user_id, phone, address, latitude, longitude, has_vehicle, vehicle_type, vehicle_capacity, is_available, is_verified, rating, total_deliveries, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	now := time.Now()
	volunteer.CreatedAt = now
	volunteer.UpdatedAt = now
	err := r.q.QueryRowContext(ctx, query,
		volunteer.UserID, volunteer.Phone, volunteer.Address, volunteer.Latitude, volunteer.Longitude,
		volunteer.HasVehicle, volunteer.VehicleType, volunteer.VehicleCapacity, volunteer.IsAvailable,
		volunteer.IsVerified, volunteer.Rating, volunteer.TotalDeliveries,
		volunteer.CreatedAt, volunteer.UpdatedAt,
	).Scan(&volunteer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create volunteer: %w", err)
	}
	return volunteer, nil
}

func (r *volunteerRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*models.VolunteerProfile, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteer_profiles WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	v, err := scanVolunteerRow(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get volunteer: %w", err)
	}
	return v, nil
}

func (r *volunteerRepository) GetByID(ctx context.Context, id int64) (*models.VolunteerProfile, error) {
	return r.getByID(ctx, id, false)
}

func (r *volunteerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.VolunteerProfile, error) {
	return r.getByID(ctx, id, true)
}

func (r *volunteerRepository) Update(ctx context.Context, volunteer *models.VolunteerProfile) (*models.VolunteerProfile, error) {
	query := `UPDATE volunteer_profiles
		SET phone = $1, address = $2, latitude = $3, longitude = $4, has_vehicle = $5,
			vehicle_type = $6, vehicle_capacity = $7, is_available = $8, is_verified = $9,
			rating = $10, total_deliveries = $11, updated_at = $12
		WHERE id = $13`
	volunteer.UpdatedAt = time.Now()
	_, err := r.q.ExecContext(ctx, query,
		volunteer.Phone, volunteer.Address, volunteer.Latitude, volunteer.Longitude,
		volunteer.HasVehicle, volunteer.VehicleType, volunteer.VehicleCapacity,
		volunteer.IsAvailable, volunteer.IsVerified, volunteer.Rating, volunteer.TotalDeliveries,
		volunteer.UpdatedAt, volunteer.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update volunteer: %w", err)
	}
	return volunteer, nil
}

func (r *volunteerRepository) ListDispatchable(ctx context.Context, exclude []int64) ([]*models.VolunteerProfile, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteer_profiles
		WHERE is_available = TRUE AND is_verified = TRUE AND NOT (id = ANY($1))
		ORDER BY id`
	if exclude == nil {
		exclude = []int64{}
	}
	rows, err := r.q.QueryContext(ctx, query, pq.Array(exclude))
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatchable volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []*models.VolunteerProfile
	for rows.Next() {
		v, err := scanVolunteerRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan volunteer: %w", err)
		}
		volunteers = append(volunteers, v)
	}
	return volunteers, rows.Err()
}
