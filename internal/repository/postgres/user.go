package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

type userRepository struct {
	q querier
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (email, full_name, is_admin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	err := r.q.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.IsAdmin, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, full_name, is_admin, is_active, created_at, updated_at
		FROM users WHERE id = $1`
	user := &models.User{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &user.IsAdmin, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) AdminUserIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM users WHERE is_admin = TRUE AND is_active = TRUE ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan admin id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
