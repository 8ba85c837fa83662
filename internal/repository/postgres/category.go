package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

type categoryRepository struct {
	q querier
}

func (r *categoryRepository) Create(ctx context.Context, category *models.FoodCategory) (*models.FoodCategory, error) {
	query := `INSERT INTO food_categories (name, description, requires_refrigeration, average_shelf_life_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	err := r.q.QueryRowContext(ctx, query,
		category.Name, category.Description, category.RequiresRefrigeration,
		category.AverageShelfLifeHours, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.FoodCategory, error) {
	query := `SELECT id, name, description, requires_refrigeration, average_shelf_life_hours, created_at, updated_at
		FROM food_categories WHERE id = $1`
	c := &models.FoodCategory{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.RequiresRefrigeration,
		&c.AverageShelfLifeHours, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.FoodCategory, error) {
	query := `SELECT id, name, description, requires_refrigeration, average_shelf_life_hours, created_at, updated_at
		FROM food_categories ORDER BY name`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.FoodCategory
	for rows.Next() {
		c := &models.FoodCategory{}
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.RequiresRefrigeration,
			&c.AverageShelfLifeHours, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
