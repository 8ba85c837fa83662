package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

type foodItemRepository struct {
	q querier
}

// Item queries join the category so the freshness score can be
// computed without a second round trip.
const foodItemSelect = `SELECT f.id, f.donor_id, f.category_id, f.name, f.description, f.quantity, f.unit,
		f.condition, f.expiry_date, f.pickup_before, f.is_available, f.urgency_level, f.created_at, f.updated_at,
		c.id, c.name, c.description, c.requires_refrigeration, c.average_shelf_life_hours, c.created_at, c.updated_at
	FROM food_items f
	JOIN food_categories c ON c.id = f.category_id`

func scanFoodItemRow(scan func(dest ...any) error) (*models.FoodItem, error) {
	f := &models.FoodItem{Category: &models.FoodCategory{}}
	err := scan(
		&f.ID, &f.DonorID, &f.CategoryID, &f.Name, &f.Description, &f.Quantity, &f.Unit,
		&f.Condition, &f.ExpiryDate, &f.PickupBefore, &f.IsAvailable, &f.UrgencyLevel,
		&f.CreatedAt, &f.UpdatedAt,
		&f.Category.ID, &f.Category.Name, &f.Category.Description,
		&f.Category.RequiresRefrigeration, &f.Category.AverageShelfLifeHours,
		&f.Category.CreatedAt, &f.Category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *foodItemRepository) Create(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	query := `INSERT INTO food_items (donor_id, category_id, name, description, quantity, unit, condition, expiry_date, pickup_before, is_available, urgency_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Unit == "" {
		item.Unit = "kg"
	}
	err := r.q.QueryRowContext(ctx, query,
		item.DonorID, item.CategoryID, item.Name, item.Description, item.Quantity, item.Unit,
		item.Condition, item.ExpiryDate, item.PickupBefore, item.IsAvailable, item.UrgencyLevel,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create food item: %w", err)
	}
	return item, nil
}

func (r *foodItemRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*models.FoodItem, error) {
	query := foodItemSelect + ` WHERE f.id = $1`
	if forUpdate {
		// Lock the item row only; the joined category is read-only.
		query += ` FOR UPDATE OF f`
	}
	item, err := scanFoodItemRow(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}
	return item, nil
}

func (r *foodItemRepository) GetByID(ctx context.Context, id int64) (*models.FoodItem, error) {
	return r.getByID(ctx, id, false)
}

func (r *foodItemRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.FoodItem, error) {
	return r.getByID(ctx, id, true)
}

func (r *foodItemRepository) Update(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	query := `UPDATE food_items
		SET name = $1, description = $2, quantity = $3, unit = $4, condition = $5,
			expiry_date = $6, pickup_before = $7, is_available = $8, urgency_level = $9, updated_at = $10
		WHERE id = $11`
	item.UpdatedAt = time.Now()
	_, err := r.q.ExecContext(ctx, query,
		item.Name, item.Description, item.Quantity, item.Unit, item.Condition,
		item.ExpiryDate, item.PickupBefore, item.IsAvailable, item.UrgencyLevel,
		item.UpdatedAt, item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update food item: %w", err)
	}
	return item, nil
}

func (r *foodItemRepository) list(ctx context.Context, where string, args ...any) ([]*models.FoodItem, error) {
	rows, err := r.q.QueryContext(ctx, foodItemSelect+" "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query food items: %w", err)
	}
	defer rows.Close()

	var items []*models.FoodItem
	for rows.Next() {
		item, err := scanFoodItemRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *foodItemRepository) ListAvailable(ctx context.Context) ([]*models.FoodItem, error) {
	return r.list(ctx, `WHERE f.is_available = TRUE ORDER BY f.expiry_date`)
}

func (r *foodItemRepository) ListUrgent(ctx context.Context) ([]*models.FoodItem, error) {
	return r.list(ctx,
		`WHERE f.is_available = TRUE AND f.urgency_level IN ($1, $2) ORDER BY f.expiry_date`,
		models.UrgencyCritical, models.UrgencyHigh)
}
