package models

import "time"

// FoodCategory groups food items that share storage and shelf-life
// characteristics. AverageShelfLifeHours feeds the freshness score.
type FoodCategory struct {
	ID                    int64     `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Description           string    `json:"description" db:"description"`
	RequiresRefrigeration bool      `json:"requires_refrigeration" db:"requires_refrigeration"`
	AverageShelfLifeHours int       `json:"average_shelf_life_hours" db:"average_shelf_life_hours"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}
