package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shareeat/shareeat/internal/models"
)

type impactRepository struct {
	q querier
}

func (r *impactRepository) Create(ctx context.Context, metrics *models.ImpactMetrics) (*models.ImpactMetrics, error) {
	query := `INSERT INTO impact_metrics (donation_id, food_waste_prevented_kg, co2_emissions_saved_kg, meals_provided, people_fed, tax_deduction_amount, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRowContext(ctx, query,
		metrics.DonationID, metrics.FoodWastePreventedKg, metrics.CO2EmissionsSavedKg,
		metrics.MealsProvided, metrics.PeopleFed, metrics.TaxDeductionAmount, metrics.CalculatedAt,
	).Scan(&metrics.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create impact metrics: %w", err)
	}
	return metrics, nil
}

func (r *impactRepository) GetByDonation(ctx context.Context, donationID int64) (*models.ImpactMetrics, error) {
	query := `SELECT id, donation_id, food_waste_prevented_kg, co2_emissions_saved_kg, meals_provided, people_fed, tax_deduction_amount, calculated_at
		FROM impact_metrics WHERE donation_id = $1`
	m := &models.ImpactMetrics{}
	err := r.q.QueryRowContext(ctx, query, donationID).Scan(
		&m.ID, &m.DonationID, &m.FoodWastePreventedKg, &m.CO2EmissionsSavedKg,
		&m.MealsProvided, &m.PeopleFed, &m.TaxDeductionAmount, &m.CalculatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get impact metrics: %w", err)
	}
	return m, nil
}
