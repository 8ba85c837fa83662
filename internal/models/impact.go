package models

import "time"

// Per-kg factors used when deriving impact figures from a completed
// donation's total weight.
const (
	CO2SavedPerKg     = 2.5
	TaxDeductionPerKg = 2.0
)

// ImpactMetrics stores the derived impact of one completed donation.
type ImpactMetrics struct {
	ID                    int64     `json:"id" db:"id"`
	DonationID            int64     `json:"donation_id" db:"donation_id"`
	FoodWastePreventedKg  float64   `json:"food_waste_prevented_kg" db:"food_waste_prevented_kg"`
	CO2EmissionsSavedKg   float64   `json:"co2_emissions_saved_kg" db:"co2_emissions_saved_kg"`
	MealsProvided         int       `json:"meals_provided" db:"meals_provided"`
	PeopleFed             int       `json:"people_fed" db:"people_fed"`
	TaxDeductionAmount    float64   `json:"tax_deduction_amount" db:"tax_deduction_amount"`
	CalculatedAt          time.Time `json:"calculated_at" db:"calculated_at"`
}

// NewImpactMetrics derives impact figures for a completed donation.
func NewImpactMetrics(d *Donation, now time.Time) *ImpactMetrics {
	d.RecomputeTotals()
	return &ImpactMetrics{
		DonationID:           d.ID,
		FoodWastePreventedKg: d.TotalWeight,
		CO2EmissionsSavedKg:  d.TotalWeight * CO2SavedPerKg,
		MealsProvided:        d.EstimatedMeals,
		PeopleFed:            d.EstimatedMeals,
		TaxDeductionAmount:   d.TotalWeight * TaxDeductionPerKg,
		CalculatedAt:         now,
	}
}
