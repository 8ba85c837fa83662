package freshness

import (
	"math"
	"testing"
	"time"

	"github.com/shareeat/shareeat/internal/models"
)

func TestUrgencyBands(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		hoursLeft float64
		want      models.UrgencyLevel
	}{
		{"one hour left", 1, models.UrgencyCritical},
		{"exactly two hours", 2, models.UrgencyCritical},
		{"just over two hours", 2.01, models.UrgencyHigh},
		{"exactly six hours", 6, models.UrgencyHigh},
		{"twelve hours", 12, models.UrgencyMedium},
		{"exactly twenty four hours", 24, models.UrgencyMedium},
		{"two days", 48, models.UrgencyLow},
		{"already expired", -3, models.UrgencyCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expiry := now.Add(time.Duration(tt.hoursLeft * float64(time.Hour)))
			if got := Urgency(now, expiry); got != tt.want {
				t.Errorf("Urgency(%v hours) = %q, want %q", tt.hoursLeft, got, tt.want)
			}
		})
	}
}

func TestUrgencyMonotonic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rank := map[models.UrgencyLevel]int{
		models.UrgencyLow:      0,
		models.UrgencyMedium:   1,
		models.UrgencyHigh:     2,
		models.UrgencyCritical: 3,
	}

	prev := rank[models.UrgencyCritical]
	for hours := 1.0; hours <= 72; hours += 0.5 {
		got := rank[Urgency(now, now.Add(time.Duration(hours*float64(time.Hour))))]
		if got > prev {
			t.Fatalf("urgency increased from rank %d to %d at %.1f hours", prev, got, hours)
		}
		prev = got
	}
}

func TestScoreExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := Score(now, now.Add(-time.Minute), 48, models.FoodConditionExcellent); got != 0 {
		t.Errorf("expired item score = %v, want 0", got)
	}
	// Boundary: expiring exactly now counts as expired.
	if got := Score(now, now, 48, models.FoodConditionExcellent); got != 0 {
		t.Errorf("item expiring now score = %v, want 0", got)
	}
}

func TestScoreOneHourLeftGoodCondition(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)

	got := Score(now, expiry, 48, models.FoodConditionGood)
	want := (1.0/48.0)*70 + 20 // ~21.46
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", got, want)
	}
	if Urgency(now, expiry) != models.UrgencyCritical {
		t.Errorf("item one hour from expiry should be critical")
	}
}

func TestScoreCappedAtHundred(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Far more shelf life remaining than the category average.
	got := Score(now, now.Add(200*time.Hour), 24, models.FoodConditionExcellent)
	if got != 100 {
		t.Errorf("Score = %v, want capped at 100", got)
	}
}

func TestScoreStrictlyDecreasing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	prev := math.Inf(1)
	for hours := 40.0; hours >= 1; hours-- {
		got := Score(now, now.Add(time.Duration(hours*float64(time.Hour))), 48, models.FoodConditionFair)
		if got >= prev {
			t.Fatalf("score did not decrease: %.4f -> %.4f at %.0f hours", prev, got, hours)
		}
		prev = got
	}
}

func TestConditionBonusOrdering(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(10 * time.Hour)

	conditions := []models.FoodCondition{
		models.FoodConditionPoor,
		models.FoodConditionFair,
		models.FoodConditionGood,
		models.FoodConditionExcellent,
	}
	prev := -1.0
	for _, c := range conditions {
		got := Score(now, expiry, 48, c)
		if got <= prev {
			t.Errorf("condition %q should score higher than the previous condition (%v <= %v)", c, got, prev)
		}
		prev = got
	}
}
