package dispatch

import (
	"context"
	"math"
	"testing"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/routing"
	"github.com/sirupsen/logrus"
)

func ptr(v float64) *float64 { return &v }

// fixedRouter returns a preconfigured distance per destination
// latitude, which lets tests place volunteers at exact pickup
// distances without haversine arithmetic.
type fixedRouter struct {
	distances map[float64]float64
	fallback  float64
}

func (r *fixedRouter) DistanceKm(ctx context.Context, from, to routing.Coordinate) float64 {
	if d, ok := r.distances[from.Lat]; ok {
		return d
	}
	return r.fallback
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func courier(id int64, lat float64, rating float64, deliveries int, vehicle bool) *models.VolunteerProfile {
	return &models.VolunteerProfile{
		ID:              id,
		Latitude:        ptr(lat),
		Longitude:       ptr(13.4),
		HasVehicle:      vehicle,
		IsAvailable:     true,
		IsVerified:      true,
		Rating:          rating,
		TotalDeliveries: deliveries,
	}
}

func testDonor() *models.DonorProfile {
	return &models.DonorProfile{ID: 1, Latitude: ptr(52.52), Longitude: ptr(13.4)}
}

func testRecipient() *models.RecipientProfile {
	return &models.RecipientProfile{ID: 1, Latitude: ptr(52.5), Longitude: ptr(13.41), IsVerified: true}
}

func TestScoreVolunteer(t *testing.T) {
	tests := []struct {
		name     string
		v        *models.VolunteerProfile
		pickupKm float64
		want     float64
	}{
		{
			name:     "experienced nearby driver",
			v:        &models.VolunteerProfile{Rating: 4.5, TotalDeliveries: 60, HasVehicle: true},
			pickupKm: 3,
			// 100 + 4.5*5 + 20 + 15
			want: 157.5,
		},
		{
			name:     "new volunteer on foot",
			v:        &models.VolunteerProfile{},
			pickupKm: 1,
			want:     100,
		},
		{
			name:     "near penalty band",
			v:        &models.VolunteerProfile{},
			pickupKm: 7,
			want:     90,
		},
		{
			name:     "mid penalty band",
			v:        &models.VolunteerProfile{},
			pickupKm: 15,
			want:     70,
		},
		{
			name:     "far penalty band",
			v:        &models.VolunteerProfile{},
			pickupKm: 35,
			want:     50,
		},
		{
			name:     "threshold is exclusive",
			v:        &models.VolunteerProfile{},
			pickupKm: 5,
			want:     100,
		},
		{
			name:     "experience bonus needs more than fifty",
			v:        &models.VolunteerProfile{TotalDeliveries: 50},
			pickupKm: 1,
			want:     100,
		},
		{
			name:     "unknown location penalty lands in the far band",
			v:        &models.VolunteerProfile{Rating: 5, HasVehicle: true},
			pickupKm: unknownLocationPenaltyKm,
			// 100 - 50 + 25 + 15
			want: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreVolunteer(tt.v, tt.pickupKm); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("scoreVolunteer(pickup %.0f km) = %.2f, want %.2f", tt.pickupKm, got, tt.want)
			}
		})
	}
}

func TestFindOptimalVolunteerPicksBest(t *testing.T) {
	router := &fixedRouter{distances: map[float64]float64{
		52.10: 3,  // volunteer 1
		52.20: 25, // volunteer 2
	}}
	selector := NewSelector(router, testLogger())

	pool := []*models.VolunteerProfile{
		courier(1, 52.10, 4.5, 60, true), // 157.5
		courier(2, 52.20, 5.0, 80, true), // 100-50+25+20+15 = 110
	}

	sel := selector.FindOptimalVolunteer(context.Background(), testDonor(), testRecipient(), pool)
	if sel.Volunteer == nil || sel.Volunteer.ID != 1 {
		t.Fatalf("selected %+v, want volunteer 1", sel.Volunteer)
	}
	if math.Abs(sel.Score-157.5) > 1e-9 {
		t.Errorf("score = %.2f, want 157.5", sel.Score)
	}
}

func TestFindOptimalVolunteerSkipsIneligible(t *testing.T) {
	router := &fixedRouter{fallback: 1}
	selector := NewSelector(router, testLogger())

	unavailable := courier(1, 52.10, 5, 100, true)
	unavailable.IsAvailable = false
	unverified := courier(2, 52.10, 5, 100, true)
	unverified.IsVerified = false
	eligible := courier(3, 52.10, 2, 0, false)

	sel := selector.FindOptimalVolunteer(context.Background(), testDonor(), testRecipient(),
		[]*models.VolunteerProfile{unavailable, unverified, eligible})
	if sel.Volunteer == nil || sel.Volunteer.ID != 3 {
		t.Fatalf("selected %+v, want volunteer 3", sel.Volunteer)
	}
}

func TestFindOptimalVolunteerEmptyPool(t *testing.T) {
	selector := NewSelector(&fixedRouter{}, testLogger())

	sel := selector.FindOptimalVolunteer(context.Background(), testDonor(), testRecipient(), nil)
	if sel.Volunteer != nil {
		t.Errorf("empty pool selected volunteer %d", sel.Volunteer.ID)
	}

	allFiltered := courier(1, 52.10, 5, 100, true)
	allFiltered.IsAvailable = false
	sel = selector.FindOptimalVolunteer(context.Background(), testDonor(), testRecipient(),
		[]*models.VolunteerProfile{allFiltered})
	if sel.Volunteer != nil {
		t.Errorf("fully filtered pool selected volunteer %d", sel.Volunteer.ID)
	}
}

func TestFindOptimalVolunteerUnknownLocationRanksLast(t *testing.T) {
	router := &fixedRouter{distances: map[float64]float64{52.10: 3}}
	selector := NewSelector(router, testLogger())

	nowhere := &models.VolunteerProfile{
		ID: 1, IsAvailable: true, IsVerified: true,
		Rating: 5, TotalDeliveries: 100, HasVehicle: true, // 110 with far penalty
	}
	nearby := courier(2, 52.10, 0, 0, false) // 100, no penalty

	sel := selector.FindOptimalVolunteer(context.Background(), testDonor(), testRecipient(),
		[]*models.VolunteerProfile{nowhere, nearby})
	// Even penalized, a strong record can win; the penalty only ranks,
	// never excludes.
	if sel.Volunteer == nil || sel.Volunteer.ID != 1 {
		t.Fatalf("selected %+v, want volunteer 1", sel.Volunteer)
	}

	weakNowhere := &models.VolunteerProfile{ID: 3, IsAvailable: true, IsVerified: true} // 50
	sel = selector.FindOptimalVolunteer(context.Background(), testDonor(), testRecipient(),
		[]*models.VolunteerProfile{weakNowhere, nearby})
	if sel.Volunteer == nil || sel.Volunteer.ID != 2 {
		t.Fatalf("selected %+v, want volunteer 2", sel.Volunteer)
	}
}

func TestFindOptimalVolunteerTieKeepsPoolOrder(t *testing.T) {
	router := &fixedRouter{fallback: 1}
	selector := NewSelector(router, testLogger())

	first := courier(1, 52.10, 3, 10, false)
	second := courier(2, 52.20, 3, 10, false)

	sel := selector.FindOptimalVolunteer(context.Background(), testDonor(), testRecipient(),
		[]*models.VolunteerProfile{first, second})
	if sel.Volunteer == nil || sel.Volunteer.ID != 1 {
		t.Fatalf("tie broke pool order: selected %+v", sel.Volunteer)
	}
}
