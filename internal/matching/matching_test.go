package matching

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shareeat/shareeat/internal/models"
	"github.com/sirupsen/logrus"
)

func ptr(v float64) *float64 { return &v }

func testItem(quantity float64, urgency models.UrgencyLevel) *models.FoodItem {
	return &models.FoodItem{
		ID:           1,
		Quantity:     quantity,
		UrgencyLevel: urgency,
		Category:     &models.FoodCategory{Name: "Bakery", AverageShelfLifeHours: 48},
	}
}

func testDonor() *models.DonorProfile {
	return &models.DonorProfile{ID: 1, Latitude: ptr(52.52), Longitude: ptr(13.4)}
}

func verifiedRecipient(id int64, capacity, occupancy int) *models.RecipientProfile {
	return &models.RecipientProfile{
		ID:               id,
		Capacity:         capacity,
		CurrentOccupancy: occupancy,
		IsVerified:       true,
		Latitude:         ptr(52.5),
		Longitude:        ptr(13.41),
	}
}

func TestMatchScoreComponents(t *testing.T) {
	donor := testDonor()

	tests := []struct {
		name      string
		item      *models.FoodItem
		recipient *models.RecipientProfile
		needs     []models.RecipientNeed
		want      float64
	}{
		{
			name:      "critical urgency with full capacity ratio",
			item:      testItem(100, models.UrgencyCritical),
			recipient: verifiedRecipient(1, 50, 0),
			// 40 urgency + 30 capacity (ratio capped at 1) + 20 locality
			want: 90,
		},
		{
			name:      "low urgency partial fit",
			item:      testItem(10, models.UrgencyLow),
			recipient: verifiedRecipient(1, 40, 0),
			// 10 + (10/40)*30 + 20
			want: 37.5,
		},
		{
			name:      "need bonus applies on category match",
			item:      testItem(20, models.UrgencyMedium),
			recipient: verifiedRecipient(1, 20, 0),
			needs: []models.RecipientNeed{
				{FoodCategory: "bakery", IsActive: true},
			},
			// 20 + 30 + 20 + 10
			want: 80,
		},
		{
			name:      "inactive need ignored",
			item:      testItem(20, models.UrgencyMedium),
			recipient: verifiedRecipient(1, 20, 0),
			needs: []models.RecipientNeed{
				{FoodCategory: "bakery", IsActive: false},
			},
			want: 70,
		},
		{
			name: "no locality bonus without recipient coordinates",
			item: testItem(20, models.UrgencyMedium),
			recipient: &models.RecipientProfile{
				ID: 1, Capacity: 20, IsVerified: true,
			},
			want: 50,
		},
		{
			name:      "zero available capacity contributes nothing",
			item:      testItem(20, models.UrgencyHigh),
			recipient: verifiedRecipient(1, 10, 10),
			want:      50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchScore(tt.item, donor, tt.recipient, tt.needs)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MatchScore() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

// fakeRecipients is an in-memory RecipientRepository for engine tests.
type fakeRecipients struct {
	candidates []*models.RecipientProfile
	needs      map[int64][]models.RecipientNeed
}

func (f *fakeRecipients) Create(ctx context.Context, r *models.RecipientProfile) (*models.RecipientProfile, error) {
	return r, nil
}

func (f *fakeRecipients) GetByID(ctx context.Context, id int64) (*models.RecipientProfile, error) {
	for _, r := range f.candidates {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRecipients) Update(ctx context.Context, r *models.RecipientProfile) (*models.RecipientProfile, error) {
	return r, nil
}

func (f *fakeRecipients) ListVerifiedWithCapacity(ctx context.Context) ([]*models.RecipientProfile, error) {
	return f.candidates, nil
}

func (f *fakeRecipients) AddNeed(ctx context.Context, need *models.RecipientNeed) (*models.RecipientNeed, error) {
	f.needs[need.RecipientID] = append(f.needs[need.RecipientID], *need)
	return need, nil
}

func (f *fakeRecipients) ActiveNeeds(ctx context.Context, recipientID int64) ([]models.RecipientNeed, error) {
	return f.needs[recipientID], nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestFindBestMatchesOrdering(t *testing.T) {
	repo := &fakeRecipients{
		candidates: []*models.RecipientProfile{
			verifiedRecipient(1, 30, 0),
			verifiedRecipient(2, 100, 0),
			verifiedRecipient(3, 30, 0),
		},
		needs: map[int64][]models.RecipientNeed{
			3: {{RecipientID: 3, FoodCategory: "Bakery", IsActive: true}},
		},
	}
	engine := NewEngine(repo, testLogger())

	item := testItem(30, models.UrgencyMedium)
	item.ExpiryDate = time.Now().Add(3 * time.Hour)

	matches, err := engine.FindBestMatches(context.Background(), item, testDonor(), 0)
	if err != nil {
		t.Fatalf("FindBestMatches() error = %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	// Recipient 3 has a matching need; 1 fills its capacity more fully
	// than 2 with the same item.
	wantOrder := []int64{3, 1, 2}
	for i, want := range wantOrder {
		if matches[i].Recipient.ID != want {
			t.Errorf("match[%d].Recipient.ID = %d, want %d", i, matches[i].Recipient.ID, want)
		}
	}

	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted: score[%d]=%.2f > score[%d]=%.2f", i, matches[i].Score, i-1, matches[i-1].Score)
		}
	}
}

func TestFindBestMatchesFiltersAndTruncates(t *testing.T) {
	repo := &fakeRecipients{
		candidates: []*models.RecipientProfile{
			verifiedRecipient(1, 5, 0),  // too small for the item
			verifiedRecipient(2, 50, 0),
			verifiedRecipient(3, 50, 0),
		},
		needs: map[int64][]models.RecipientNeed{},
	}
	engine := NewEngine(repo, testLogger())

	item := testItem(20, models.UrgencyHigh)
	item.ExpiryDate = time.Now().Add(4 * time.Hour)

	matches, err := engine.FindBestMatches(context.Background(), item, testDonor(), 1)
	if err != nil {
		t.Fatalf("FindBestMatches() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Recipient.ID != 2 {
		t.Errorf("truncation broke tie order: got recipient %d, want 2", matches[0].Recipient.ID)
	}
}

func TestFindBestMatchesEmptyPool(t *testing.T) {
	engine := NewEngine(&fakeRecipients{needs: map[int64][]models.RecipientNeed{}}, testLogger())

	item := testItem(20, models.UrgencyHigh)
	item.ExpiryDate = time.Now().Add(4 * time.Hour)

	matches, err := engine.FindBestMatches(context.Background(), item, testDonor(), 0)
	if err != nil {
		t.Fatalf("FindBestMatches() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from empty pool, want 0", len(matches))
	}
}

func TestFindBestMatchesRecomputesUrgency(t *testing.T) {
	repo := &fakeRecipients{
		candidates: []*models.RecipientProfile{verifiedRecipient(1, 50, 0)},
		needs:      map[int64][]models.RecipientNeed{},
	}
	engine := NewEngine(repo, testLogger())

	// Stored urgency is stale low; one hour to expiry is critical.
	item := testItem(20, models.UrgencyLow)
	item.ExpiryDate = time.Now().Add(time.Hour)

	if _, err := engine.FindBestMatches(context.Background(), item, testDonor(), 0); err != nil {
		t.Fatalf("FindBestMatches() error = %v", err)
	}
	if item.UrgencyLevel != models.UrgencyCritical {
		t.Errorf("item urgency = %q, want %q", item.UrgencyLevel, models.UrgencyCritical)
	}
}
