// Command seed populates a development database with plausible donors,
// recipients, volunteers, and food inventory.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/shareeat/shareeat/internal/config"
	"github.com/shareeat/shareeat/internal/models"
	"github.com/shareeat/shareeat/internal/repository"
	"github.com/shareeat/shareeat/internal/repository/postgres"
	"github.com/shareeat/shareeat/pkg/logger"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
)

// Seeded locations cluster around central Berlin so distances between
// participants stay within realistic courier range.
const (
	baseLat = 52.52
	baseLon = 13.405
)

func main() {
	seed := flag.Int64("seed", 42, "deterministic random seed")
	donors := flag.Int("donors", 8, "number of donors to create")
	recipients := flag.Int("recipients", 6, "number of recipients to create")
	volunteers := flag.Int("volunteers", 10, "number of volunteers to create")
	items := flag.Int("items", 25, "number of food items to create")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	ctx := context.Background()

	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	faker := gofakeit.New(*seed)
	store := postgres.NewStore(db.DB)

	categories, err := seedCategories(ctx, store)
	if err != nil {
		l.Fatalf("Failed to seed categories: %v", err)
	}
	l.Infof("Seeded %d food categories", len(categories))

	admin, err := store.Users().Create(ctx, &models.User{
		Email:    "ops@shareeat.local",
		FullName: "Operations",
		IsAdmin:  true,
		IsActive: true,
	})
	if err != nil {
		l.Fatalf("Failed to seed admin user: %v", err)
	}
	l.Infof("Seeded admin user %d", admin.ID)

	donorProfiles := make([]*models.DonorProfile, 0, *donors)
	for i := 0; i < *donors; i++ {
		user, err := store.Users().Create(ctx, &models.User{
			Email:    faker.Email(),
			FullName: faker.Name(),
			IsActive: true,
		})
		if err != nil {
			l.Fatalf("Failed to seed donor user: %v", err)
		}
		lat, lon := jitter(faker)
		donor, err := store.Donors().Create(ctx, &models.DonorProfile{
			UserID:       user.ID,
			BusinessName: faker.Company(),
			Phone:        faker.Phone(),
			Address:      faker.Street(),
			Latitude:     &lat,
			Longitude:    &lon,
			IsVerified:   true,
		})
		if err != nil {
			l.Fatalf("Failed to seed donor: %v", err)
		}
		donorProfiles = append(donorProfiles, donor)
	}
	l.Infof("Seeded %d donors", len(donorProfiles))

	recipientTypes := []models.RecipientType{
		models.RecipientTypeNGO, models.RecipientTypeShelter,
		models.RecipientTypeCommunity, models.RecipientTypeIndividual,
	}
	for i := 0; i < *recipients; i++ {
		user, err := store.Users().Create(ctx, &models.User{
			Email:    faker.Email(),
			FullName: faker.Name(),
			IsActive: true,
		})
		if err != nil {
			l.Fatalf("Failed to seed recipient user: %v", err)
		}
		lat, lon := jitter(faker)
		capacity := faker.Number(20, 200)
		recipient, err := store.Recipients().Create(ctx, &models.RecipientProfile{
			UserID:           user.ID,
			RecipientType:    recipientTypes[i%len(recipientTypes)],
			OrganizationName: faker.Company(),
			Phone:            faker.Phone(),
			Address:          faker.Street(),
			Latitude:         &lat,
			Longitude:        &lon,
			Capacity:         capacity,
			CurrentOccupancy: faker.Number(0, capacity/2),
			IsVerified:       true,
		})
		if err != nil {
			l.Fatalf("Failed to seed recipient: %v", err)
		}

		// Give roughly half the recipients a standing need so the
		// matching bonus has something to bite on.
		if i%2 == 0 {
			category := categories[faker.Number(0, len(categories)-1)]
			if _, err := store.Recipients().AddNeed(ctx, &models.RecipientNeed{
				RecipientID:    recipient.ID,
				FoodCategory:   category.Name,
				QuantityNeeded: faker.Number(5, 50),
				Priority:       models.NeedPriorityHigh,
				IsActive:       true,
			}); err != nil {
				l.Fatalf("Failed to seed recipient need: %v", err)
			}
		}
	}
	l.Infof("Seeded %d recipients", *recipients)

	vehicles := []models.VehicleType{models.VehicleBicycle, models.VehicleCar, models.VehicleVan}
	for i := 0; i < *volunteers; i++ {
		user, err := store.Users().Create(ctx, &models.User{
			Email:    faker.Email(),
			FullName: faker.Name(),
			IsActive: true,
		})
		if err != nil {
			l.Fatalf("Failed to seed volunteer user: %v", err)
		}
		lat, lon := jitter(faker)
		profile := &models.VolunteerProfile{
			UserID:          user.ID,
			Phone:           faker.Phone(),
			Address:         faker.Street(),
			Latitude:        &lat,
			Longitude:       &lon,
			IsAvailable:     true,
			IsVerified:      true,
			Rating:          float64(faker.Number(25, 50)) / 10,
			TotalDeliveries: faker.Number(0, 120),
		}
		if i%3 != 0 {
			vt := vehicles[i%len(vehicles)]
			capacity := float64(faker.Number(20, 400))
			profile.HasVehicle = true
			profile.VehicleType = &vt
			profile.VehicleCapacity = &capacity
		}
		if _, err := store.Volunteers().Create(ctx, profile); err != nil {
			l.Fatalf("Failed to seed volunteer: %v", err)
		}
	}
	l.Infof("Seeded %d volunteers", *volunteers)

	conditions := []models.FoodCondition{
		models.FoodConditionExcellent, models.FoodConditionGood,
		models.FoodConditionFair, models.FoodConditionGood,
	}
	now := time.Now()
	for i := 0; i < *items; i++ {
		donor := donorProfiles[faker.Number(0, len(donorProfiles)-1)]
		category := categories[faker.Number(0, len(categories)-1)]
		hoursLeft := faker.Number(1, category.AverageShelfLifeHours)
		expiry := now.Add(time.Duration(hoursLeft) * time.Hour)
		if _, err := store.FoodItems().Create(ctx, &models.FoodItem{
			DonorID:      donor.ID,
			CategoryID:   category.ID,
			Name:         faker.Dinner(),
			Description:  faker.Sentence(8),
			Quantity:     float64(faker.Number(2, 60)),
			Unit:         "kg",
			Condition:    conditions[i%len(conditions)],
			ExpiryDate:   expiry,
			PickupBefore: expiry.Add(-30 * time.Minute),
			IsAvailable:  true,
			UrgencyLevel: models.UrgencyMedium,
		}); err != nil {
			l.Fatalf("Failed to seed food item: %v", err)
		}
	}
	l.Infof("Seeded %d food items", *items)

	l.Info("Seeding complete")
}

func seedCategories(ctx context.Context, store repository.Store) ([]*models.FoodCategory, error) {
	defs := []models.FoodCategory{
		{Name: "Prepared Meals", RequiresRefrigeration: true, AverageShelfLifeHours: 24},
		{Name: "Bakery", AverageShelfLifeHours: 48},
		{Name: "Produce", AverageShelfLifeHours: 96},
		{Name: "Dairy", RequiresRefrigeration: true, AverageShelfLifeHours: 120},
		{Name: "Canned Goods", AverageShelfLifeHours: 720},
	}

	out := make([]*models.FoodCategory, 0, len(defs))
	for i := range defs {
		created, err := store.Categories().Create(ctx, &defs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

// jitter returns coordinates within roughly 10 km of the base point.
func jitter(faker *gofakeit.Faker) (float64, float64) {
	lat := baseLat + faker.Float64Range(-0.09, 0.09)
	lon := baseLon + faker.Float64Range(-0.14, 0.14)
	return lat, lon
}
