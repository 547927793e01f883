package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/localdeck/directory-backend/internal/adapters/blobstore"
	"github.com/localdeck/directory-backend/internal/adapters/database"
	"github.com/localdeck/directory-backend/internal/domain/entities"
	"github.com/localdeck/directory-backend/internal/infrastructure/clients/postgres"
	"github.com/localdeck/directory-backend/internal/infrastructure/clients/redis"
	"github.com/localdeck/directory-backend/pkg/config"
)

// seedListing mirrors the JSON shape of a listing record inside a shard blob.
type seedListing struct {
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Rating          *float64 `json:"rating"`
	ReviewCount     *int     `json:"review_count"`
	Photos          []string `json:"photos"`
	PhoneNumber     string   `json:"phone_number"`
	Website         string   `json:"website"`
	HasOpeningHours bool     `json:"has_opening_hours"`
	BusinessStatus  string   `json:"business_status"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating localities before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE localities`); err != nil {
			log.Fatalf("Failed to truncate localities: %v", err)
		}
	}

	localityRepo := database.NewLocalityAdapter(pgClient)

	localities := []*entities.Locality{
		{State: "California", StateSlug: "california", City: "San Francisco", CitySlug: "san-francisco", Population: intPtr(808988)},
		{State: "California", StateSlug: "california", City: "Oakland", CitySlug: "oakland", Population: intPtr(430553)},
		{State: "Texas", StateSlug: "texas", City: "Austin", CitySlug: "austin", Population: intPtr(974447)},
		{State: "Oregon", StateSlug: "oregon", City: "Portland", CitySlug: "portland", Population: intPtr(635067)},
		{State: "Montana", StateSlug: "montana", City: "Ekalaka", CitySlug: "ekalaka", Population: nil},
	}

	for _, locality := range localities {
		if err := localityRepo.Upsert(ctx, locality); err != nil {
			log.Fatalf("Failed to upsert locality %s/%s: %v", locality.StateSlug, locality.CitySlug, err)
		}
		log.Printf("Seeded locality %s, %s", locality.City, locality.State)
	}

	// Shard blobs keyed by locality.
	shards := map[*entities.Locality][]seedListing{
		localities[0]: {
			{
				Name: "Golden Gate Diner", Slug: "golden-gate-diner",
				Rating: floatPtr(4.6), ReviewCount: intPtr(412),
				Photos:      []string{"https://img.localdeck.com/golden-gate-diner/1.jpg"},
				PhoneNumber: "+1-415-555-0134", Website: "https://goldengatediner.example.com",
				HasOpeningHours: true, BusinessStatus: entities.BusinessStatusOperational,
			},
			{
				Name: "Mission Vinyl Records", Slug: "mission-vinyl-records",
				Rating: floatPtr(4.2), ReviewCount: intPtr(88),
				PhoneNumber:     "+1-415-555-0178",
				HasOpeningHours: true, BusinessStatus: entities.BusinessStatusOperational,
			},
			{
				Name: "Sunset Shoe Repair", Slug: "sunset-shoe-repair",
				Rating: floatPtr(3.1), ReviewCount: intPtr(9),
				BusinessStatus: entities.BusinessStatusOperational,
			},
		},
		localities[2]: {
			{
				Name: "Barton Springs Tacos", Slug: "barton-springs-tacos",
				Rating: floatPtr(4.8), ReviewCount: intPtr(1203),
				Photos:      []string{"https://img.localdeck.com/barton-springs-tacos/1.jpg"},
				PhoneNumber: "+1-512-555-0102", Website: "https://bartonspringstacos.example.com",
				HasOpeningHours: true, BusinessStatus: entities.BusinessStatusOperational,
			},
			{
				Name: "Closed Book Store", Slug: "closed-book-store",
				Rating: floatPtr(4.9), ReviewCount: intPtr(300),
				BusinessStatus: "CLOSED_PERMANENTLY",
			},
		},
	}

	for locality, listings := range shards {
		blob, err := json.Marshal(listings)
		if err != nil {
			log.Fatalf("Failed to marshal shard for %s: %v", locality.ShardKey(), err)
		}
		if err := redisClient.Client().Set(ctx, locality.ShardKey(), blob, 0).Err(); err != nil {
			log.Fatalf("Failed to store shard %s: %v", locality.ShardKey(), err)
		}
		log.Printf("Seeded shard %s with %d listings", locality.ShardKey(), len(listings))
	}

	// A small enriched index so exclusion is exercised end to end.
	enriched := entities.EnrichedIndex{
		Items: []entities.EnrichedIndexEntry{
			{
				URL:          "/california/san-francisco/golden-gate-diner",
				Score:        92,
				LastModified: time.Now().AddDate(0, 0, -3),
			},
		},
	}
	blob, err := json.Marshal(enriched)
	if err != nil {
		log.Fatalf("Failed to marshal enriched index: %v", err)
	}
	if err := redisClient.Client().Set(ctx, blobstore.EnrichedIndexKey, blob, 0).Err(); err != nil {
		log.Fatalf("Failed to store enriched index: %v", err)
	}
	log.Printf("Seeded enriched index with %d entries", len(enriched.Items))

	log.Println("Seeding complete.")
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
