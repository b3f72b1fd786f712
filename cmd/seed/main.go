package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benjithedalilama/eat-wild/internal/adapters/pg"
	"github.com/benjithedalilama/eat-wild/internal/config"
	"github.com/benjithedalilama/eat-wild/internal/domain"
)

const additionalDetails = `**Meeting Location**
Marshall's Beach parking lot
https://maps.google.com/?q=37.803222,-122.476917
GPS Coordinates: 37°48'11.6"N 122°28'36.9"W

**Fishing License Required**
All participants must have a valid California one-day fishing license. You are legally responsible for obtaining your license before the event. Fines for fishing without a license can be significant.

Purchase your license online at: https://wildlife.ca.gov/Licensing/Online-Sales
- Choose "One-Day Sport Fishing License"
- Bring a digital or printed copy to the event

**What's Included**
We provide everything you need for the experience:
- Foraging gloves and tools
- Complete cooking setup
- Wine and fresh baguettes
- All cooking ingredients for moules marinières

**What to Bring**
- Your fishing license (required)
- Comfortable hiking shoes
- Layers for weather changes
- Water bottle
- If you want to take extra mussels home: bring your own container or cooler (note: there's a hike involved)

**The Hike**
Marshall's Beach requires a moderate hike down from the parking area:
- Distance: Approximately 0.3 miles (0.5 km) each way
- Elevation change: ~200 feet descent (and ascent on return)
- Terrain: Steep, sandy trail with uneven footing
- Duration: 10-15 minutes down, 15-20 minutes back up
- Difficulty: Moderate`

func main() {
	testTickets := flag.Int("tickets", 0, "number of test tickets to create if the event has none")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	repo := pg.NewRepository(pool)

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	event := domain.Event{
		ID:                "sf-sunset-mussels-2024",
		Title:             "SF Sunset Mussels Catch and Cook",
		Description:       "learn to forage and cook moules marinières oceanside with fine wine, fresh baguettes, and a sunset view. includes a quick moderate hike on uneven terrain and requires a day fishing license if collecting mussels",
		Date:              "Sunday 11/2 @ 1pm",
		Location:          "San Francisco Coast",
		Price:             200,
		MaxCapacity:       20,
		AdditionalDetails: additionalDetails,
	}

	err = repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.UpsertEvent(ctx, tx, event)
	})
	if err != nil {
		log.Fatalf("failed to seed event: %v", err)
	}
	log.Printf("seeded event: %s", event.ID)

	if *testTickets > 0 {
		existing, err := repo.CountTickets(ctx, event.ID)
		if err != nil {
			log.Fatalf("failed to count tickets: %v", err)
		}
		if existing > 0 {
			log.Printf("event already has %d tickets, skipping test tickets", existing)
			return
		}
		for i := 1; i <= *testTickets; i++ {
			sessionID := fmt.Sprintf("test_ticket_%d_%d", i, time.Now().UnixNano())
			ticket := domain.NewTicket(event.ID, fmt.Sprintf("Test Customer %d", i), fmt.Sprintf("test%d@example.com", i), sessionID)
			if err := repo.CreateTicket(ctx, ticket); err != nil {
				log.Fatalf("failed to create test ticket: %v", err)
			}
		}
		log.Printf("created %d test tickets", *testTickets)
	}
}
