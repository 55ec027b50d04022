// Command seed-events replaces the event store contents with sample events
// dated relative to today.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	_ "time/tzdata"

	"etkinlik-bot/internal/app"
	"etkinlik-bot/internal/config"
	"etkinlik-bot/internal/events"
)

func main() {
	keep := flag.Bool("keep", false, "append samples without deleting existing events")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()
	if cfg.StoreDriver == config.StoreMemory {
		log.Fatalf("❌ STORE_DRIVER=memory has nothing to seed; use mongo or sqlite")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open event store: %v", err)
	}
	if closeStore != nil {
		defer closeStore(context.Background())
	}
	w, ok := store.(events.Writer)
	if !ok {
		log.Fatalf("❌ Event store %s is read-only", cfg.StoreDriver)
	}

	if !*keep {
		if err := w.DeleteAll(ctx); err != nil {
			log.Fatalf("❌ Failed to clear events: %v", err)
		}
		log.Println("🧹 Existing events removed")
	}
	samples := events.SampleEvents(cfg.City, time.Now().In(cfg.Location()))
	if err := w.InsertMany(ctx, samples); err != nil {
		log.Fatalf("❌ Failed to insert events: %v", err)
	}
	log.Printf("✅ Seeded %d events for %s", len(samples), cfg.City)
}
