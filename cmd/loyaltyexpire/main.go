// cmd/loyaltyexpire/main.go
//
// One-shot job that expires stale loyalty points. Intended to run from cron;
// exits 0 on success, 1 on any failure.
package main

import (
	"log"
	"os"
	"time"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/loyalty"
	"github.com/your-org/bakery-backend/internal/infrastructure/database/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		log.Printf("Database health check failed: %v", err)
		os.Exit(1)
	}

	service := loyalty.NewService(db.GetDB(), cfg)

	start := time.Now()
	result, err := service.ExpireStalePoints(start.UTC())
	if err != nil {
		log.Printf("Loyalty expiry failed: %v", err)
		os.Exit(1)
	}

	log.Printf("Loyalty expiry complete: %d accounts, %d points expired in %s",
		result.AccountsExpired, result.PointsExpired, time.Since(start).Round(time.Millisecond))
}
