package main

import (
	"context"
	"log"
	"os"
	"time"

	"solardash/adapters/db"
	"solardash/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate <database_url> (or set DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	var runner migration.Migrator = migration.NewRunner()
	log.Printf("Migrating catalog to version %s", runner.Version())
	if err := runner.Run(ctx, conn); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	versions, err := migration.AppliedVersions(ctx, conn)
	if err != nil {
		log.Fatalf("Failed to read applied versions: %v", err)
	}
	log.Printf("Applied migration versions: %v", versions)
}
