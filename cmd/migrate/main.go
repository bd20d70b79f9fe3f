package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/salihRogo/movie-recommender/internal/database"
)

// Applies the schema for the links, enhanced_links and ratings tables.
// The server migrates on startup too, this exists for deploy pipelines
// that migrate before rolling the new binary.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	log.Println("🔄 Connecting to database...")

	if err := database.Initialize(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("📈 Running migrations...")

	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ All migrations completed successfully!")
}
