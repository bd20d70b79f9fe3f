package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/salihRogo/movie-recommender/internal/database"
	"github.com/salihRogo/movie-recommender/internal/models"
	"github.com/salihRogo/movie-recommender/internal/seed"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Parse command
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		seedDev()
	case "test":
		seedTest()
	case "clean":
		cleanSeed()
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  test  - Seed test database with minimal data")
		fmt.Println("  clean - Remove all seed data (use with caution)")
		os.Exit(1)
	}
}

func seedDev() {
	log.Println("🌱 Seeding development database...")

	if err := database.Initialize(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	log.Println("✅ Database connected")

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.SeedDev(500, 200); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Development database seeded")
	log.Println("   500 movie links, 200 users with ratings")
	log.Println("   Run the server and hit /api/v1/recommendations/by_profile to try it out")
}

func seedTest() {
	log.Println("🌱 Seeding test database...")

	if err := database.Initialize(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.SeedDev(50, 20); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Test database seeded")
}

func cleanSeed() {
	log.Println("🧹 Cleaning seed data...")

	if err := database.Initialize(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Order matters only for readability here, there are no FK constraints
	// between these tables.
	for _, m := range []interface{}{&models.Rating{}, &models.EnhancedLink{}, &models.MovieLink{}} {
		if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			log.Fatalf("❌ Failed to clean table: %v", err)
		}
	}

	log.Println("✅ Seed data removed")
}
