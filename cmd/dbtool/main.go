package main

import (
	"database/sql"
	"flag"
	"fmt"
	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/config"
	"itinerary-route-service/internal/platform/db"
	"log"

	"github.com/joho/godotenv"
)

// dbtool creates the schema and loads seed plans. It targets Postgres when
// DATABASE_URL is set and the SQLite file at DB_PATH otherwise.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/plans.json"), "seed plans JSON file")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	var (
		conn    *sql.DB
		dialect db.Dialect
		err     error
	)
	if url := config.Get("DATABASE_URL", ""); url != "" {
		conn, err = db.Open(url)
		dialect = db.DialectPostgres
	} else {
		conn, err = db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
		dialect = db.DialectSQLite
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(conn, dialect, *seedPath, *schemaOnly); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, d db.Dialect, seedPath string, schemaOnly bool) error {
	log.Printf("Initializing database schema dialect=%s...", d)
	if err := repositories.InitSchema(conn, d); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	if schemaOnly {
		return nil
	}

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedFromJSON(conn, d, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Println("Seeding complete.")

	return nil
}
