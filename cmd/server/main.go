package main

import (
	"database/sql"
	"errors"
	"fmt"
	"itinerary-route-service/internal/adapters/cache"
	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/adapters/routing"
	"itinerary-route-service/internal/api"
	"itinerary-route-service/internal/config"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (SQL, OSRM, caches) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	seedPath := config.Get("SEED_PATH", "data/seeds/plans.json")

	conn, dialect, err := openDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Initialize schema and seed demo plans on startup for local runs.
	if err := initAndSeed(conn, dialect, seedPath); err != nil {
		log.Fatal(err)
	}

	defaults, tiers, err := config.LoadOptimizerOptions(config.Get("OPTIMIZER_CONFIG_PATH", ""), services.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}

	provider, err := routing.NewOSRMRouteProvider(routing.OSRMConfig{
		BaseURL:       config.Get("OSRM_BASE_URL", "https://router.project-osrm.org"),
		Profile:       config.Get("OSRM_PROFILE", "driving"),
		Timeout:       config.GetDuration("OSRM_TIMEOUT", 3*time.Second),
		RatePerSecond: config.GetFloat("OSRM_RATE_PER_SEC", 5),
		Burst:         config.GetInt("OSRM_BURST", 5),
		UserAgent:     "itinerary-route-service/1.0",
	})
	if err != nil {
		log.Fatal(err)
	}
	resolver := routing.NewResolver(provider, routing.NewFallbackEstimator(tiers))

	segmentCache, closeCache, err := newSegmentCache(conn, dialect)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	builder := services.NewMatrixBuilder(resolver, segmentCache, config.GetInt("MATRIX_CONCURRENCY", 8))
	router := api.NewRouter(api.RouterConfig{
		DB:             conn,
		Repo:           repositories.NewSQLStopRepository(conn, dialect),
		Optimizer:      services.NewOptimizer(builder),
		Defaults:       defaults,
		AllowedOrigins: config.GetList("CORS_ALLOWED_ORIGINS"),
	})

	// Write timeout leaves room for a cold-cache matrix build against OSRM.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openDatabase prefers Postgres when DATABASE_URL is set and falls back to SQLite.
func openDatabase() (*sql.DB, db.Dialect, error) {
	if url := config.Get("DATABASE_URL", ""); url != "" {
		conn, err := db.Open(url)
		return conn, db.DialectPostgres, err
	}

	conn, err := db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
	return conn, db.DialectSQLite, err
}

func initAndSeed(conn *sql.DB, d db.Dialect, seedPath string) error {
	if err := repositories.InitSchema(conn, d); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("seed file %q not found, skipping seed", seedPath)
		return nil
	}

	if err := repositories.SeedFromJSON(conn, d, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newSegmentCache selects the SEGMENT_CACHE backend. "none" disables caching.
func newSegmentCache(conn *sql.DB, d db.Dialect) (ports.SegmentCache, func(), error) {
	ttl := config.GetDuration("SEGMENT_CACHE_TTL", 24*time.Hour)
	noop := func() {}

	switch kind := config.Get("SEGMENT_CACHE", "sql"); kind {
	case "sql":
		if d == db.DialectPostgres {
			return cache.NewSQLSegmentCache(conn, ttl), noop, nil
		}
		return cache.NewSqliteSegmentCache(conn, ttl), noop, nil
	case "memory":
		return cache.NewMemorySegmentCache(ttl), noop, nil
	case "redis":
		url := config.Get("REDIS_URL", "")
		if url == "" {
			return nil, noop, errors.New("SEGMENT_CACHE=redis requires REDIS_URL")
		}
		c, err := cache.NewRedisSegmentCache(url, ttl)
		if err != nil {
			return nil, noop, err
		}
		return c, func() { _ = c.Close() }, nil
	case "none":
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown SEGMENT_CACHE %q (want sql, memory, redis or none)", kind)
	}
}
