package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hiddenday/planner/pkg/collectors"
	"github.com/hiddenday/planner/pkg/config"
	"github.com/hiddenday/planner/pkg/integrations"
	"github.com/hiddenday/planner/pkg/integrations/sources/events"
	"github.com/hiddenday/planner/pkg/integrations/sources/places"
	"github.com/hiddenday/planner/pkg/interfaces"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	log.Println("Starting Hidden Day...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config: %v. Using defaults.", err)
		cfg = &config.Config{}
	}

	// Initialize database
	db, err := sql.Open("sqlite3", cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	planRepo, err := collectors.NewPlanRepository(db)
	if err != nil {
		log.Fatalf("Failed to create plan repository: %v", err)
	}

	// Geocoder (no key, descriptive user agent per usage policy)
	geocoder, err := integrations.NewNominatimClient(integrations.NominatimConfig{
		UserAgent: cfg.APIs.Geocoder.UserAgent,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoder: %v", err)
	}

	// Register provider sources in priority order. A source with no
	// credential is simply left out; the aggregator never checks.
	aggregator := integrations.NewPlanAggregator(20 * time.Second)

	if cfg.APIs.Yelp.APIKey != "" {
		yelp, err := places.NewYelpSource(places.YelpConfig{APIKey: cfg.APIs.Yelp.APIKey})
		if err != nil {
			log.Printf("Warning: Failed to create Yelp source: %v", err)
		} else {
			aggregator.Register(yelp)
		}
	}
	if cfg.APIs.Ticketmaster.APIKey != "" {
		ticketmaster, err := events.NewTicketmasterSource(events.TicketmasterConfig{APIKey: cfg.APIs.Ticketmaster.APIKey})
		if err != nil {
			log.Printf("Warning: Failed to create Ticketmaster source: %v", err)
		} else {
			aggregator.Register(ticketmaster)
		}
	}
	if cfg.APIs.Eventbrite.Enabled && cfg.APIs.Eventbrite.Token != "" {
		eventbrite, err := events.NewEventbriteSource(events.EventbriteConfig{Token: cfg.APIs.Eventbrite.Token})
		if err != nil {
			log.Printf("Warning: Failed to create Eventbrite source: %v", err)
		} else {
			aggregator.Register(eventbrite)
		}
	}
	if cfg.APIs.GooglePlaces.APIKey != "" {
		google, err := places.NewGooglePlacesSource(places.GooglePlacesConfig{APIKey: cfg.APIs.GooglePlaces.APIKey})
		if err != nil {
			log.Printf("Warning: Failed to create Google Places source: %v", err)
		} else {
			aggregator.Register(google)
		}
	}

	log.Printf("Enabled sources: %v", aggregator.Sources())

	// Initialize services
	cache := integrations.NewPlanCache(time.Duration(cfg.Cache.PlanTTLMinutes)*time.Minute, nil)
	ranker := integrations.NewRanker(nil)
	fallback := integrations.NewFallbackGenerator(nil)
	planService := interfaces.NewPlanService(geocoder, aggregator, cache, ranker, fallback)

	// Initialize HTTP handlers
	planHandler := interfaces.NewPlanHandler(planService)
	shareHandler := interfaces.NewShareHandler(planRepo)

	// Setup router
	router := mux.NewRouter()
	planHandler.RegisterRoutes(router)
	shareHandler.RegisterRoutes(router)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Log available routes
	log.Println("Available routes:")
	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		path, _ := route.GetPathTemplate()
		methods, _ := route.GetMethods()
		log.Printf("  %v %s", methods, path)
		return nil
	})

	// Setup HTTP server
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped. Enjoy the day off.")
}
