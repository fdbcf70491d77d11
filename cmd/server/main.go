package main

import (
	"fmt"
	"log"
	"os"

	"github.com/formulynx/backend/config"
	httpDelivery "github.com/formulynx/backend/internal/delivery/http"
	"github.com/formulynx/backend/internal/infrastructure/cache"
	"github.com/formulynx/backend/internal/infrastructure/cas"
	"github.com/formulynx/backend/internal/infrastructure/catalog"
	"github.com/formulynx/backend/internal/infrastructure/caution"
	"github.com/formulynx/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Formulynx Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Catalog is mandatory: matching is meaningless without it.
	catalogStore, err := catalog.NewStore(cfg.Catalog.SeedPath)
	if err != nil {
		log.Fatalf("Failed to load ingredient catalog: %v", err)
	}

	if cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher()
		if err != nil {
			log.Fatalf("Failed to create catalog watcher: %v", err)
		}
		defer watcher.Stop()
		if err := watcher.Watch(catalogStore); err != nil {
			log.Fatalf("Failed to watch catalog seed file: %v", err)
		}
		log.Printf("Catalog watch enabled: %s", cfg.Catalog.SeedPath)
	}

	// Cautions are enrichment only; run without them if the file is missing.
	cautionStore := caution.Empty()
	if cfg.Catalog.CautionPath != "" {
		store, err := caution.NewStore(cfg.Catalog.CautionPath)
		if err != nil {
			log.Printf("WARNING: caution file unavailable, running without cautions: %v", err)
		} else {
			cautionStore = store
		}
	}

	casClient := cas.NewClient(cfg.CAS.APIKey, cfg.CAS.BaseURL, cfg.CAS.RequestsPerSecond)
	if cfg.Server.Environment == "development" {
		casClient.SetDebug(true)
	}
	if cfg.CAS.APIKey == "" {
		log.Printf("WARNING: CAS API key not configured - synonym lookups will fail and matching will degrade")
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Initialize usecase layer
	engine := usecase.NewMatchingEngine(catalogStore, usecase.MatchConfig{
		FuzzyThreshold:     cfg.Matching.FuzzyThreshold,
		SynonymScore:       cfg.Matching.SynonymScore,
		EnableFuzzy:        cfg.Matching.EnableFuzzy,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})
	categories := usecase.NewCategoryComputer(catalogStore)

	analysisService := usecase.NewAnalysisService(
		engine,
		categories,
		casClient,
		cautionStore,
		memoryCache,
		usecase.AnalysisConfig{
			CacheTTL:          cfg.Cache.TTL,
			EnrichmentTimeout: cfg.Enrichment.Timeout,
		},
	)

	log.Printf("Matching: fuzzy_threshold=%.2f, synonym_score=%.2f, fuzzy=%v, debug=%v",
		cfg.Matching.FuzzyThreshold,
		cfg.Matching.SynonymScore,
		cfg.Matching.EnableFuzzy,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analysisService, catalogStore)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
