package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("FORMULYNX_SERVER_PORT")
		os.Unsetenv("FORMULYNX_SERVER_ENVIRONMENT")
		os.Unsetenv("FORMULYNX_CATALOG_SEED_PATH")
		os.Unsetenv("FORMULYNX_CATALOG_CAUTION_PATH")
		os.Unsetenv("FORMULYNX_CATALOG_WATCH")
		os.Unsetenv("FORMULYNX_CAS_API_KEY")
		os.Unsetenv("FORMULYNX_CAS_BASE_URL")
		os.Unsetenv("FORMULYNX_CAS_REQUESTS_PER_SECOND")
		os.Unsetenv("FORMULYNX_MATCHING_FUZZY_THRESHOLD")
		os.Unsetenv("FORMULYNX_MATCHING_SYNONYM_SCORE")
		os.Unsetenv("FORMULYNX_MATCHING_ENABLE_FUZZY")
		os.Unsetenv("FORMULYNX_CACHE_TTL")
		os.Unsetenv("FORMULYNX_ENRICHMENT_TIMEOUT")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required seed path
		os.Setenv("FORMULYNX_CATALOG_SEED_PATH", "/data/catalog.json")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.CAS.BaseURL != "https://commonchemistry.cas.org/api" {
			t.Errorf("CAS.BaseURL = %s, want https://commonchemistry.cas.org/api", cfg.CAS.BaseURL)
		}
		if cfg.CAS.RequestsPerSecond != 5.0 {
			t.Errorf("CAS.RequestsPerSecond = %v, want 5.0", cfg.CAS.RequestsPerSecond)
		}
		if cfg.Matching.FuzzyThreshold != 0.75 {
			t.Errorf("Matching.FuzzyThreshold = %v, want 0.75", cfg.Matching.FuzzyThreshold)
		}
		if cfg.Matching.SynonymScore != 0.9 {
			t.Errorf("Matching.SynonymScore = %v, want 0.9", cfg.Matching.SynonymScore)
		}
		if !cfg.Matching.EnableFuzzy {
			t.Error("Matching.EnableFuzzy = false, want true")
		}
		if cfg.Catalog.Watch {
			t.Error("Catalog.Watch = true, want false")
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Enrichment.Timeout != 15*time.Second {
			t.Errorf("Enrichment.Timeout = %v, want 15s", cfg.Enrichment.Timeout)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FORMULYNX_SERVER_PORT", "9090")
		os.Setenv("FORMULYNX_SERVER_ENVIRONMENT", "production")
		os.Setenv("FORMULYNX_CATALOG_SEED_PATH", "/srv/catalog.json")
		os.Setenv("FORMULYNX_CATALOG_CAUTION_PATH", "/srv/cautions.json")
		os.Setenv("FORMULYNX_CATALOG_WATCH", "true")
		os.Setenv("FORMULYNX_CAS_API_KEY", "custom-api-key")
		os.Setenv("FORMULYNX_CAS_BASE_URL", "https://registry.example.com/api")
		os.Setenv("FORMULYNX_CAS_REQUESTS_PER_SECOND", "2.5")
		os.Setenv("FORMULYNX_MATCHING_FUZZY_THRESHOLD", "0.8")
		os.Setenv("FORMULYNX_MATCHING_SYNONYM_SCORE", "0.85")
		os.Setenv("FORMULYNX_MATCHING_ENABLE_FUZZY", "false")
		os.Setenv("FORMULYNX_CACHE_TTL", "1h")
		os.Setenv("FORMULYNX_ENRICHMENT_TIMEOUT", "5s")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Catalog.SeedPath != "/srv/catalog.json" {
			t.Errorf("Catalog.SeedPath = %s, want /srv/catalog.json", cfg.Catalog.SeedPath)
		}
		if cfg.Catalog.CautionPath != "/srv/cautions.json" {
			t.Errorf("Catalog.CautionPath = %s, want /srv/cautions.json", cfg.Catalog.CautionPath)
		}
		if !cfg.Catalog.Watch {
			t.Error("Catalog.Watch = false, want true")
		}
		if cfg.CAS.APIKey != "custom-api-key" {
			t.Errorf("CAS.APIKey = %s, want custom-api-key", cfg.CAS.APIKey)
		}
		if cfg.CAS.BaseURL != "https://registry.example.com/api" {
			t.Errorf("CAS.BaseURL = %s, want https://registry.example.com/api", cfg.CAS.BaseURL)
		}
		if cfg.CAS.RequestsPerSecond != 2.5 {
			t.Errorf("CAS.RequestsPerSecond = %v, want 2.5", cfg.CAS.RequestsPerSecond)
		}
		if cfg.Matching.FuzzyThreshold != 0.8 {
			t.Errorf("Matching.FuzzyThreshold = %v, want 0.8", cfg.Matching.FuzzyThreshold)
		}
		if cfg.Matching.SynonymScore != 0.85 {
			t.Errorf("Matching.SynonymScore = %v, want 0.85", cfg.Matching.SynonymScore)
		}
		if cfg.Matching.EnableFuzzy {
			t.Error("Matching.EnableFuzzy = true, want false")
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Enrichment.Timeout != 5*time.Second {
			t.Errorf("Enrichment.Timeout = %v, want 5s", cfg.Enrichment.Timeout)
		}
	})

	t.Run("fails validation when seed path is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing seed path")
		}
		if !strings.Contains(err.Error(), "catalog seed path is required") {
			t.Errorf("Load() error = %v, want 'catalog seed path is required'", err)
		}
	})

	t.Run("fails validation for out-of-range fuzzy threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FORMULYNX_CATALOG_SEED_PATH", "/data/catalog.json")
		os.Setenv("FORMULYNX_MATCHING_FUZZY_THRESHOLD", "1.5")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for threshold out of range")
		}
		if !strings.Contains(err.Error(), "fuzzy threshold") {
			t.Errorf("Load() error = %v, want fuzzy threshold complaint", err)
		}
	})

	t.Run("fails validation for out-of-range synonym score", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FORMULYNX_CATALOG_SEED_PATH", "/data/catalog.json")
		os.Setenv("FORMULYNX_MATCHING_SYNONYM_SCORE", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for synonym score out of range")
		}
		if !strings.Contains(err.Error(), "synonym score") {
			t.Errorf("Load() error = %v, want synonym score complaint", err)
		}
	})
}
