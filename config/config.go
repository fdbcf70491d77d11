package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Catalog    CatalogConfig
	CAS        CASConfig
	Matching   MatchingConfig
	Cache      CacheConfig
	Enrichment EnrichmentConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds ingredient catalog configuration
type CatalogConfig struct {
	SeedPath    string `mapstructure:"seed_path"`
	CautionPath string `mapstructure:"caution_path"`
	Watch       bool   `mapstructure:"watch"`
}

// CASConfig holds CAS Common Chemistry API configuration
type CASConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// MatchingConfig holds matching engine configuration. FuzzyThreshold and
// SynonymScore are empirical defaults; change only with labeled test data.
type MatchingConfig struct {
	FuzzyThreshold     float64 `mapstructure:"fuzzy_threshold"`
	SynonymScore       float64 `mapstructure:"synonym_score"`
	EnableFuzzy        bool    `mapstructure:"enable_fuzzy"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// EnrichmentConfig bounds the concurrent synonym/caution fetches
type EnrichmentConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/formulynx/")

	// Environment variable settings
	v.SetEnvPrefix("FORMULYNX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults
	v.SetDefault("catalog.seed_path", "")
	v.SetDefault("catalog.caution_path", "")
	v.SetDefault("catalog.watch", false)

	// CAS defaults
	v.SetDefault("cas.base_url", "https://commonchemistry.cas.org/api")
	v.SetDefault("cas.requests_per_second", 5.0)

	// Matching defaults
	v.SetDefault("matching.fuzzy_threshold", 0.75)
	v.SetDefault("matching.synonym_score", 0.9)
	v.SetDefault("matching.enable_fuzzy", true)
	v.SetDefault("matching.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Enrichment defaults
	v.SetDefault("enrichment.timeout", "15s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.SeedPath == "" {
		return fmt.Errorf("catalog seed path is required (set FORMULYNX_CATALOG_SEED_PATH)")
	}

	if t := config.Matching.FuzzyThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("matching fuzzy threshold must be in (0,1], got: %v", t)
	}

	if s := config.Matching.SynonymScore; s <= 0 || s > 1 {
		return fmt.Errorf("matching synonym score must be in (0,1], got: %v", s)
	}

	return nil
}
