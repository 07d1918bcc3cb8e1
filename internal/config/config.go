// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and PARLEY_* env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the document store backend: memory or mongo.
	Store string `koanf:"store"`

	// FixturePath seeds the memory store from a JSON fixture when set.
	FixturePath string `koanf:"fixture_path"`

	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// MongoCollectionPrefix is prepended to the events, results, surveys and
	// cases collection names.
	MongoCollectionPrefix string `koanf:"mongo_collection_prefix"`

	// MongoConnectTimeoutMS bounds the initial dial and ping.
	MongoConnectTimeoutMS int `koanf:"mongo_connect_timeout_ms"`

	// FetchTimeoutMS bounds every fan-out of store reads for one report.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// RangeCacheSize caps the number of cases whose score range is cached.
	RangeCacheSize int `koanf:"range_cache_size"`

	// RangeMaxAssignments caps the exhaustive score range search.
	RangeMaxAssignments int `koanf:"range_max_assignments"`

	// RangeSamples is the number of points taken from a float parameter without a step.
	RangeSamples int `koanf:"range_samples"`

	// ScoreScale is the upper bound of a normalized substantive score.
	ScoreScale float64 `koanf:"score_scale"`

	// SubWeight and RelWeight weight the substantive and relational z-scores in a total.
	SubWeight float64 `koanf:"sub_weight"`
	RelWeight float64 `koanf:"rel_weight"`

	// AITeamPrefix marks teams played by the platform's AI counterpart.
	AITeamPrefix string `koanf:"ai_team_prefix"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		Store:                 StoreMemory,
		MongoDatabase:         "parley",
		MongoConnectTimeoutMS: 10_000,
		FetchTimeoutMS:        5_000,
		RangeCacheSize:        1_024,
		RangeMaxAssignments:   250_000,
		RangeSamples:          21,
		ScoreScale:            100,
		SubWeight:             1,
		RelWeight:             1,
		AITeamPrefix:          "AI-",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StoreMongo:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case c.Store == StoreMongo && strings.TrimSpace(c.MongoURI) == "":
		return fmt.Errorf("%w: mongo store requires mongo_uri", ErrInvalidConfig)
	case c.ScoreScale <= 0:
		return fmt.Errorf("%w: score_scale must be positive", ErrInvalidConfig)
	case c.SubWeight < 0 || c.RelWeight < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	case c.RangeMaxAssignments <= 0:
		return fmt.Errorf("%w: range_max_assignments must be positive", ErrInvalidConfig)
	}
	return nil
}
