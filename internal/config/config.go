// Package config loads the server configuration from environment variables
// an optional JSON file, and built-in defaults, merging the sources with
// dario.cat/mergo (first non-zero value wins).
package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// server. It aggregates all sub-configurations and is populated by merging
// values from environment variables, an optional JSON file, and defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as token parameters.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the relational database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Sync holds the tuning knobs of the pull differencing engine and the
	// ledger retention worker.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables.
	// Env: CONFIG
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values controlling token
// verification.
type App struct {
	// TokenSignKey is the secret key used to verify JWT access tokens.
	// Must be kept confidential.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim of every accepted token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`
}

// Storage groups the configuration for the persistence backend.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DBConfig `envPrefix:"DB_"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	// DSN is the PostgreSQL connection string.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds the HTTP listener settings.
type Server struct {
	// HTTPAddress is the listen address of the HTTP server, e.g. ":8080".
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the tuning parameters of the sync engine.
type Sync struct {
	// RowModificationLimit caps the number of row modifications (puts and
	// deletes, plus the bookkeeping writes of the pull itself) a single
	// pull may produce. Pulls that would exceed it deliver a partial
	// snapshot instead.
	// Env: SYNC_ROW_MODIFICATION_LIMIT
	RowModificationLimit int `env:"ROW_MODIFICATION_LIMIT"`

	// RetentionLifetime is how long an idle client group is kept before
	// the retention worker removes its bookkeeping rows.
	// Env: SYNC_RETENTION_LIFETIME
	RetentionLifetime time.Duration `env:"RETENTION_LIFETIME"`

	// RetentionInterval is how often the retention worker runs.
	// Env: SYNC_RETENTION_INTERVAL
	RetentionInterval time.Duration `env:"RETENTION_INTERVAL"`

	// RetentionBatchSize caps how many client groups one retention sweep
	// removes.
	// Env: SYNC_RETENTION_BATCH_SIZE
	RetentionBatchSize int `env:"RETENTION_BATCH_SIZE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (first non-zero value wins):
//  1. Environment variables
//  2. JSON file (path resolved from source 1)
//  3. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withJSON().
		withDefaults().
		build()
}
