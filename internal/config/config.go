package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for lockstep.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, an optional JSON file, and built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token signing parameters used by the sync server.
	App App `envPrefix:"APP_"`

	// Storage holds the client's local database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network settings for the sync server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds network settings for the client transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Auth holds the client's account credentials.
	Auth Auth `envPrefix:"AUTH_"`

	// Workers holds background sync job settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file merged
	// on top of the environment. Populated via the CONFIG env variable.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level settings that control token lifecycle.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is how long an issued token remains valid (e.g. "12h").
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// PasswordHashKey is the HMAC secret used to digest account passwords
	// before storing or comparing them.
	// Env: APP_PASSWORD_HASH_KEY
	PasswordHashKey string `env:"PASSWORD_HASH_KEY"`
}

// Storage groups persistence settings for the client side.
type Storage struct {
	// DB holds the local SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the client's local database.
type DB struct {
	// DSN is the SQLite file path used for the local store
	// (e.g. "/home/user/.lockstep/local.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds network settings for the sync server process.
type Server struct {
	// HTTPAddress is the TCP address the HTTP server listens on,
	// in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request (e.g. "30s").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds network settings for the client transport layer.
type Adapter struct {
	// BaseURL is the sync server endpoint the client talks to
	// (e.g. "https://sync.example.com").
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the default timeout for outbound requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Auth holds the account credentials the client presents on login.
type Auth struct {
	// Login is the account login.
	// Env: AUTH_LOGIN
	Login string `env:"LOGIN"`

	// Password is the account password. On first login it registers the
	// account.
	// Env: AUTH_PASSWORD
	Password string `env:"PASSWORD"`
}

// Workers holds configuration for background jobs.
type Workers struct {
	// SyncInterval defines how often the periodic sync job fires.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// GetStructuredConfig loads and merges the application configuration from all
// available sources in priority order (earlier sources win for non-zero
// fields):
//  1. Environment variables
//  2. JSON file (path resolved from source 1)
//  3. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withJSON().
		withDefaults().
		build()
}
