package config

import (
	"fmt"
	"time"
)

// ServerApp holds token settings required by the sync server.
type ServerApp struct {
	// TokenSignKey signs and verifies issued JWT tokens.
	TokenSignKey string
	// TokenIssuer is embedded as the "iss" claim.
	TokenIssuer string
	// TokenDuration is the token lifetime.
	TokenDuration time.Duration
	// PasswordHashKey digests account passwords for storage and comparison.
	PasswordHashKey string
}

// ServerHTTP holds network settings for the sync server.
type ServerHTTP struct {
	// Address is the listen address in "host:port" format.
	Address string
	// RequestTimeout bounds a single inbound request.
	RequestTimeout time.Duration
}

// ServerConfig is the server-side view assembled from [StructuredConfig].
type ServerConfig struct {
	App  ServerApp
	HTTP ServerHTTP
}

// GetServerConfig builds and validates a server-specific config view from the
// merged structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		App: ServerApp{
			TokenSignKey:    cfg.App.TokenSignKey,
			TokenIssuer:     cfg.App.TokenIssuer,
			TokenDuration:   cfg.App.TokenDuration,
			PasswordHashKey: cfg.App.PasswordHashKey,
		},
		HTTP: ServerHTTP{
			Address:        cfg.Server.HTTPAddress,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
	}

	return serverCfg, serverCfg.validate()
}

func (cfg *ServerConfig) validate() error {
	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" || cfg.App.TokenDuration == 0 || cfg.App.PasswordHashKey == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.HTTP.Address == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}
