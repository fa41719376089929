// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mlevkov/lockstep/internal/config"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/utils"
	"github.com/mlevkov/lockstep/models"
)

// authService is the concrete implementation of AuthService.
// Accounts live in memory: an unknown login presented with a password is
// registered on the spot, a known login must present the same password.
// Passwords are stored only as HMAC-SHA256 digests.
type authService struct {
	mu sync.Mutex

	// accounts maps a login to its password digest.
	accounts map[string]string

	// hashKey is the HMAC secret used when digesting passwords before
	// storage or comparison.
	hashKey string

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs an AuthService populated with security parameters
// from cfg. The returned service is safe for concurrent use.
func NewAuthService(cfg config.ServerApp, logger *logger.Logger) AuthService {
	return &authService{
		accounts:      make(map[string]string),
		hashKey:       cfg.PasswordHashKey,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

// Login implements AuthService.
func (a *authService) Login(ctx context.Context, credentials models.Credentials) (models.Token, error) {
	log := logger.FromContext(ctx)

	if credentials.Login == "" || credentials.Password == "" {
		log.Error().Str("login", credentials.Login).Msg("empty credentials provided")
		return models.Token{}, ErrInvalidCredentials
	}

	digest := utils.HashString(credentials.Password, a.hashKey)

	a.mu.Lock()
	stored, known := a.accounts[credentials.Login]
	if !known {
		a.accounts[credentials.Login] = digest
	}
	a.mu.Unlock()

	if !known {
		log.Info().Str("login", credentials.Login).Msg("new account registered")
	} else if stored != digest {
		log.Warn().Str("login", credentials.Login).Msg("password mismatch")
		return models.Token{}, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, credentials.Login, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		log.Err(err).Str("login", credentials.Login).Msg("token generation ended with error")
		return models.Token{}, fmt.Errorf("token generation ended with error: %w", err)
	}

	return token, nil
}

// ValidateToken implements AuthService.
func (a *authService) ValidateToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, fmt.Errorf("token validation ended with error: %w", err)
	}

	return token, nil
}
