// Package auth issues and validates the JWT bearer tokens that carry the
// owner identity through the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/config"
)

var (
	// ErrInvalidToken indicates the token is malformed or its signature
	// does not verify.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token's lifetime has elapsed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)

// Claims is the validated identity extracted from a token.
type Claims struct {
	OwnerID   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates owner-scoped bearer tokens.
type TokenService interface {
	// GenerateToken creates a signed token for the owner.
	GenerateToken(ctx context.Context, ownerID uuid.UUID) (string, error)

	// ValidateToken verifies the token and extracts its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type tokenClaims struct {
	OwnerID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// hmacTokenService signs tokens with HMAC-SHA256.
type hmacTokenService struct {
	signingKey []byte
	lifetime   time.Duration
	clockSkew  time.Duration
	now        func() time.Time
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	return &hmacTokenService{
		signingKey: []byte(cfg.JWTSecret),
		lifetime:   time.Duration(cfg.TokenLifetimeMin) * time.Minute,
		clockSkew:  2 * time.Minute,
		now:        time.Now,
	}, nil
}

func (s *hmacTokenService) GenerateToken(ctx context.Context, ownerID uuid.UUID) (string, error) {
	now := s.now()
	claims := tokenClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *hmacTokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(s.now),
	}

	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing owner claim", ErrInvalidToken)
	}

	out := &Claims{OwnerID: claims.OwnerID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
