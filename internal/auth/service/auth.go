package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/starterkit/backend/internal/clock"
)

const accessTokenType = "access"

// Claims is the payload of an access token
type Claims struct {
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenGenerator handles JWT access token generation and validation
type TokenGenerator struct {
	secret            []byte
	accessTokenExpiry time.Duration
	clock             clock.Clock
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration, clk clock.Clock) *TokenGenerator {
	return &TokenGenerator{
		secret:            []byte(secret),
		accessTokenExpiry: accessExpiry,
		clock:             clk,
	}
}

// GenerateAccessToken creates an access token with userID and role in payload
func (tg *TokenGenerator) GenerateAccessToken(userID int, role string) (string, error) {
	now := tg.clock.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.accessTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tg.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the userID and role
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (int, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tg.secret, nil
	}, jwt.WithTimeFunc(tg.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return 0, "", fmt.Errorf("token is invalid")
	}

	if claims.TokenType != accessTokenType {
		return 0, "", fmt.Errorf("token is not an access token")
	}

	if claims.UserID <= 0 {
		return 0, "", fmt.Errorf("user_id not found in token")
	}

	return claims.UserID, claims.Role, nil
}
