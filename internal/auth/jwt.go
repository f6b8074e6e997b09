// Package auth issues and validates the JWT token pairs that gate the
// authenticated storefront surface.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "bizarre-storefront"

	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// Claims are the access token claims carried on every authenticated request.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) tokenType() string { return c.TokenType }

// RefreshClaims carry only the user ID; email and role are re-read from the
// database when the pair is refreshed.
type RefreshClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *RefreshClaims) tokenType() string { return c.TokenType }

// typedClaims lets parse reject a token presented for the wrong purpose.
// Access and refresh tokens share the secret and issuer, so the token_type
// claim is the only thing keeping a long-lived refresh token out of the
// request auth gate.
type typedClaims interface {
	jwt.Claims
	tokenType() string
}

// JWTManager signs and validates HS256 token pairs with a shared secret.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateAccessToken signs a short-lived token carrying identity and role.
func (m *JWTManager) GenerateAccessToken(userID, email, role string) (string, error) {
	claims := &Claims{
		UserID:           userID,
		Email:            email,
		Role:             role,
		TokenType:        accessTokenType,
		RegisteredClaims: m.registered(userID, m.accessTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken signs a long-lived token used only to mint new pairs.
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	claims := &RefreshClaims{
		UserID:           userID,
		TokenType:        refreshTokenType,
		RegisteredClaims: m.registered(userID, m.refreshTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken checks the signature, expiry, issuer, and token type of
// an access token and returns its claims.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, accessTokenType); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

// ValidateRefreshToken checks the signature, expiry, issuer, and token type
// of a refresh token and returns its claims.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, refreshTokenType); err != nil {
		return nil, fmt.Errorf("parse refresh token: %w", err)
	}
	return claims, nil
}

func (m *JWTManager) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    tokenIssuer,
	}
}

func (m *JWTManager) parse(tokenString string, claims typedClaims, wantType string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	if claims.tokenType() != wantType {
		return fmt.Errorf("wrong token type %q", claims.tokenType())
	}
	return nil
}
