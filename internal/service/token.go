package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nextgenbank/onboarding-api/internal/dto"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type sessionClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies the HS256 access/refresh token pair.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// MintPair issues a fresh access and refresh token for the user.
func (m *TokenManager) MintPair(userID uuid.UUID) (*dto.TokenPair, error) {
	access, err := m.mint(userID, TokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := m.mint(userID, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) mint(userID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyAccess validates an access token and returns the subject user id.
func (m *TokenManager) VerifyAccess(tokenString string) (uuid.UUID, error) {
	return m.verify(tokenString, TokenTypeAccess)
}

// VerifyRefresh validates a refresh token and returns the subject user id.
func (m *TokenManager) VerifyRefresh(tokenString string) (uuid.UUID, error) {
	return m.verify(tokenString, TokenTypeRefresh)
}

func (m *TokenManager) verify(tokenString, wantType string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.TokenType != wantType {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
