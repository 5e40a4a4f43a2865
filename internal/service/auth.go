package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pageza/ai-book/backend/internal/types"
)

// tokenIssuer is set as the iss claim of every service token
const tokenIssuer = "ai-book-backend"

// AuthService issues and validates HS256 service tokens for API callers
type AuthService struct {
	jwtSecret []byte
}

// Ensure AuthService implements IAuthService
var _ IAuthService = (*AuthService)(nil)

// NewAuthService creates a new AuthService instance
func NewAuthService(jwtSecret string) (*AuthService, error) {
	if jwtSecret == "" {
		return nil, errors.New("JWT secret must be set")
	}
	return &AuthService{jwtSecret: []byte(jwtSecret)}, nil
}

// GenerateToken signs a token for service. A zero ttl issues a non-expiring token.
func (s *AuthService) GenerateToken(service string, scopes []string, ttl time.Duration) (string, error) {
	if service == "" {
		return "", errors.New("service name must be set")
	}

	now := time.Now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   tokenIssuer,
			Subject:  service,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Service: service,
		Scopes:  scopes,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and returns its claims.
// Expired tokens yield ErrTokenExpired; anything else unusable yields ErrInvalidToken.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Service == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
