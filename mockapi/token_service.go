package mockapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/models"
)

// TokenService issues and validates the storefront JWTs.
type TokenService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService signs tokens with secret using HS256.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey:  []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateTokenPair returns the pair and the refresh token's jti. epoch is
// stamped on the access token so the server can revoke every token issued
// before a given point.
func (s *TokenService) GenerateTokenPair(userID, email string, epoch int) (models.TokenPair, string, error) {
	accessToken, err := s.generateToken(userID, email, "access", s.accessTTL, uuid.NewString(), epoch)
	if err != nil {
		return models.TokenPair{}, "", err
	}

	tokenID := uuid.NewString()
	refreshToken, err := s.generateToken(userID, email, "refresh", s.refreshTTL, tokenID, epoch)
	if err != nil {
		return models.TokenPair{}, "", err
	}

	return models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, tokenID, nil
}

// ValidateToken checks signature, expiry and the "typ" claim.
func (s *TokenService) ValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
		return nil, fmt.Errorf("invalid token type")
	}
	return claims, nil
}

func (s *TokenService) generateToken(userID, email, tokenType string, ttl time.Duration, tokenID string, epoch int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"typ":   tokenType,
		"jti":   tokenID,
		"ep":    epoch,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}
