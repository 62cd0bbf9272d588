package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type JWTService struct {
	secretKey []byte
}

func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
	}
}

// GenerateToken issues an access/refresh token pair for the given identity.
// The access token carries driver_id and role; the location handlers trust
// only these claims, never ids from request payloads.
func (s *JWTService) GenerateToken(id, name, role string) (string, string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"driver_id": id,
		"name":      name,
		"role":      role,
		"exp":       now.Add(accessTokenTTL).Unix(),
		"iat":       now.Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %v", err)
	}

	refreshClaims := jwt.MapClaims{
		"driver_id": id,
		"role":      role,
		"type":      "refresh",
		"exp":       now.Add(refreshTokenTTL).Unix(),
		"iat":       now.Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secretKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %v", err)
	}

	return accessToken, refreshToken, nil
}

// ValidateRefreshToken checks the refresh token and returns the identity id
// and role embedded in it.
func (s *JWTService) ValidateRefreshToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid refresh token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid refresh token claims")
	}
	if claims["type"] != "refresh" {
		return "", "", fmt.Errorf("not a refresh token")
	}

	id, _ := claims["driver_id"].(string)
	role, _ := claims["role"].(string)
	if id == "" || role == "" {
		return "", "", fmt.Errorf("refresh token missing identity")
	}
	return id, role, nil
}
