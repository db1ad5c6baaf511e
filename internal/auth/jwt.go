package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleTable   Role = "TABLE"
	RoleKitchen Role = "KITCHEN"
	RoleAdmin   Role = "ADMIN"
)

type Claims struct {
	AccountID   int64  `json:"accountId"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	TableNumber *int32 `json:"tableNumber,omitempty"`
	jwt.RegisteredClaims
}

func IssueAccessToken(secret string, accountID int64, username string, role Role, tableNumber *int32, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID:   accountID,
		Username:    username,
		Role:        role,
		TableNumber: tableNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseBearerToken(authHeader string) string {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func VerifyAccessToken(tokenString string, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token required")
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}
