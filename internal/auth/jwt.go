package auth

import (
	"fmt"
	"time"

	"restaurant-directory/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	accessTTL  = 24 * time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

// Claims carry only the subject. The role is looked up on every request.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, user *models.User, tokenType string) (string, error) {
	ttl := accessTTL
	if tokenType == TokenTypeRefresh {
		ttl = refreshTTL
	}
	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateTokenPair returns an access and a refresh token for user.
func GenerateTokenPair(secret string, user *models.User) (string, string, error) {
	access, err := GenerateToken(secret, user, TokenTypeAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err := GenerateToken(secret, user, TokenTypeRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseToken validates tokenStr and checks it is of wantType.
func ParseToken(secret, tokenStr, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, fmt.Errorf("token could not be decoded")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("expected %s token", wantType)
	}
	return claims, nil
}
