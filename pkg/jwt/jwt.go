package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims identifies the caller of the notification API.
type Claims struct {
	UserID             string   `json:"user_id"`
	Email              string   `json:"email"`
	MerchandisingTeams []string `json:"merchandisingTeams,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for userID. Used by tests and tooling; the
// platform issues real tokens.
func GenerateToken(userID, email string, teams []string, secret string, expiry time.Duration) (string, error) {
	claims := Claims{
		UserID:             userID,
		Email:              email,
		MerchandisingTeams: teams,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and returns its claims.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("token has no email")
	}
	return claims, nil
}
