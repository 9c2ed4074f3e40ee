package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/habitboard/habitboard/config"
)

// Claims defines JWT claims used in the application. UserRoles maps a
// resource name to a role name; the optional "_global" key overrides all
// resources. The same claim is what the advisory authz decode reads on the
// display side.
type Claims struct {
	UserID    uint              `json:"user_id"`
	Username  string            `json:"username"`
	UserRoles map[string]string `json:"user_roles,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues a JWT for the specified user identity and role set.
func GenerateToken(userID uint, username string, roles map[string]string, duration time.Duration) (string, error) {
	cfg := config.Get()

	claims := Claims{
		UserID:    userID,
		Username:  username,
		UserRoles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT signature and returns its claims. This is the
// enforcing counterpart of the unverified authz decode.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
