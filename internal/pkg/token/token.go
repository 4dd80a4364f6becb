package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BrewPassApp/BrewPass/internal/pkg/env"
)

// DefaultTTL is the lifetime of issued API tokens.
const DefaultTTL = 24 * time.Hour

var (
	ErrMissingSecret = errors.New("missing signing secret")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims is the payload carried by a BrewPass API token.
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Secret returns the configured signing secret.
func Secret() []byte {
	s := env.GetEnv("JWT_SECRET", "")
	if s == "" {
		return nil
	}
	return []byte(s)
}

// Issue signs an HMAC-SHA-256 token carrying the user's identity and role.
func Issue(c Claims, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   c.UserID,
		"email": c.Email,
		"role":  c.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token string and returns its claims. Any "Bearer "
// prefix is ignored.
func Parse(tokString string, secret []byte) (*Claims, error) {
	tokString = strings.TrimPrefix(tokString, "Bearer ")
	if tokString == "" {
		return nil, ErrInvalidToken
	}
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	tok, err := jwt.Parse(tokString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not parse token: %w", err)
	}
	mapClaims, ok := tok.Claims.(jwt.MapClaims)
	if !tok.Valid || !ok {
		return nil, ErrInvalidToken
	}

	c := &Claims{}
	if uid, ok := mapClaims["uid"].(float64); ok {
		c.UserID = uint(uid)
	}
	if c.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if email, ok := mapClaims["email"].(string); ok {
		c.Email = email
	}
	if role, ok := mapClaims["role"].(string); ok {
		c.Role = role
	}
	return c, nil
}
