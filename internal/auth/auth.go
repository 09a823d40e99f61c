// Package auth validates the bearer tokens that guard content mutation.
// Tokens are issued elsewhere; only HS256 tokens signed with the shared
// secret are accepted.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/golang-jwt/jwt/v5"
)

const claimsLocal = "claims"

var (
	ErrNotConfigured = errors.New("authentication not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Configured() bool {
	return len(v.secret) > 0
}

// Issue signs a token for subject valid for ttl.
func (v *Verifier) Issue(subject, role string, ttl time.Duration) (string, error) {
	if !v.Configured() {
		return "", ErrNotConfigured
	}
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *Verifier) Verify(raw string) (*Claims, error) {
	if !v.Configured() {
		return nil, ErrNotConfigured
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Required rejects requests without a valid bearer token with 401.
func Required(v *Verifier) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			claims, err := v.Verify(key)
			if err != nil {
				return false, err
			}
			c.Locals(claimsLocal, claims)
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			msg := "Missing or invalid bearer token"
			if errors.Is(err, ErrNotConfigured) {
				msg = "Authentication is not configured"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		},
	})
}

// Optional records the caller's claims when a valid token is present and
// never rejects the request.
func Optional(v *Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if raw, ok := strings.CutPrefix(header, "Bearer "); ok && v.Configured() {
			if claims, err := v.Verify(strings.TrimSpace(raw)); err == nil {
				c.Locals(claimsLocal, claims)
			}
		}
		return c.Next()
	}
}

// Passthrough is used where authentication is switched off.
func Passthrough(c *fiber.Ctx) error {
	return c.Next()
}

// FromContext returns the verified claims, if any.
func FromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsLocal).(*Claims)
	return claims, ok
}
