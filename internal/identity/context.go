// Package identity reads the authenticated caller that the JWT middleware put
// into the request context.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

// ContextKey is the Locals key the bearer guard stores the parsed token under.
const ContextKey = "user"

var ErrNoIdentity = errors.New("no authenticated user in context")

// Claims returns the access token claims of the caller.
func Claims(c *fiber.Ctx) (*tokens.Claims, error) {
	token, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok {
		return nil, ErrNoIdentity
	}
	claims, ok := token.Claims.(*tokens.Claims)
	if !ok {
		return nil, ErrNoIdentity
	}
	return claims, nil
}

// UserID extracts the caller's numeric id.
func UserID(c *fiber.Ctx) (uint, error) {
	claims, err := Claims(c)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

func Username(c *fiber.Ctx) string {
	claims, err := Claims(c)
	if err != nil {
		return ""
	}
	return claims.Username
}

// Set stores an already verified token, for handlers exercised without the
// middleware in front of them.
func Set(c *fiber.Ctx, claims *tokens.Claims) {
	c.Locals(ContextKey, &jwt.Token{Claims: claims, Valid: true})
}
