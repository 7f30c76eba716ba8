package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"

	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/identity"
	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

// JWTProtected requires a valid "Authorization: Bearer <access token>" header
// and stores the parsed token under identity.ContextKey.
func JWTProtected(tm *tokens.Manager) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: tm.AccessSecret()},
		Claims:     &tokens.Claims{},
		ContextKey: identity.ContextKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			claims, err := identity.Claims(c)
			if err != nil || !claims.IsAccess() {
				return invalidToken(c)
			}
			if _, err := claims.UserID(); err != nil {
				return invalidToken(c)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Missing bearer token"})
			}
			return invalidToken(c)
		},
	})
}

func invalidToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Invalid or expired token"})
}
