package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/identity"
	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

const (
	RefreshCookieName = "refresh_token"
	RefreshCookiePath = "/api"
)

// CookieConfig controls the refresh cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	auth   AuthService
	cookie CookieConfig
}

func NewAuthHandler(auth AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.auth.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	pair, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	h.setRefreshCookie(c, pair)
	return c.JSON(dto.LoginResponse{Token: pair.AccessToken})
}

// Refresh rotates the refresh cookie. On failure the cookie is left alone.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	pair, err := h.auth.Refresh(c.UserContext(), c.Cookies(RefreshCookieName))
	if err != nil {
		return writeError(c, err)
	}
	h.setRefreshCookie(c, pair)
	return c.JSON(dto.RefreshResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), c.Cookies(RefreshCookieName)); err != nil {
		slog.Warn("refresh token revoke failed", "request_id", c.GetRespHeader(fiber.HeaderXRequestID), "error", err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.auth.DeleteAccount(c.UserContext(), userID, req.Password); err != nil {
		return writeError(c, err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Message: "account deleted"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, pair *tokens.Pair) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     RefreshCookiePath,
		MaxAge:   int(h.cookie.MaxAge / time.Second),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
