package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjaswicak/test-fullstack/internal/identity"
	"github.com/anjaswicak/test-fullstack/internal/tokens"
)

func newManager(access, refresh string) *tokens.Manager {
	return tokens.NewManager(tokens.Config{
		AccessSecret:  []byte(access),
		RefreshSecret: []byte(refresh),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

func protectedApp(tm *tokens.Manager) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(tm), func(c *fiber.Ctx) error {
		id, err := identity.UserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "username": identity.Username(c)})
	})
	return app
}

func call(t *testing.T, app *fiber.App, authorization string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestJWTProtected(t *testing.T) {
	tm := newManager("access-secret", "refresh-secret")
	app := protectedApp(tm)

	access, err := tm.IssueAccess(4, "dave")
	require.NoError(t, err)

	status, body := call(t, app, "Bearer "+access)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 4, body["id"])
	assert.Equal(t, "dave", body["username"])

	status, body = call(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Missing bearer token", body["error"])

	status, body = call(t, app, "Bearer not.a.token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["error"])

	expired, err := tm.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).IssueAccess(4, "dave")
	require.NoError(t, err)
	status, _ = call(t, app, "Bearer "+expired)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	refresh, _, err := tm.IssueRefresh(4, "dave", uuid.New())
	require.NoError(t, err)
	status, _ = call(t, app, "Bearer "+refresh)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTProtectedRejectsRefreshAudience(t *testing.T) {
	// Same secret on both sides so only the audience tells them apart.
	tm := newManager("shared", "shared")
	app := protectedApp(tm)

	refresh, _, err := tm.IssueRefresh(4, "dave", uuid.New())
	require.NoError(t, err)
	status, body := call(t, app, "Bearer "+refresh)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["error"])
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
