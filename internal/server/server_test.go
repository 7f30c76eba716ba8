package server_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjaswicak/test-fullstack/internal/config"
	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/pgtest"
	"github.com/anjaswicak/test-fullstack/internal/server"
)

func TestMain(m *testing.M) {
	code := m.Run()
	pgtest.Terminate()
	os.Exit(code)
}

func testConfig() *config.Config {
	return &config.Config{
		AccessSecret:    "test-access",
		RefreshSecret:   "test-refresh",
		AccessExpiry:    15 * time.Minute,
		RefreshExpiry:   7 * 24 * time.Hour,
		CORSOrigins:     "http://localhost:3000",
		AppEnv:          "test",
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func (cl client) do(method, path, token, body string, cookies ...*http.Cookie) *http.Response {
	cl.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (cl client) register(username, password string) uint {
	resp := cl.do(fiber.MethodPost, "/api/register", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(cl.t, fiber.StatusCreated, resp.StatusCode)
	var out dto.RegisterResponse
	decode(cl.t, resp, &out)
	return out.ID
}

func (cl client) login(username, password string) (string, *http.Cookie) {
	resp := cl.do(fiber.MethodPost, "/api/login", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(cl.t, fiber.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(cl.t, resp, &out)
	return out.Token, refreshCookie(resp)
}

func refreshCookie(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == "refresh_token" {
			return ck
		}
	}
	return nil
}

func TestFeedScenario(t *testing.T) {
	db := pgtest.DB(t)
	cl := client{t: t, app: server.New(testConfig(), db)}

	cl.register("alice", "password1")
	bobID := cl.register("bob", "password2")
	cl.register("carol", "password3")

	alice, _ := cl.login("alice", "password1")
	bob, _ := cl.login("bob", "password2")
	carol, _ := cl.login("carol", "password3")

	resp := cl.do(fiber.MethodPost, fmt.Sprintf("/api/follow/%d", bobID), alice, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var msg dto.MessageResponse
	decode(t, resp, &msg)
	assert.Equal(t, fmt.Sprintf("you are now following user %d", bobID), msg.Message)

	resp = cl.do(fiber.MethodPost, "/api/posts", bob, `{"content":"hello"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = cl.do(fiber.MethodPost, "/api/posts", carol, `{"content":"not for alice"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = cl.do(fiber.MethodGet, "/api/feed", alice, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var feed []dto.FeedItem
	decode(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, "bob", feed[0].Author)
	assert.Equal(t, "hello", feed[0].Content)

	resp = cl.do(fiber.MethodGet, fmt.Sprintf("/api/users/%d/followers", bobID), "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var followers []dto.UserSummary
	decode(t, resp, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	resp = cl.do(fiber.MethodGet, "/api/feed", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPostLengthOverHTTP(t *testing.T) {
	db := pgtest.DB(t)
	cl := client{t: t, app: server.New(testConfig(), db)}
	cl.register("alice", "password1")
	token, _ := cl.login("alice", "password1")

	resp := cl.do(fiber.MethodPost, "/api/posts", token, fmt.Sprintf(`{"content":%q}`, strings.Repeat("x", 200)))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = cl.do(fiber.MethodPost, "/api/posts", token, fmt.Sprintf(`{"content":%q}`, strings.Repeat("x", 201)))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var out dto.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "content exceeds 200 characters", out.Error)
}

func TestRefreshCookieFlow(t *testing.T) {
	db := pgtest.DB(t)
	cl := client{t: t, app: server.New(testConfig(), db)}
	cl.register("alice", "password1")

	_, first := cl.login("alice", "password1")
	require.NotNil(t, first)
	assert.Equal(t, "/api", first.Path)
	assert.True(t, first.HttpOnly)
	assert.False(t, first.Secure)

	resp := cl.do(fiber.MethodPost, "/api/refresh", "", "", first)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	second := refreshCookie(resp)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)
	var out dto.RefreshResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.AccessToken)

	resp = cl.do(fiber.MethodGet, "/api/feed", out.AccessToken, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	tampered := &http.Cookie{Name: "refresh_token", Value: second.Value + "x"}
	resp = cl.do(fiber.MethodPost, "/api/refresh", "", "", tampered)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, refreshCookie(resp))

	resp = cl.do(fiber.MethodPost, "/api/refresh", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, refreshCookie(resp))

	resp = cl.do(fiber.MethodPost, "/api/logout", "", "", second)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cleared := refreshCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// The logged out token can no longer be rotated.
	resp = cl.do(fiber.MethodPost, "/api/refresh", "", "", second)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	db := pgtest.DB(t)
	cl := client{t: t, app: server.New(testConfig(), db)}

	for _, path := range []string{"/health", "/api/health"} {
		resp := cl.do(fiber.MethodGet, path, "", "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
		var out dto.HealthResponse
		decode(t, resp, &out)
		assert.Equal(t, dto.HealthResponse{OK: true, Message: "API up", DB: "ok"}, out)
	}

	resp := cl.do(fiber.MethodGet, "/api/nope", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var out dto.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "Cannot GET /api/nope", out.Error)
}
