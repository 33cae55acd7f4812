package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prediction-pool/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticParser map[string]*services.Identity

func (p staticParser) ParseToken(token string) (*services.Identity, error) {
	if id, ok := p[token]; ok {
		return id, nil
	}
	return nil, services.ErrInvalidToken
}

var parser = staticParser{
	"player-token": {UserID: "u1", Username: "amina"},
	"admin-token":  {UserID: "a1", Username: "referee", IsAdmin: true},
}

func newTestApp() *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		if id := Identity(c); id != nil {
			return c.SendString(id.UserID)
		}
		return c.SendString("anonymous")
	}
	app.Get("/auth", RequireAuth(parser), whoami)
	app.Get("/admin", RequireAdmin(parser), whoami)
	app.Get("/optional", OptionalAuth(parser), whoami)
	app.Get("/identity", RequireAuth(parser), func(c *fiber.Ctx) error {
		return c.JSON(Identity(c))
	})
	app.Post("/bootstrap", AdminKeyMiddleware("s3cret"), whoami)
	app.Post("/disabled", AdminKeyMiddleware(""), whoami)
	return app
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, string, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)
	return resp.StatusCode, string(raw), body
}

func TestRequireAuth(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		header string
		cookie string
		status int
		user   string
	}{
		{"bearer header", "Bearer player-token", "", http.StatusOK, "u1"},
		{"cookie", "", "player-token", http.StatusOK, "u1"},
		{"header wins over cookie", "Bearer admin-token", "player-token", http.StatusOK, "a1"},
		{"no credentials", "", "", http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized, ""},
		{"non bearer scheme falls back to cookie", "Basic abc", "player-token", http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			status, raw, body := call(t, app, req)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.user, raw)
			} else {
				assert.Equal(t, "UNAUTHORIZED", body["code"])
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer player-token")
	status, _, body := call(t, app, req)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	status, _, _ = call(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, status)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	status, raw, _ := call(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a1", raw)
}

func TestOptionalAuth(t *testing.T) {
	app := newTestApp()

	status, raw, _ := call(t, app, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", raw)

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer nope")
	status, raw, _ = call(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", raw)

	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer player-token")
	_, raw, _ = call(t, app, req)
	assert.Equal(t, "u1", raw)
}

func TestAdminKeyMiddleware(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/bootstrap", nil)
	req.Header.Set(AdminKeyHeader, "s3cret")
	status, _, _ := call(t, app, req)
	assert.Equal(t, http.StatusOK, status)

	req = httptest.NewRequest(http.MethodPost, "/bootstrap", strings.NewReader(`{"adminKey":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	status, _, _ = call(t, app, req)
	assert.Equal(t, http.StatusOK, status)

	req = httptest.NewRequest(http.MethodPost, "/bootstrap", nil)
	req.Header.Set(AdminKeyHeader, "guess")
	status, _, body := call(t, app, req)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	status, _, _ = call(t, app, httptest.NewRequest(http.MethodPost, "/bootstrap", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	req = httptest.NewRequest(http.MethodPost, "/disabled", nil)
	req.Header.Set(AdminKeyHeader, "")
	status, _, _ = call(t, app, req)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestIdentityJSONUsesSnakeCase(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/identity", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	status, _, body := call(t, app, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a1", body["user_id"])
	assert.Equal(t, "referee", body["username"])
	assert.Equal(t, true, body["is_admin"])
	assert.NotContains(t, body, "userId")
}
