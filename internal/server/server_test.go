package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restaurant-directory/internal/auth"
	"restaurant-directory/internal/config"
	"restaurant-directory/internal/dashboard"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/storage"
	"restaurant-directory/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	testutil.UseDB(t)

	cfg := &config.Config{
		AppEnv:      "test",
		JWTSecret:   testSecret,
		CORSOrigins: "http://localhost:3000",
	}
	return New(cfg, Deps{
		Store: storage.NewMemoryStore(),
		Stats: dashboard.NewService(dashboard.NewMemoryCache()),
	})
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestMissingDesignIsNotFound(t *testing.T) {
	app := newApp(t)

	status, body := do(t, app, http.MethodGet, "/api/menus/menu-designs/42", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No active menu design found", body["detail"])
}

func TestBadTokenIsRejected(t *testing.T) {
	app := newApp(t)

	status, body := do(t, app, http.MethodGet, "/api/restaurants/", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotEmpty(t, body["detail"])
}

func TestAdminRoutesNeedAdmin(t *testing.T) {
	app := newApp(t)

	status, _ := do(t, app, http.MethodGet, "/api/admin/dashboard/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newApp(t)

	status, body := do(t, app, http.MethodPost, "/api/auth/register", "",
		`{"username":"olivia","email":"olivia@example.com","password":"s3cret-pass","password2":"s3cret-pass","user_type":"OWNER"}`)
	require.Equal(t, http.StatusCreated, status, body)

	status, body = do(t, app, http.MethodPost, "/api/auth/register", "",
		`{"username":"root","email":"root@example.com","password":"s3cret-pass","user_type":"ADMIN"}`)
	assert.Equal(t, http.StatusBadRequest, status, body)

	status, body = do(t, app, http.MethodPost, "/api/auth/login", "",
		`{"email_or_username":"olivia","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, status, body)
	token, _ := body["access"].(string)
	require.NotEmpty(t, token)

	status, body = do(t, app, http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, status, body)
	user := body["user"].(map[string]any)
	assert.Equal(t, "OWNER", user["user_type"])

	status, _ = do(t, app, http.MethodGet, "/api/admin/dashboard/stats", token, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, body = do(t, app, http.MethodPost, "/api/restaurants/", token,
		`{"name":"Olive Tree","phone":"0123456789","email":"info@olive.example","country":"Australia",
		  "street_address":"1 Main St","city":"Sydney","state":"NSW","postal_code":"2000"}`)
	assert.Equal(t, http.StatusCreated, status, body)
}

func TestCatalogWritesAreAudited(t *testing.T) {
	app := newApp(t)

	root := testutil.User(t, "root", models.UserTypeAdmin)
	var user models.User
	require.NoError(t, database.DB.First(&user, root.UserID).Error)
	token, err := auth.GenerateToken(testSecret, &user, auth.TokenTypeAccess)
	require.NoError(t, err)

	status, body := do(t, app, http.MethodPost, "/api/menus/categories/", token, `{"name":"Breakfast"}`)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "breakfast", body["code"])

	status, _ = do(t, app, http.MethodPost, "/api/menus/categories/", token, `{"name":"Breakfast"}`)
	assert.Equal(t, http.StatusConflict, status)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs?entity_type=catalog:categories", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.EqualValues(t, root.UserID, logs[0]["user_id"])
}

func TestDecimalsRenderAsNumbers(t *testing.T) {
	newApp(t)

	out, err := json.Marshal(map[string]decimal.Decimal{"price": decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":12.5}`, string(out))
}
