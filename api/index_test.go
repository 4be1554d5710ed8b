package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/config"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/database"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/utils"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	cfg := &config.Config{
		Environment:    "test",
		Port:           "0",
		UseLocalDB:     true,
		JWTSecret:      "router-test-secret",
		FrontendURL:    "http://localhost:4080",
		AllowedOrigins: []string{"*"},
		HiringEnabled:  false,
	}
	db := database.NewLocalDatabase(t.TempDir())
	return NewRouter(cfg, db)
}

func doJSON(t *testing.T, router *chi.Mux, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp utils.APIResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// setupAndLogin 开通租户并登录管理员，返回access token
func setupAndLogin(t *testing.T, router *chi.Mux) string {
	t.Helper()

	rec, resp := doJSON(t, router, http.MethodPost, "/api/organizations/setup", "", map[string]string{
		"company_name":   "Analytical Engines Ltd",
		"industry":       "software",
		"admin_email":    "hr@analytical.test",
		"admin_password": "engine-no-1",
		"admin_name":     "Grace Admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	rec, resp = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "hr@analytical.test",
		"password": "engine-no-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestOrganizationSetupAndLogin(t *testing.T) {
	router := newTestRouter(t)
	token := setupAndLogin(t, router)

	// 带token可以访问管理端
	rec, resp := doJSON(t, router, http.MethodGet, "/api/admin/organization", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	// 不带token拒绝
	rec, _ = doJSON(t, router, http.MethodGet, "/api/admin/organization", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 错误密码拒绝
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "hr@analytical.test",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDuplicateSetupConflicts(t *testing.T) {
	router := newTestRouter(t)
	setupAndLogin(t, router)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/organizations/setup", "", map[string]string{
		"company_name":   "Another Co",
		"admin_email":    "hr@analytical.test",
		"admin_password": "engine-no-1",
		"admin_name":     "Grace Admin",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownOnboardingToken(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodGet, "/api/onboarding/deadbeefdeadbeef", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestHiringDisabledByFlag(t *testing.T) {
	router := newTestRouter(t)
	token := setupAndLogin(t, router)

	// 写操作降级为501
	rec, _ := doJSON(t, router, http.MethodPost, "/api/admin/hiring/candidates", token, map[string]string{
		"name":  "Ada Lovelace",
		"email": "ada@analytical.test",
	})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	// 读操作返回空列表
	rec, resp := doJSON(t, router, http.MethodGet, "/api/admin/hiring/applications", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 0, resp.Pagination.TotalItems)
}

func TestCreateOnboardingViaAPI(t *testing.T) {
	router := newTestRouter(t)
	token := setupAndLogin(t, router)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/admin/onboardings", token, map[string]interface{}{
		"full_name":    "Ada Lovelace",
		"email":        "ada@analytical.test",
		"designation":  "Software Engineer",
		"department":   "Engineering",
		"salary":       120000,
		"joining_date": "2026-10-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/admin/onboardings", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteReturns404Envelope(t *testing.T) {
	router := newTestRouter(t)

	rec, resp := doJSON(t, router, http.MethodGet, "/api/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}
