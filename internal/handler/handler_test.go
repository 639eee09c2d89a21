package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/blacklist"
	"fintrack/internal/service"
	"fintrack/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	router *gin.Engine
	issuer *auth.Issuer
	redis  *miniredis.Miniredis
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)

	bl, err := blacklist.NewRedisBlacklist(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { bl.Close() })

	issuer := auth.NewIssuer("test-secret", 24*time.Hour)
	srvc := service.NewService(storage.NewMemoryStorage(), issuer, bl)

	lgr := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewHandler(srvc, issuer, bl, lgr)

	return &testEnv{
		router: h.InitRoutes(),
		issuer: issuer,
		redis:  mr,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func tokenCookieValue(rec *httptest.ResponseRecorder) string {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			return cookie.Value
		}
	}
	return ""
}

func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/users/register", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	token := tokenCookieValue(rec)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_SetsCookieAndHidesPassword(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodPost, "/api/users/register", gin.H{
		"name":     "Ann",
		"email":    "ann@x.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tokenCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			tokenCookie = cookie
		}
	}
	require.NotNil(t, tokenCookie)
	assert.True(t, tokenCookie.HttpOnly)
	assert.True(t, tokenCookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, tokenCookie.SameSite)

	claims, err := env.issuer.Verify(tokenCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", claims.Email)

	// The hash must never serialize outward.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestRegister_Validation(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodPost, "/api/users/register", gin.H{
		"name":     "An",
		"email":    "ann@x.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/users/register", gin.H{
		"name":     "Ann",
		"email":    "not-an-email",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Ann", "ann@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/users/register", gin.H{
		"name":     "Another Ann",
		"email":    "ann@x.com",
		"password": "secret2",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthScenario_RegisterCurrentUserLogout(t *testing.T) {
	env := setupEnv(t)
	token := env.register(t, "Ann", "ann@x.com", "secret1")

	rec := env.do(t, http.MethodGet, "/api/users/current-user", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &profile))
	assert.Equal(t, "Ann", profile.Name)
	assert.Equal(t, "ann@x.com", profile.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(t, http.MethodGet, "/api/users/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same token, now revoked.
	rec = env.do(t, http.MethodGet, "/api/users/current-user", nil, token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestAuthGate_BearerHeader(t *testing.T) {
	env := setupEnv(t)
	token := env.register(t, "Ann", "ann@x.com", "secret1")

	req := httptest.NewRequest(http.MethodGet, "/api/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAuthGate_MissingToken(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users/current-user", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token missing")
}

func TestAuthGate_InvalidToken(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users/current-user", nil, "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Signed with a different secret.
	other := auth.NewIssuer("other-secret", 24*time.Hour)
	forged, err := other.Issue(uuid.Must(uuid.NewV4()), "ann@x.com")
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/api/users/current-user", nil, forged)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthGate_UnknownSubject(t *testing.T) {
	env := setupEnv(t)

	// Valid signature, but no such user in the store.
	token, err := env.issuer.Issue(uuid.Must(uuid.NewV4()), "ghost@x.com")
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/users/current-user", nil, token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Ann", "ann@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/users/login", gin.H{
		"email":    "ann@x.com",
		"password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, tokenCookieValue(rec))

	// No revocation entry appears on a failed login.
	assert.Empty(t, env.redis.Keys())
}

func TestLogin_UnknownEmailIsGeneric(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(t, http.MethodPost, "/api/users/login", gin.H{
		"email":    "nobody@x.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "not found")
}

func TestProjectFlow(t *testing.T) {
	env := setupEnv(t)
	token := env.register(t, "Ann", "ann@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/projects/create", gin.H{
		"name":        "home",
		"description": "household budget",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var project struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &project))

	rec = env.do(t, http.MethodGet, "/api/projects/get/"+project.ID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/projects/get/not-a-uuid", nil, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/projects/get/"+uuid.Must(uuid.NewV4()).String(), nil, token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/projects/get-all", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var projects []json.RawMessage
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &projects))
	assert.Len(t, projects, 1)

	rec = env.do(t, http.MethodPost, "/api/projects/delete", gin.H{"project_id": project.ID}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/projects/get/"+project.ID, nil, token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIncomeFlowWithTotals(t *testing.T) {
	env := setupEnv(t)
	token := env.register(t, "Ann", "ann@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/incomes/create", gin.H{
		"tag":    "salary",
		"amount": 1000,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/incomes/create", gin.H{
		"tag":    "salary",
		"amount": -5,
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/incomes/get-total", gin.H{}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var total float64
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &total))
	assert.Equal(t, 1000.0, total)

	rec = env.do(t, http.MethodPost, "/api/expenses/get-total", gin.H{}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &total))
	assert.Zero(t, total)

	rec = env.do(t, http.MethodGet, "/api/users/transactions/all", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var transactions []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &transactions))
	require.Len(t, transactions, 1)
	assert.Equal(t, "income", transactions[0].Type)
}

func TestUpdateProfile(t *testing.T) {
	env := setupEnv(t)
	token := env.register(t, "Ann", "ann@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/users/update-profile", gin.H{
		"name":  "Ann Lee",
		"email": "ann@x.com",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &profile))
	assert.Equal(t, "Ann Lee", profile.Name)
}
