package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onyxandcode/onyx-site/internal/auth"
	appconfig "github.com/onyxandcode/onyx-site/internal/config"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Env:              "development",
		PublicBaseURL:    "http://localhost:8080",
		EmailProvider:    "none",
		NotifyAsync:      false,
		MaxUploadBytes:   1 << 20,
		FallbackPhone:    "+353894459967",
		FallbackWhatsApp: "https://wa.me/353894459967",
		LeadRateLimit:    10,
		LeadRateBurst:    10,
		AdminEmail:       "admin@onyxandcode.com",
		AdminPassword:    "correct-horse",
	}
}

func TestBuildAppInMemory(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	app, err := buildApp(context.Background(), cfg, logging.New("error"))
	require.NoError(t, err)
	defer app.Close()

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"redis":"ok"`)

	form := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/success", rr.Header().Get("Location"))
}

func TestBuildAppSeedsAdmin(t *testing.T) {
	app, err := buildApp(context.Background(), testConfig(), logging.New("error"))
	require.NoError(t, err)
	defer app.Close()

	form := url.Values{"email": {"admin@onyxandcode.com"}, "password": {"correct-horse"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, auth.DashboardPath, rr.Header().Get("Location"))

	// ADMIN_EMAIL is on the dashboard allowlist by default.
	dash := httptest.NewRequest(http.MethodGet, "/api/dashboard/leads", nil)
	for _, c := range rr.Result().Cookies() {
		dash.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	app.handler.ServeHTTP(rr, dash)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSessionSecret(t *testing.T) {
	logger := logging.New("error")

	secret, err := sessionSecret(&appconfig.Config{SessionSecret: " fixed "}, logger)
	require.NoError(t, err)
	assert.Equal(t, "fixed", secret)

	secret, err = sessionSecret(&appconfig.Config{Env: "development"}, logger)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	_, err = sessionSecret(&appconfig.Config{Env: "production"}, logger)
	assert.ErrorIs(t, err, auth.ErrSessionSecretRequired)
}

func TestBuildAppRejectsUnreachablePostgres(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseURL = "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"

	_, err := buildApp(context.Background(), cfg, logging.New("error"))
	assert.Error(t, err)
}
