package api

import (
	"net/http"
	"testing"

	"tutomatics/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedConfig(permissions []string) config.APIConfig {
	return config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Key: "test-key", Secret: "test-secret", Name: "tests", Permissions: permissions},
			},
		},
	}
}

func doAuthed(t *testing.T, url, key, secret string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	if secret != "" {
		req.Header.Set("x-api-secret", secret)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuthMissingHeaders(t *testing.T) {
	ts, _ := newTestServer(t, authedConfig(nil))

	resp := doAuthed(t, ts.URL+"/api/v1/signups", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doAuthed(t, ts.URL+"/api/v1/signups", "test-key", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthInvalidCredentials(t *testing.T) {
	ts, _ := newTestServer(t, authedConfig(nil))

	resp := doAuthed(t, ts.URL+"/api/v1/signups", "wrong-key", "test-secret")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doAuthed(t, ts.URL+"/api/v1/signups", "test-key", "wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthValidCredentials(t *testing.T) {
	ts, _ := newTestServer(t, authedConfig(nil))

	resp := doAuthed(t, ts.URL+"/api/v1/signups", "test-key", "test-secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthPermissions(t *testing.T) {
	ts, _ := newTestServer(t, authedConfig([]string{"read:bookings"}))

	// Read-only key can list bookings.
	resp := doAuthed(t, ts.URL+"/api/v1/bookings?from=2030-06-01&to=2030-06-02", "test-key", "test-secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// But not manage users.
	resp = doAuthed(t, ts.URL+"/api/v1/signups", "test-key", "test-secret")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthEmptyPermissionsAllowsAll(t *testing.T) {
	ts, _ := newTestServer(t, authedConfig(nil))

	resp := doAuthed(t, ts.URL+"/api/v1/bookings?from=2030-06-01&to=2030-06-02", "test-key", "test-secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthDisabledSkipsChecks(t *testing.T) {
	ts, _ := newTestServer(t, config.APIConfig{})

	resp, err := http.Get(ts.URL + "/api/v1/signups")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg := authedConfig(nil)
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}
	ts, _ := newTestServer(t, cfg)

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		resp := doAuthed(t, ts.URL+"/api/v1/signups", "test-key", "test-secret")
		statuses = append(statuses, resp.StatusCode)
	}

	// Burst of 2 passes, the rest are throttled.
	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[3])
}

func TestRequiredPermission(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v1/bookings", "read:bookings"},
		{http.MethodPost, "/api/v1/bookings", "write:bookings"},
		{http.MethodPost, "/api/v1/bookings/5/accept", "write:bookings"},
		{http.MethodGet, "/api/v1/availability", "read:bookings"},
		{http.MethodDelete, "/api/v1/availability/3", "write:bookings"},
		{http.MethodGet, "/api/v1/calendar", "read:bookings"},
		{http.MethodGet, "/api/v1/export", "read:bookings"},
		{http.MethodGet, "/api/v1/students/7/bookings", "read:bookings"},
		{http.MethodPost, "/api/v1/signups", "manage:users"},
		{http.MethodPost, "/api/v1/users/2/approve", "manage:users"},
		{http.MethodGet, "/healthz", ""},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, tt.path, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, requiredPermission(req), "%s %s", tt.method, tt.path)
	}
}
