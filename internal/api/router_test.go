package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// The admin surface must sit behind the configured API key even when no
// stores are attached; these requests are rejected by the middleware
// before any handler runs.
func TestAdminRoutesRequireAPIKey(t *testing.T) {
	router := NewRouter(RouterConfig{APIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/cameras", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/cameras", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", w.Code)
	}
}

func TestUserRoutesRejectMissingBearer(t *testing.T) {
	router := NewRouter(RouterConfig{APIKey: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/v1/captures", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
