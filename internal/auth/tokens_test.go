package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/storage"
)

type fakeTokenStore struct {
	users   map[string]*models.User
	cameras map[string]*models.Camera
}

func (f *fakeTokenStore) UserByToken(ctx context.Context, token string) (*models.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeTokenStore) CameraByToken(ctx context.Context, token string) (*models.Camera, error) {
	if c, ok := f.cameras[token]; ok {
		return c, nil
	}
	return nil, storage.ErrNotFound
}

func routerWith(mw gin.HandlerFunc, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, handler)
	return r
}

func get(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestAPIKeyMiddleware(t *testing.T) {
	r := routerWith(APIKeyMiddleware("secret"), ok)

	if w := get(r, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", w.Code)
	}
	if w := get(r, map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", w.Code)
	}
	if w := get(r, map[string]string{"X-API-Key": "secret"}); w.Code != http.StatusOK {
		t.Errorf("correct key: status = %d, want 200", w.Code)
	}
}

func TestAPIKeyMiddlewareDisabledWhenUnset(t *testing.T) {
	r := routerWith(APIKeyMiddleware(""), ok)

	if w := get(r, nil); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", w.Code)
	}
}

func TestUserMiddleware(t *testing.T) {
	store := &fakeTokenStore{users: map[string]*models.User{
		"tok-1": {ID: 42, Username: "alice"},
	}}
	var seen *models.User
	r := routerWith(UserMiddleware(store), func(c *gin.Context) {
		seen = UserFrom(c)
		c.Status(http.StatusOK)
	})

	if w := get(r, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", w.Code)
	}
	if w := get(r, map[string]string{"Authorization": "Bearer nope"}); w.Code != http.StatusForbidden {
		t.Errorf("unknown token: status = %d, want 403", w.Code)
	}
	if w := get(r, map[string]string{"Authorization": "tok-1"}); w.Code != http.StatusUnauthorized {
		t.Errorf("missing Bearer prefix: status = %d, want 401", w.Code)
	}

	w := get(r, map[string]string{"Authorization": "Bearer tok-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", w.Code)
	}
	if seen == nil || seen.ID != 42 {
		t.Errorf("UserFrom = %+v, want user 42", seen)
	}
}

func TestCameraMiddleware(t *testing.T) {
	store := &fakeTokenStore{cameras: map[string]*models.Camera{
		"cam-tok": {ID: 7, DeviceName: "porch"},
	}}
	var seen *models.Camera
	r := routerWith(CameraMiddleware(store), func(c *gin.Context) {
		seen = CameraFrom(c)
		c.Status(http.StatusOK)
	})

	if w := get(r, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", w.Code)
	}
	if w := get(r, map[string]string{"X-Device-Token": "nope"}); w.Code != http.StatusForbidden {
		t.Errorf("unknown token: status = %d, want 403", w.Code)
	}

	w := get(r, map[string]string{"X-Device-Token": "cam-tok"})
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", w.Code)
	}
	if seen == nil || seen.ID != 7 {
		t.Errorf("CameraFrom = %+v, want camera 7", seen)
	}
}
