// Package auth holds the gin middlewares that gate the HTTP surface:
// device-token auth for cameras, bearer-token auth for mobile users, and
// a static API key for the admin endpoints.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/storage"
)

const (
	apiKeyHeader      = "X-API-Key"
	deviceTokenHeader = "X-Device-Token"

	cameraKey = "auth_camera"
	userKey   = "auth_user"
)

// TokenStore resolves presented tokens against the relational store.
type TokenStore interface {
	UserByToken(ctx context.Context, token string) (*models.User, error)
	CameraByToken(ctx context.Context, token string) (*models.Camera, error)
}

// APIKeyMiddleware validates the static key from the X-API-Key header.
// If apiKey is empty, the check is disabled.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(apiKeyHeader)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing API key",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}

// CameraMiddleware authenticates an upload device by its X-Device-Token
// header. Only active cameras pass.
func CameraMiddleware(store TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(deviceTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing device token",
			})
			return
		}

		camera, err := store.CameraByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "unknown device",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "authentication unavailable",
			})
			return
		}

		c.Set(cameraKey, camera)
		c.Next()
	}
}

// UserMiddleware authenticates a mobile client by its bearer token.
func UserMiddleware(store TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		user, err := store.UserByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "invalid token",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "authentication unavailable",
			})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CameraFrom returns the camera set by CameraMiddleware.
func CameraFrom(c *gin.Context) *models.Camera {
	v, ok := c.Get(cameraKey)
	if !ok {
		return nil
	}
	return v.(*models.Camera)
}

// UserFrom returns the user set by UserMiddleware.
func UserFrom(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	return v.(*models.User)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return ""
	}
	return header[len(prefix):]
}
