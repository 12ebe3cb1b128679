package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/watchdog/internal/auth"
	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/storage"
	"github.com/your-org/watchdog/pkg/dto"
)

type UserHandler struct {
	db *storage.PostgresStore
}

func NewUserHandler(db *storage.PostgresStore) *UserHandler {
	return &UserHandler{db: db}
}

func (h *UserHandler) GetPrefs(c *gin.Context) {
	user := auth.UserFrom(c)

	prefs, err := h.db.NotificationPrefs(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.NotificationPrefsResponse{
		NotifyCapture:  prefs.NotifyCapture,
		NotifyIntruder: prefs.NotifyIntruder,
		NotifyFriend:   prefs.NotifyFriend,
	})
}

func (h *UserHandler) UpdatePrefs(c *gin.Context) {
	user := auth.UserFrom(c)

	var req dto.NotificationPrefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs := models.NotificationPrefs{
		UserID:         user.ID,
		NotifyCapture:  req.NotifyCapture,
		NotifyIntruder: req.NotifyIntruder,
		NotifyFriend:   req.NotifyFriend,
	}
	if err := h.db.UpsertNotificationPrefs(c.Request.Context(), prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.NotificationPrefsResponse{
		NotifyCapture:  prefs.NotifyCapture,
		NotifyIntruder: prefs.NotifyIntruder,
		NotifyFriend:   prefs.NotifyFriend,
	})
}

// SetNotificationToken registers, replaces, or clears (token: null) the
// user's push token.
func (h *UserHandler) SetNotificationToken(c *gin.Context) {
	user := auth.UserFrom(c)

	var req dto.NotificationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.SetNotificationToken(c.Request.Context(), user.ID, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
