package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/storage"
	"github.com/your-org/watchdog/pkg/dto"
)

// AdminHandler provisions cameras, users and groups. Routes using it sit
// behind the static API key; tokens are generated here and shown once.
type AdminHandler struct {
	db *storage.PostgresStore
}

func NewAdminHandler(db *storage.PostgresStore) *AdminHandler {
	return &AdminHandler{db: db}
}

func (h *AdminHandler) CreateCamera(c *gin.Context) {
	var req dto.CreateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	camera := &models.Camera{
		DeviceName: req.DeviceName,
		Token:      uuid.NewString(),
	}
	if err := h.db.CreateCamera(c.Request.Context(), camera); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cameraResponse(*camera))
}

func (h *AdminHandler) ListCameras(c *gin.Context) {
	cameras, err := h.db.ListCameras(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.CameraResponse, 0, len(cameras))
	for _, cam := range cameras {
		resp = append(resp, cameraResponse(cam))
	}

	c.JSON(http.StatusOK, dto.CameraListResponse{Cameras: resp, Total: len(resp)})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		Email:    req.Email,
		Username: req.Username,
		Token:    uuid.NewString(),
	}
	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Token:    user.Token,
	})
}

func (h *AdminHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := &models.Group{Name: req.Name}
	if err := h.db.CreateGroup(c.Request.Context(), group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.GroupResponse{ID: group.ID, Name: group.Name})
}

// AddGroupMember links a camera or a user (or both) into a group.
func (h *AdminHandler) AddGroupMember(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var req dto.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CameraID == 0 && req.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "camera_id or user_id required"})
		return
	}

	if req.CameraID != 0 {
		if err := h.db.AssignCameraToGroup(c.Request.Context(), req.CameraID, groupID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.UserID != 0 {
		if err := h.db.AssignUserToGroup(c.Request.Context(), req.UserID, groupID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

func cameraResponse(cam models.Camera) dto.CameraResponse {
	r := dto.CameraResponse{
		ID:         cam.ID,
		DeviceName: cam.DeviceName,
		Token:      cam.Token,
		Active:     cam.Active,
	}
	if cam.ActivatedAt != nil {
		r.ActivatedAt = cam.ActivatedAt.Format(time.RFC3339)
	}
	return r
}
