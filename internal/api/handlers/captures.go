package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/watchdog/internal/auth"
	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/observability"
	"github.com/your-org/watchdog/internal/storage"
	"github.com/your-org/watchdog/pkg/dto"
)

// Notifier fans a category push out to a camera's eligible users.
type Notifier interface {
	Notify(ctx context.Context, cameraID int64, category models.Category)
}

type CaptureHandler struct {
	db       *storage.PostgresStore
	minio    *storage.MinIOStore
	notifier Notifier
}

func NewCaptureHandler(db *storage.PostgresStore, minio *storage.MinIOStore, notifier Notifier) *CaptureHandler {
	return &CaptureHandler{db: db, minio: minio, notifier: notifier}
}

// Upload accepts one camera frame, stores it, and enqueues an analysis
// task. Analysis itself happens later in the worker; the camera only
// waits for the write.
func (h *CaptureHandler) Upload(c *gin.Context) {
	camera := auth.CameraFrom(c)

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	recordedAt := time.Now().UTC()
	if v := c.PostForm("recorded_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recorded_at"})
			return
		}
		recordedAt = t.UTC()
	}

	key := fmt.Sprintf("uploads/%d/%s.jpg", camera.ID, uuid.NewString())
	if err := h.minio.PutObject(c.Request.Context(), key, imageData, "image/jpeg"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store image failed"})
		return
	}

	task := &models.AnalysisTask{
		RecordedAt: recordedAt,
		ReportedAt: time.Now().UTC(),
		FilePath:   key,
		CameraID:   camera.ID,
	}
	if err := h.db.CreateTask(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	observability.CapturesUploaded.Inc()

	c.JSON(http.StatusCreated, dto.UploadResponse{
		TaskID:     task.ID,
		RecordedAt: task.RecordedAt.Format(time.RFC3339),
	})
}

// RecordingStarted notifies the camera's users that a recording session
// began. No task is created; this is pure fan-out.
func (h *CaptureHandler) RecordingStarted(c *gin.Context) {
	camera := auth.CameraFrom(c)
	h.notifier.Notify(c.Request.Context(), camera.ID, models.CategoryUnknown)
	c.JSON(http.StatusAccepted, gin.H{"status": "notified"})
}

// List returns the analyzed captures visible to the authenticated user,
// newest first.
func (h *CaptureHandler) List(c *gin.Context) {
	user := auth.UserFrom(c)

	var q dto.CaptureQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	captures, err := h.db.CapturesForUser(c.Request.Context(), user.ID, q.Limit, q.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.CaptureResponse, 0, len(captures))
	for _, cp := range captures {
		resp = append(resp, ToCaptureResponse(cp))
	}

	c.JSON(http.StatusOK, dto.CaptureListResponse{Captures: resp, Total: len(resp)})
}

// Snapshot streams the archived image of one capture.
func (h *CaptureHandler) Snapshot(c *gin.Context) {
	user := auth.UserFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid capture id"})
		return
	}

	capture, err := h.db.CaptureForUser(c.Request.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "capture not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if capture.SnapshotKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot archived"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), capture.SnapshotKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read snapshot failed"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

// ToCaptureResponse maps a stored capture onto its wire shape. The same
// mapping serves the REST list and the WebSocket envelope, so clients see
// snapshot_url rather than the internal object key on both paths.
func ToCaptureResponse(cp models.Capture) dto.CaptureResponse {
	r := dto.CaptureResponse{
		ID:            cp.ID,
		CameraID:      cp.CameraID,
		Category:      string(cp.Category),
		MatchedFaceID: cp.MatchedFaceID,
		MatchedUserID: cp.MatchedUserID,
		Distance:      cp.Distance,
		Confidence:    cp.Confidence,
		CreatedAt:     cp.CreatedAt.Format(time.RFC3339),
	}
	if cp.SnapshotKey != "" {
		r.SnapshotURL = fmt.Sprintf("/v1/captures/%s/snapshot", cp.ID)
	}
	return r
}
