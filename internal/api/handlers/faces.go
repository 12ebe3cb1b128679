package handlers

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/watchdog/internal/auth"
	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/storage"
	"github.com/your-org/watchdog/internal/vision"
	"github.com/your-org/watchdog/pkg/dto"
)

// maxPhotosPerPerson caps how many reference photos one person may have,
// keeping a single user's eligibility sets bounded.
const maxPhotosPerPerson = 10

type FaceHandler struct {
	db        *storage.PostgresStore
	minio     *storage.MinIOStore
	extractor vision.Extractor
}

func NewFaceHandler(db *storage.PostgresStore, minio *storage.MinIOStore, extractor vision.Extractor) *FaceHandler {
	return &FaceHandler{db: db, minio: minio, extractor: extractor}
}

// Register accepts one reference photo of a named person, extracts its
// descriptor immediately, and stores both. The photo must contain exactly
// one detectable face.
func (h *FaceHandler) Register(c *gin.Context) {
	user := auth.UserFrom(c)

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

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

	nameHash := hashName(name)
	count, err := h.db.CountFacesByNameHash(c.Request.Context(), user.ID, nameHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if count >= maxPhotosPerPerson {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("at most %d photos per person", maxPhotosPerPerson),
		})
		return
	}

	if h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vision runtime not initialized"})
		return
	}

	descriptors, err := h.extractor.Extract(imageData)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to extract face: " + err.Error()})
		return
	}
	if len(descriptors) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no face detected"})
		return
	}
	if len(descriptors) > 1 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "photo must contain exactly one face"})
		return
	}
	descriptor := descriptors[0]

	key := fmt.Sprintf("faces/%d/%s.jpg", user.ID, uuid.NewString())
	if err := h.minio.PutObject(c.Request.Context(), key, imageData, "image/jpeg"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store image failed"})
		return
	}

	face := &models.RegisteredFace{
		UserID:         user.ID,
		Name:           name,
		NameHash:       nameHash,
		FilePath:       key,
		DescriptorHash: hashDescriptor(descriptor),
		Descriptor:     descriptor,
	}
	if err := h.db.CreateRegisteredFace(c.Request.Context(), face); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.FaceResponse{
		ID:        face.ID,
		Name:      face.Name,
		CreatedAt: face.CreatedAt.Format(time.RFC3339),
	})
}

func (h *FaceHandler) List(c *gin.Context) {
	user := auth.UserFrom(c)

	faces, err := h.db.ListFacesForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.FaceResponse, 0, len(faces))
	for _, f := range faces {
		resp = append(resp, dto.FaceResponse{
			ID:        f.ID,
			Name:      f.Name,
			CreatedAt: f.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, dto.FaceListResponse{Faces: resp, Total: len(resp)})
}

// Delete soft-deletes one reference photo; the next eligibility resolution
// no longer sees it.
func (h *FaceHandler) Delete(c *gin.Context) {
	user := auth.UserFrom(c)

	faceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid face id"})
		return
	}

	if err := h.db.SoftDeleteFace(c.Request.Context(), user.ID, faceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "face not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func hashName(name string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(name)))
	return hex.EncodeToString(sum[:])
}

func hashDescriptor(descriptor []float32) string {
	buf := make([]byte, 4*len(descriptor))
	for i, v := range descriptor {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
