package dto

import "github.com/google/uuid"

type UploadResponse struct {
	TaskID     int64  `json:"task_id"`
	RecordedAt string `json:"recorded_at"`
}

type CaptureResponse struct {
	ID            uuid.UUID `json:"id"`
	CameraID      int64     `json:"camera_id"`
	Category      string    `json:"category"`
	MatchedFaceID *int64    `json:"matched_face_id,omitempty"`
	MatchedUserID *int64    `json:"matched_user_id,omitempty"`
	Distance      float64   `json:"distance,omitempty"`
	Confidence    float64   `json:"confidence,omitempty"`
	SnapshotURL   string    `json:"snapshot_url,omitempty"`
	CreatedAt     string    `json:"created_at"`
}

type CaptureListResponse struct {
	Captures []CaptureResponse `json:"captures"`
	Total    int               `json:"total"`
}

type CaptureQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// WSCapture is a WebSocket message for live capture delivery.
type WSCapture struct {
	Type     string          `json:"type"` // capture_analyzed
	CameraID int64           `json:"camera_id"`
	Data     CaptureResponse `json:"data"`
}
