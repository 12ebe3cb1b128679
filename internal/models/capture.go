package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies the outcome of analyzing one capture.
type Category string

const (
	CategoryIntruder Category = "INTR"
	CategoryFriend   Category = "FRND"
	CategoryUnknown  Category = "UNKN"
)

// Capture is the persisted record of one analyzed image with a clear
// verdict. Ambiguous tasks (no usable face) produce no capture row.
type Capture struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TaskID        int64     `json:"task_id" db:"task_id"`
	CameraID      int64     `json:"camera_id" db:"camera_id"`
	Category      Category  `json:"category" db:"category"`
	MatchedFaceID *int64    `json:"matched_face_id,omitempty" db:"matched_face_id"`
	MatchedUserID *int64    `json:"matched_user_id,omitempty" db:"matched_user_id"`
	Distance      float64   `json:"distance,omitempty" db:"distance"`
	Confidence    float64   `json:"confidence,omitempty" db:"confidence"`
	Descriptor    []float32 `json:"-" db:"descriptor"`
	SnapshotKey   string    `json:"snapshot_key" db:"snapshot_key"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
