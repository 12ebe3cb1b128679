package models

import (
	"time"
)

// RegisteredFace is one reference photo of a known person. Several rows
// sharing the same NameHash describe the same person. The descriptor is
// extracted once at registration time and stored alongside the photo.
type RegisteredFace struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Name           string    `json:"name" db:"name"`
	NameHash       string    `json:"name_hash" db:"name_hash"`
	FilePath       string    `json:"file_path" db:"file_path"` // object key in the faces bucket prefix
	DescriptorHash string    `json:"descriptor_hash" db:"descriptor_hash"`
	Descriptor     []float32 `json:"-" db:"descriptor"`
	Deleted        bool      `json:"deleted" db:"deleted"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// KnownFace is a registered face resolved for one camera's eligibility set:
// the stored descriptor plus the metadata carried into a match verdict.
type KnownFace struct {
	FaceID     int64
	UserID     int64
	Username   string
	Descriptor []float32
}
