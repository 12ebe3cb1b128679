package models

import (
	"time"
)

// Camera is a registered capture device. Authorization against users and
// registered faces is derived from shared group membership
// (cameras -> camera_groups -> groups -> user_groups -> users).
type Camera struct {
	ID          int64      `json:"id" db:"id"`
	DeviceName  string     `json:"device_name" db:"device_name"`
	Token       string     `json:"-" db:"token"`
	Active      bool       `json:"active" db:"active"`
	ActivatedAt *time.Time `json:"activated_at,omitempty" db:"activated_at"`
}

// Group ties cameras and users into one authorization scope.
type Group struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
