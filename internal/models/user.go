package models

import (
	"time"
)

type User struct {
	ID                int64      `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	Username          string     `json:"username" db:"username"`
	Active            bool       `json:"active" db:"active"`
	Token             string     `json:"-" db:"token"`
	NotificationToken *string    `json:"-" db:"notification_token"`
	ActivatedAt       *time.Time `json:"activated_at,omitempty" db:"activated_at"`
}

// NotificationPrefs holds the per-user flags gating which push categories
// a user receives. All flags default to off; the category filtering itself
// happens in the notification-target query.
type NotificationPrefs struct {
	UserID         int64 `json:"user_id" db:"user_id"`
	NotifyCapture  bool  `json:"notify_capture" db:"notify_capture"` // new/unknown capture
	NotifyIntruder bool  `json:"notify_intruder" db:"notify_intruder"`
	NotifyFriend   bool  `json:"notify_friend" db:"notify_friend"`
}
