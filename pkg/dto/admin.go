package dto

type CreateCameraRequest struct {
	DeviceName string `json:"device_name" binding:"required"`
}

// CameraResponse carries the device token; it is only ever returned on
// the admin surface.
type CameraResponse struct {
	ID          int64  `json:"id"`
	DeviceName  string `json:"device_name"`
	Token       string `json:"token"`
	Active      bool   `json:"active"`
	ActivatedAt string `json:"activated_at,omitempty"`
}

type CameraListResponse struct {
	Cameras []CameraResponse `json:"cameras"`
	Total   int              `json:"total"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type GroupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GroupMemberRequest struct {
	CameraID int64 `json:"camera_id"`
	UserID   int64 `json:"user_id"`
}
