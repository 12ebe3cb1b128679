package dto

type NotificationPrefsRequest struct {
	NotifyCapture  bool `json:"notify_capture"`
	NotifyIntruder bool `json:"notify_intruder"`
	NotifyFriend   bool `json:"notify_friend"`
}

type NotificationPrefsResponse struct {
	NotifyCapture  bool `json:"notify_capture"`
	NotifyIntruder bool `json:"notify_intruder"`
	NotifyFriend   bool `json:"notify_friend"`
}

type NotificationTokenRequest struct {
	Token *string `json:"token"`
}
