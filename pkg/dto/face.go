package dto

type FaceResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type FaceListResponse struct {
	Faces []FaceResponse `json:"faces"`
	Total int            `json:"total"`
}
