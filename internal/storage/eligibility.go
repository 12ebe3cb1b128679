package storage

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/your-org/watchdog/internal/models"
)

// KnownFacesForCamera resolves the registered faces a camera is authorized
// to match against: every non-deleted face owned by a user sharing at least
// one group with the camera. DISTINCT ON deduplicates faces reachable
// through multiple shared groups; ordering by face id keeps the matching
// tie-break stable.
func (s *PostgresStore) KnownFacesForCamera(ctx context.Context, cameraID int64) ([]models.KnownFace, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (rf.id) rf.id, rf.user_id, u.username, rf.descriptor
		 FROM registered_faces rf
		 JOIN users u ON u.id = rf.user_id
		 JOIN user_groups ug ON ug.user_id = u.id
		 JOIN camera_groups cg ON cg.group_id = ug.group_id
		 WHERE cg.camera_id = $1 AND rf.deleted = false
		 ORDER BY rf.id ASC`, cameraID)
	if err != nil {
		return nil, fmt.Errorf("known faces for camera: %w", err)
	}
	defer rows.Close()

	var faces []models.KnownFace
	for rows.Next() {
		var kf models.KnownFace
		var vec pgvector.Vector
		if err := rows.Scan(&kf.FaceID, &kf.UserID, &kf.Username, &vec); err != nil {
			return nil, fmt.Errorf("scan known face: %w", err)
		}
		kf.Descriptor = vec.Slice()
		faces = append(faces, kf)
	}
	return faces, rows.Err()
}

// NotificationTargets resolves the distinct push tokens of users who share
// a group with the camera, have the given category enabled, and have a
// device token registered. The join mirrors KnownFacesForCamera but selects
// over users rather than their registered faces.
func (s *PostgresStore) NotificationTargets(ctx context.Context, cameraID int64, category models.Category) ([]string, error) {
	var flag string
	switch category {
	case models.CategoryUnknown:
		flag = "notify_capture"
	case models.CategoryIntruder:
		flag = "notify_intruder"
	case models.CategoryFriend:
		flag = "notify_friend"
	default:
		return nil, fmt.Errorf("unknown notification category %q", category)
	}

	query := fmt.Sprintf(
		`SELECT DISTINCT u.notification_token
		 FROM users u
		 JOIN user_groups ug ON ug.user_id = u.id
		 JOIN camera_groups cg ON cg.group_id = ug.group_id
		 JOIN notification_prefs np ON np.user_id = u.id
		 WHERE cg.camera_id = $1
		   AND u.notification_token IS NOT NULL
		   AND np.%s = true`, flag)

	rows, err := s.pool.Query(ctx, query, cameraID)
	if err != nil {
		return nil, fmt.Errorf("notification targets: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
