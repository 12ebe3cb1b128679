package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/your-org/watchdog/internal/models"
)

// capturesScope restricts capture reads to cameras the user shares a group
// with, the same authorization path the analyzer uses for eligibility.
const capturesScope = `EXISTS (
	SELECT 1 FROM camera_groups cg
	JOIN user_groups ug ON ug.group_id = cg.group_id
	WHERE cg.camera_id = c.camera_id AND ug.user_id = $1
)`

// CapturesForUser lists analyzed captures visible to the user, newest first.
func (s *PostgresStore) CapturesForUser(ctx context.Context, userID int64, limit, offset int) ([]models.Capture, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.task_id, c.camera_id, c.category,
		        c.matched_face_id, c.matched_user_id, c.distance, c.confidence,
		        c.snapshot_key, c.created_at
		 FROM captures c
		 WHERE `+capturesScope+`
		 ORDER BY c.created_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("captures for user: %w", err)
	}
	defer rows.Close()

	var captures []models.Capture
	for rows.Next() {
		var c models.Capture
		if err := rows.Scan(&c.ID, &c.TaskID, &c.CameraID, &c.Category,
			&c.MatchedFaceID, &c.MatchedUserID, &c.Distance, &c.Confidence,
			&c.SnapshotKey, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan capture: %w", err)
		}
		captures = append(captures, c)
	}
	return captures, rows.Err()
}

// CaptureForUser fetches one capture, verifying the user may see it.
func (s *PostgresStore) CaptureForUser(ctx context.Context, userID int64, id uuid.UUID) (*models.Capture, error) {
	c := &models.Capture{}
	err := s.pool.QueryRow(ctx,
		`SELECT c.id, c.task_id, c.camera_id, c.category,
		        c.matched_face_id, c.matched_user_id, c.distance, c.confidence,
		        c.snapshot_key, c.created_at
		 FROM captures c
		 WHERE `+capturesScope+` AND c.id = $2`, userID, id,
	).Scan(&c.ID, &c.TaskID, &c.CameraID, &c.Category,
		&c.MatchedFaceID, &c.MatchedUserID, &c.Distance, &c.Confidence,
		&c.SnapshotKey, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("capture for user: %w", err)
	}
	return c, nil
}
