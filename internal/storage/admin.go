package storage

import (
	"context"
	"fmt"

	"github.com/your-org/watchdog/internal/models"
)

// CreateCamera provisions a capture device with a fresh device token.
func (s *PostgresStore) CreateCamera(ctx context.Context, c *models.Camera) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO cameras (device_name, token, active, activated_at)
		 VALUES ($1, $2, true, now()) RETURNING id, activated_at`,
		c.DeviceName, c.Token,
	).Scan(&c.ID, &c.ActivatedAt)
	if err != nil {
		return fmt.Errorf("create camera: %w", err)
	}
	c.Active = true
	return nil
}

// ListCameras returns every registered camera, tokens included; the
// listing is admin-only.
func (s *PostgresStore) ListCameras(ctx context.Context) ([]models.Camera, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, device_name, token, active, activated_at
		 FROM cameras ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		var c models.Camera
		if err := rows.Scan(&c.ID, &c.DeviceName, &c.Token, &c.Active, &c.ActivatedAt); err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, c)
	}
	return cameras, rows.Err()
}

// CreateUser provisions a user account with a fresh bearer token.
func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, token, active, activated_at)
		 VALUES ($1, $2, $3, true, now()) RETURNING id, activated_at`,
		u.Email, u.Username, u.Token,
	).Scan(&u.ID, &u.ActivatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.Active = true
	return nil
}

// AssignCameraToGroup links a camera into an authorization group.
func (s *PostgresStore) AssignCameraToGroup(ctx context.Context, cameraID, groupID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO camera_groups (camera_id, group_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, cameraID, groupID)
	if err != nil {
		return fmt.Errorf("assign camera to group: %w", err)
	}
	return nil
}

// AssignUserToGroup links a user into an authorization group.
func (s *PostgresStore) AssignUserToGroup(ctx context.Context, userID, groupID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, userID, groupID)
	if err != nil {
		return fmt.Errorf("assign user to group: %w", err)
	}
	return nil
}

// CreateGroup creates an authorization group.
func (s *PostgresStore) CreateGroup(ctx context.Context, g *models.Group) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO groups (name) VALUES ($1) RETURNING id`, g.Name,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}
