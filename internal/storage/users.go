package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/your-org/watchdog/internal/models"
)

// UserByToken resolves an active user from their API token.
func (s *PostgresStore) UserByToken(ctx context.Context, token string) (*models.User, error) {
	u := &models.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, username, active, token, notification_token, activated_at
		 FROM users WHERE token = $1 AND active = true`, token,
	).Scan(&u.ID, &u.Email, &u.Username, &u.Active, &u.Token, &u.NotificationToken, &u.ActivatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by token: %w", err)
	}
	return u, nil
}

// CameraByToken resolves an active camera from its device token.
func (s *PostgresStore) CameraByToken(ctx context.Context, token string) (*models.Camera, error) {
	c := &models.Camera{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, device_name, token, active, activated_at
		 FROM cameras WHERE token = $1 AND active = true`, token,
	).Scan(&c.ID, &c.DeviceName, &c.Token, &c.Active, &c.ActivatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("camera by token: %w", err)
	}
	return c, nil
}

// NotificationPrefs returns the user's push preferences; a user without a
// row gets all categories off.
func (s *PostgresStore) NotificationPrefs(ctx context.Context, userID int64) (models.NotificationPrefs, error) {
	p := models.NotificationPrefs{UserID: userID}
	err := s.pool.QueryRow(ctx,
		`SELECT notify_capture, notify_intruder, notify_friend
		 FROM notification_prefs WHERE user_id = $1`, userID,
	).Scan(&p.NotifyCapture, &p.NotifyIntruder, &p.NotifyFriend)
	if err != nil {
		if err == pgx.ErrNoRows {
			return p, nil
		}
		return p, fmt.Errorf("notification prefs: %w", err)
	}
	return p, nil
}

// UpsertNotificationPrefs replaces the user's push preferences.
func (s *PostgresStore) UpsertNotificationPrefs(ctx context.Context, p models.NotificationPrefs) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notification_prefs (user_id, notify_capture, notify_intruder, notify_friend)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET notify_capture = $2, notify_intruder = $3, notify_friend = $4`,
		p.UserID, p.NotifyCapture, p.NotifyIntruder, p.NotifyFriend)
	if err != nil {
		return fmt.Errorf("upsert notification prefs: %w", err)
	}
	return nil
}

// SetNotificationToken registers (or clears, with nil) the user's push
// destination token. The previous token is retained for diagnostics.
func (s *PostgresStore) SetNotificationToken(ctx context.Context, userID int64, token *string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET old_notification_token = notification_token, notification_token = $2
		 WHERE id = $1`, userID, token)
	if err != nil {
		return fmt.Errorf("set notification token: %w", err)
	}
	return nil
}
