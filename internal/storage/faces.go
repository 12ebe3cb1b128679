package storage

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/your-org/watchdog/internal/models"
)

// CreateRegisteredFace stores one reference photo with its descriptor.
// The descriptor is materialized here, at registration time, so the
// analysis worker never has to re-extract reference photos.
func (s *PostgresStore) CreateRegisteredFace(ctx context.Context, f *models.RegisteredFace) error {
	vec := pgvector.NewVector(f.Descriptor)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO registered_faces (user_id, name, name_hash, file_path, descriptor_hash, descriptor)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		f.UserID, f.Name, f.NameHash, f.FilePath, f.DescriptorHash, vec,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create registered face: %w", err)
	}
	return nil
}

// ListFacesForUser returns the user's non-deleted reference photos,
// without descriptors.
func (s *PostgresStore) ListFacesForUser(ctx context.Context, userID int64) ([]models.RegisteredFace, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, name_hash, file_path, descriptor_hash, deleted, created_at
		 FROM registered_faces
		 WHERE user_id = $1 AND deleted = false
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list faces: %w", err)
	}
	defer rows.Close()

	var faces []models.RegisteredFace
	for rows.Next() {
		var f models.RegisteredFace
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.NameHash, &f.FilePath,
			&f.DescriptorHash, &f.Deleted, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		faces = append(faces, f)
	}
	return faces, rows.Err()
}

// CountFacesByNameHash counts non-deleted photos registered for one person.
// The registration handler uses it to enforce the per-person photo cap.
func (s *PostgresStore) CountFacesByNameHash(ctx context.Context, userID int64, nameHash string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registered_faces
		 WHERE user_id = $1 AND name_hash = $2 AND deleted = false`,
		userID, nameHash,
	).Scan(&count)
	return count, err
}

// SoftDeleteFace marks a reference photo deleted without dropping the row.
func (s *PostgresStore) SoftDeleteFace(ctx context.Context, userID, faceID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE registered_faces SET deleted = true WHERE id = $1 AND user_id = $2`,
		faceID, userID)
	if err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete face %d: %w", faceID, ErrNotFound)
	}
	return nil
}
