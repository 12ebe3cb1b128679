package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/watchdog/internal/models"
)

// CreateTask inserts a new pending analysis task for an uploaded capture.
func (s *PostgresStore) CreateTask(ctx context.Context, t *models.AnalysisTask) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO analysis_tasks (recorded_at, reported_at, file_path, camera_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		t.RecordedAt, t.ReportedAt, t.FilePath, t.CameraID,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Task fetches one task by id. Returns nil, nil when the row is absent.
func (s *PostgresStore) Task(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	t := &models.AnalysisTask{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, recorded_at, reported_at, file_path, camera_id, analyzed, reported, deleted, analyzed_at
		 FROM analysis_tasks WHERE id = $1`, id,
	).Scan(&t.ID, &t.RecordedAt, &t.ReportedAt, &t.FilePath, &t.CameraID,
		&t.Analyzed, &t.Reported, &t.Deleted, &t.AnalyzedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// PendingTaskIDs returns ids of the oldest pending tasks, up to limit.
// Oldest-first ordering by recorded_at keeps processing fair across cameras.
func (s *PostgresStore) PendingTaskIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM analysis_tasks
		 WHERE analyzed = false AND deleted = false
		 ORDER BY recorded_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending tasks: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PendingCount returns the size of the analysis backlog.
func (s *PostgresStore) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analysis_tasks WHERE analyzed = false AND deleted = false`,
	).Scan(&n)
	return n, err
}

// CompleteTask marks a task analyzed and, when the analysis reached a clear
// verdict, records the capture row in the same transaction. Either both
// writes land or neither does, so a failed commit leaves the task pending
// and eligible for retry on a later poll cycle.
func (s *PostgresStore) CompleteTask(ctx context.Context, taskID int64, reported bool, capture *models.Capture) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	tag, err := tx.Exec(ctx,
		`UPDATE analysis_tasks SET analyzed = true, reported = $2, analyzed_at = $3 WHERE id = $1`,
		taskID, reported, now)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete task %d: %w", taskID, ErrNotFound)
	}

	if capture != nil {
		capture.CreatedAt = now
		var vec *pgvector.Vector
		if len(capture.Descriptor) > 0 {
			v := pgvector.NewVector(capture.Descriptor)
			vec = &v
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO captures (id, task_id, camera_id, category, matched_face_id, matched_user_id, distance, confidence, descriptor, snapshot_key, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			capture.ID, capture.TaskID, capture.CameraID, capture.Category,
			capture.MatchedFaceID, capture.MatchedUserID, capture.Distance, capture.Confidence,
			vec, capture.SnapshotKey, capture.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert capture: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// SweepCandidates returns analyzed, not yet deleted tasks whose analysis
// finished before the cutoff. Used by the retention janitor.
func (s *PostgresStore) SweepCandidates(ctx context.Context, cutoff time.Time, limit int) ([]models.AnalysisTask, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, recorded_at, reported_at, file_path, camera_id, analyzed, reported, deleted, analyzed_at
		 FROM analysis_tasks
		 WHERE analyzed = true AND deleted = false AND analyzed_at < $1
		 ORDER BY analyzed_at ASC
		 LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("sweep candidates: %w", err)
	}
	defer rows.Close()

	var tasks []models.AnalysisTask
	for rows.Next() {
		var t models.AnalysisTask
		if err := rows.Scan(&t.ID, &t.RecordedAt, &t.ReportedAt, &t.FilePath, &t.CameraID,
			&t.Analyzed, &t.Reported, &t.Deleted, &t.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MarkTaskDeleted records that the backing image has been removed.
func (s *PostgresStore) MarkTaskDeleted(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE analysis_tasks SET deleted = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark task deleted: %w", err)
	}
	return nil
}
