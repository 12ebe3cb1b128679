// Package janitor retires analyzed captures: raw uploads are removed from
// object storage after the retention window and the task row is tombstoned
// so it never re-enters the dispatcher's backlog. Archived snapshots under
// snapshots/ are kept; only the original upload is swept.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/your-org/watchdog/internal/config"
	"github.com/your-org/watchdog/internal/models"
)

const sweepBatchSize = 100

// TaskStore is the slice of the relational store a sweep needs.
type TaskStore interface {
	SweepCandidates(ctx context.Context, cutoff time.Time, limit int) ([]models.AnalysisTask, error)
	MarkTaskDeleted(ctx context.Context, id int64) error
}

// ObjectStore deletes swept uploads.
type ObjectStore interface {
	DeleteObject(ctx context.Context, key string) error
}

type Sweeper struct {
	tasks     TaskStore
	objects   ObjectStore
	interval  time.Duration
	retention time.Duration
}

func NewSweeper(tasks TaskStore, objects ObjectStore, cfg config.JanitorConfig) *Sweeper {
	return &Sweeper{
		tasks:     tasks,
		objects:   objects,
		interval:  cfg.SweepInterval,
		retention: cfg.Retention,
	}
}

// Run sweeps immediately, then on every interval tick until ctx is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	slog.Info("janitor started",
		"sweep_interval", s.interval.String(),
		"retention", s.retention.String(),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.Sweep(ctx); err != nil {
			slog.Error("sweep failed", "error", err)
		} else if n > 0 {
			slog.Info("sweep finished", "swept", n)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep retires every analyzed task older than the retention window and
// returns how many it tombstoned. The object delete runs first: if it
// fails the row stays visible and the task is retried on the next sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.retention)

	swept := 0
	for {
		candidates, err := s.tasks.SweepCandidates(ctx, cutoff, sweepBatchSize)
		if err != nil {
			return swept, err
		}
		if len(candidates) == 0 {
			return swept, nil
		}

		progressed := false
		for _, task := range candidates {
			if err := s.objects.DeleteObject(ctx, task.FilePath); err != nil {
				slog.Warn("delete upload", "task_id", task.ID, "key", task.FilePath, "error", err)
				continue
			}
			if err := s.tasks.MarkTaskDeleted(ctx, task.ID); err != nil {
				slog.Warn("tombstone task", "task_id", task.ID, "error", err)
				continue
			}
			swept++
			progressed = true
		}

		// Every candidate failed; bail out rather than spin on the same
		// batch until the next tick.
		if !progressed {
			return swept, nil
		}
		if len(candidates) < sweepBatchSize {
			return swept, nil
		}
	}
}
