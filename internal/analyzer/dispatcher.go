// Package analyzer contains the background analysis worker: a polling
// dispatcher that claims pending tasks from the relational store and fans
// them out to isolated worker processes, and the per-task processor those
// workers run.
package analyzer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/your-org/watchdog/internal/config"
	"github.com/your-org/watchdog/internal/observability"
)

// PendingSource selects the oldest pending task ids, up to a limit.
type PendingSource interface {
	PendingTaskIDs(ctx context.Context, limit int) ([]int64, error)
}

// Runner executes the processor for one task id in an isolated worker.
// The production implementation re-execs this binary; tests run in-process.
type Runner interface {
	Run(ctx context.Context, taskID int64) error
}

// Dispatcher is the long-lived control loop. It only polls, spawns and
// joins; the matching work happens inside the workers.
type Dispatcher struct {
	tasks        PendingSource
	runner       Runner
	batchSize    int
	pollInterval time.Duration
}

func NewDispatcher(tasks PendingSource, runner Runner, cfg config.AnalyzerConfig) *Dispatcher {
	return &Dispatcher{
		tasks:        tasks,
		runner:       runner,
		batchSize:    cfg.BatchSize,
		pollInterval: cfg.PollInterval,
	}
}

// Run polls until ctx is canceled. Each cycle claims up to batchSize task
// ids (oldest first), runs one worker per id, and blocks until the whole
// batch has exited before polling again: batches never overlap, so at most
// batchSize tasks are in flight and no task is ever claimed twice within a
// cycle. Poll failures and an empty backlog both sleep pollInterval; a
// worker failure only logs, leaving the task pending for the next cycle.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("dispatcher started", "batch_size", d.batchSize, "poll_interval", d.pollInterval.String())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ids, err := d.tasks.PendingTaskIDs(ctx, d.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("poll pending tasks", "error", err)
			if err := sleepCtx(ctx, d.pollInterval); err != nil {
				return err
			}
			continue
		}

		if len(ids) == 0 {
			slog.Debug("backlog empty")
			if err := sleepCtx(ctx, d.pollInterval); err != nil {
				return err
			}
			continue
		}

		slog.Info("dispatching batch", "count", len(ids))

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(taskID int64) {
				defer wg.Done()
				if err := d.runner.Run(ctx, taskID); err != nil {
					slog.Error("worker failed", "task_id", taskID, "error", err)
					observability.TaskFailures.Inc()
				}
			}(id)
		}
		wg.Wait()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
