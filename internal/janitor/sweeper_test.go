package janitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/your-org/watchdog/internal/config"
	"github.com/your-org/watchdog/internal/models"
)

type fakeSweepStore struct {
	batches [][]models.AnalysisTask
	deleted []int64
	markErr error
}

func (f *fakeSweepStore) SweepCandidates(ctx context.Context, cutoff time.Time, limit int) ([]models.AnalysisTask, error) {
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeSweepStore) MarkTaskDeleted(ctx context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDeleter struct {
	deleted []string
	errFor  map[string]error
}

func (f *fakeDeleter) DeleteObject(ctx context.Context, key string) error {
	if err := f.errFor[key]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func sweeperFor(store *fakeSweepStore, objects *fakeDeleter) *Sweeper {
	return NewSweeper(store, objects, config.JanitorConfig{
		SweepInterval: time.Hour,
		Retention:     7 * 24 * time.Hour,
	})
}

func TestSweepTombstonesExpiredTasks(t *testing.T) {
	store := &fakeSweepStore{batches: [][]models.AnalysisTask{{
		{ID: 1, FilePath: "uploads/7/a.jpg"},
		{ID: 2, FilePath: "uploads/7/b.jpg"},
	}}}
	objects := &fakeDeleter{}

	n, err := sweeperFor(store, objects).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 2 {
		t.Errorf("swept = %d, want 2", n)
	}
	if len(objects.deleted) != 2 {
		t.Errorf("objects deleted = %v, want 2 keys", objects.deleted)
	}
	if len(store.deleted) != 2 {
		t.Errorf("tasks tombstoned = %v, want [1 2]", store.deleted)
	}
}

func TestSweepKeepsRowWhenObjectDeleteFails(t *testing.T) {
	// The task must stay visible for the next sweep if its upload could
	// not be removed.
	store := &fakeSweepStore{batches: [][]models.AnalysisTask{{
		{ID: 1, FilePath: "uploads/7/a.jpg"},
		{ID: 2, FilePath: "uploads/7/b.jpg"},
	}}}
	objects := &fakeDeleter{errFor: map[string]error{
		"uploads/7/a.jpg": errors.New("bucket offline"),
	}}

	n, err := sweeperFor(store, objects).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("swept = %d, want 1", n)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 2 {
		t.Errorf("tombstoned = %v, want [2]", store.deleted)
	}
}

func TestSweepStopsWhenNoCandidateProgresses(t *testing.T) {
	store := &fakeSweepStore{
		batches: [][]models.AnalysisTask{{{ID: 1, FilePath: "uploads/7/a.jpg"}}},
		markErr: errors.New("db readonly"),
	}
	objects := &fakeDeleter{}

	n, err := sweeperFor(store, objects).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("swept = %d, want 0", n)
	}
}

func TestSweepEmptyBacklog(t *testing.T) {
	n, err := sweeperFor(&fakeSweepStore{}, &fakeDeleter{}).Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("swept = %d, want 0", n)
	}
}
