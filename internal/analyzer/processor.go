package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/watchdog/internal/match"
	"github.com/your-org/watchdog/internal/models"
	"github.com/your-org/watchdog/internal/observability"
	"github.com/your-org/watchdog/internal/vision"
)

// TaskStore is the slice of the relational store a worker needs to claim
// and complete one task.
type TaskStore interface {
	Task(ctx context.Context, id int64) (*models.AnalysisTask, error)
	CompleteTask(ctx context.Context, taskID int64, reported bool, capture *models.Capture) error
}

// EligibilityStore resolves a camera's authorized known-face set.
type EligibilityStore interface {
	KnownFacesForCamera(ctx context.Context, cameraID int64) ([]models.KnownFace, error)
}

// ObjectStore reads capture images and archives verdict snapshots.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Notifier fans a verdict out to eligible users. Best-effort.
type Notifier interface {
	Notify(ctx context.Context, cameraID int64, category models.Category)
}

// Publisher emits analyzed capture events for live consumers. Best-effort.
type Publisher interface {
	PublishCapture(ctx context.Context, cameraID int64, data interface{}) error
}

// ProcessorConfig wires one worker's collaborators.
type ProcessorConfig struct {
	Tasks       TaskStore
	Eligibility EligibilityStore
	Objects     ObjectStore
	Extractor   vision.Extractor
	Notifier    Notifier
	Publisher   Publisher
	Tolerance   float64
}

// Processor runs one analysis task end to end: load task, resolve
// eligibility, extract a descriptor, apply the matching policy, persist the
// verdict, fan out notifications.
type Processor struct {
	cfg ProcessorConfig
}

func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{cfg: cfg}
}

// Process handles one task id. A nil return means the task reached a
// terminal analyzed state (or was already gone); an error means nothing was
// committed and the task stays pending for a later cycle.
func (p *Processor) Process(ctx context.Context, taskID int64) error {
	task, err := p.cfg.Tasks.Task(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task %d: %w", taskID, err)
	}
	if task == nil {
		// Already handled or removed; nothing to do.
		return nil
	}
	if task.Analyzed || task.Deleted {
		return nil
	}

	start := time.Now()
	known, err := p.cfg.Eligibility.KnownFacesForCamera(ctx, task.CameraID)
	if err != nil {
		return fmt.Errorf("resolve eligibility for camera %d: %w", task.CameraID, err)
	}
	observability.ProcessingDuration.WithLabelValues("eligibility").Observe(time.Since(start).Seconds())

	if len(known) == 0 {
		// Nothing to compare against. Terminal, not an error, and the
		// extractor is never invoked.
		slog.Info("no registered faces for camera", "task_id", task.ID, "camera_id", task.CameraID)
		observability.TasksProcessed.WithLabelValues("ambiguous").Inc()
		return p.cfg.Tasks.CompleteTask(ctx, task.ID, false, nil)
	}

	verdict, descriptor, imageData := p.evaluate(ctx, task, known)

	if verdict.Kind == match.Ambiguous {
		slog.Info("capture not evaluable", "task_id", task.ID, "reason", verdict.Reason)
		observability.TasksProcessed.WithLabelValues("ambiguous").Inc()
		return p.cfg.Tasks.CompleteTask(ctx, task.ID, false, nil)
	}

	capture := &models.Capture{
		ID:         uuid.New(),
		TaskID:     task.ID,
		CameraID:   task.CameraID,
		Descriptor: descriptor,
	}
	if verdict.Kind == match.Matched {
		capture.Category = models.CategoryFriend
		capture.MatchedFaceID = &verdict.Match.FaceID
		capture.MatchedUserID = &verdict.Match.UserID
		capture.Distance = verdict.Match.Distance
		capture.Confidence = verdict.Match.Confidence
		slog.Info("recognized known person",
			"task_id", task.ID,
			"username", verdict.Match.Username,
			"distance", verdict.Match.Distance,
			"confidence", verdict.Match.Confidence,
		)
	} else {
		capture.Category = models.CategoryIntruder
		slog.Info("no known person matched", "task_id", task.ID, "camera_id", task.CameraID)
	}

	capture.SnapshotKey = p.archiveSnapshot(ctx, task, imageData)

	if err := p.cfg.Tasks.CompleteTask(ctx, task.ID, true, capture); err != nil {
		// Nothing committed; the task stays pending and is re-offered on
		// the next poll cycle.
		return fmt.Errorf("complete task %d: %w", task.ID, err)
	}

	outcome := "intruder"
	if capture.Category == models.CategoryFriend {
		outcome = "friend"
	}
	observability.TasksProcessed.WithLabelValues(outcome).Inc()

	if p.cfg.Publisher != nil {
		if err := p.cfg.Publisher.PublishCapture(ctx, task.CameraID, capture); err != nil {
			slog.Warn("publish capture event", "task_id", task.ID, "error", err)
		}
	}

	p.cfg.Notifier.Notify(ctx, task.CameraID, capture.Category)

	return nil
}

// evaluate loads the capture image and applies the matching policy.
// Every per-task data problem (missing object, no face, extractor failure)
// resolves to an Ambiguous verdict rather than an error: these outcomes are
// definitive and must not be retried.
func (p *Processor) evaluate(ctx context.Context, task *models.AnalysisTask, known []models.KnownFace) (match.Verdict, []float32, []byte) {
	data, err := p.cfg.Objects.GetObject(ctx, task.FilePath)
	if err != nil {
		return match.AmbiguousVerdict(fmt.Sprintf("read capture: %v", err)), nil, nil
	}

	start := time.Now()
	descriptors, err := p.cfg.Extractor.Extract(data)
	observability.ProcessingDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	if err != nil {
		return match.AmbiguousVerdict(fmt.Sprintf("extract descriptors: %v", err)), nil, nil
	}
	if len(descriptors) == 0 {
		return match.AmbiguousVerdict("no face detected"), nil, nil
	}

	unknown := descriptors[0]

	start = time.Now()
	verdict := match.Compare(known, unknown, p.cfg.Tolerance)
	observability.ProcessingDuration.WithLabelValues("match").Observe(time.Since(start).Seconds())

	return verdict, unknown, data
}

// archiveSnapshot copies the analyzed image under snapshots/ so it survives
// janitor cleanup of raw uploads. The key is derived from the task id so a
// retried task overwrites its own archive instead of orphaning a copy per
// attempt. Failure degrades to an empty key.
func (p *Processor) archiveSnapshot(ctx context.Context, task *models.AnalysisTask, imageData []byte) string {
	if len(imageData) == 0 {
		return ""
	}
	key := fmt.Sprintf("snapshots/%d/%d.jpg", task.CameraID, task.ID)
	if err := p.cfg.Objects.PutObject(ctx, key, imageData, "image/jpeg"); err != nil {
		slog.Warn("archive snapshot", "task_id", task.ID, "error", err)
		return ""
	}
	return key
}
