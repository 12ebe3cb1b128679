package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/your-org/watchdog/internal/models"
)

type fakeTaskStore struct {
	tasks       map[int64]*models.AnalysisTask
	completeErr error

	completed []completion
}

type completion struct {
	taskID   int64
	reported bool
	capture  *models.Capture
}

func (f *fakeTaskStore) Task(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	return f.tasks[id], nil
}

func (f *fakeTaskStore) CompleteTask(ctx context.Context, taskID int64, reported bool, capture *models.Capture) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, completion{taskID, reported, capture})
	if t, ok := f.tasks[taskID]; ok {
		t.Analyzed = true
		t.Reported = reported
	}
	return nil
}

type fakeEligibility struct {
	faces []models.KnownFace
	err   error
	calls int
}

func (f *fakeEligibility) KnownFacesForCamera(ctx context.Context, cameraID int64) ([]models.KnownFace, error) {
	f.calls++
	return f.faces, f.err
}

type fakeObjects struct {
	data   map[string][]byte
	getErr error
	putted map[string][]byte
}

func (f *fakeObjects) GetObject(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.data[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return d, nil
}

func (f *fakeObjects) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if f.putted == nil {
		f.putted = map[string][]byte{}
	}
	f.putted[key] = data
	return nil
}

type fakeExtractor struct {
	descriptors [][]float32
	err         error
	calls       int
}

func (f *fakeExtractor) Extract(imageData []byte) ([][]float32, error) {
	f.calls++
	return f.descriptors, f.err
}

type fakeNotifier struct {
	calls []models.Category
}

func (f *fakeNotifier) Notify(ctx context.Context, cameraID int64, category models.Category) {
	f.calls = append(f.calls, category)
}

type fakePublisher struct {
	published int
	err       error
}

func (f *fakePublisher) PublishCapture(ctx context.Context, cameraID int64, data interface{}) error {
	f.published++
	return f.err
}

type fixture struct {
	tasks       *fakeTaskStore
	eligibility *fakeEligibility
	objects     *fakeObjects
	extractor   *fakeExtractor
	notifier    *fakeNotifier
	publisher   *fakePublisher
	processor   *Processor
}

func newFixture(faces []models.KnownFace, descriptors [][]float32) *fixture {
	f := &fixture{
		tasks: &fakeTaskStore{tasks: map[int64]*models.AnalysisTask{
			1: {ID: 1, CameraID: 7, FilePath: "uploads/7/img.jpg"},
		}},
		eligibility: &fakeEligibility{faces: faces},
		objects:     &fakeObjects{data: map[string][]byte{"uploads/7/img.jpg": []byte("jpeg-bytes")}},
		extractor:   &fakeExtractor{descriptors: descriptors},
		notifier:    &fakeNotifier{},
		publisher:   &fakePublisher{},
	}
	f.processor = NewProcessor(ProcessorConfig{
		Tasks:       f.tasks,
		Eligibility: f.eligibility,
		Objects:     f.objects,
		Extractor:   f.extractor,
		Notifier:    f.notifier,
		Publisher:   f.publisher,
		Tolerance:   0.6,
	})
	return f
}

func knownFace(id int64, desc ...float32) models.KnownFace {
	return models.KnownFace{FaceID: id, UserID: id * 10, Username: "user", Descriptor: desc}
}

func TestProcessMatchedKnownIdentity(t *testing.T) {
	// Known descriptor at distance 0.3, tolerance 0.6: friend verdict,
	// reported=true, one friend push.
	f := newFixture(
		[]models.KnownFace{knownFace(1, 0.3, 0, 0)},
		[][]float32{{0, 0, 0}},
	)

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(f.tasks.completed) != 1 {
		t.Fatalf("completions = %d, want 1", len(f.tasks.completed))
	}
	done := f.tasks.completed[0]
	if !done.reported {
		t.Error("reported = false, want true")
	}
	if done.capture == nil || done.capture.Category != models.CategoryFriend {
		t.Fatalf("capture = %+v, want friend category", done.capture)
	}
	if done.capture.MatchedFaceID == nil || *done.capture.MatchedFaceID != 1 {
		t.Errorf("MatchedFaceID = %v, want 1", done.capture.MatchedFaceID)
	}
	if len(f.notifier.calls) != 1 || f.notifier.calls[0] != models.CategoryFriend {
		t.Errorf("notifier calls = %v, want [FRND]", f.notifier.calls)
	}
	if f.publisher.published != 1 {
		t.Errorf("published = %d, want 1", f.publisher.published)
	}
}

func TestProcessIntruder(t *testing.T) {
	// Nearest known descriptor at distance 0.9, tolerance 0.6: intruder
	// verdict, reported=true, one intruder push.
	f := newFixture(
		[]models.KnownFace{knownFace(1, 0.9, 0, 0)},
		[][]float32{{0, 0, 0}},
	)

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done := f.tasks.completed[0]
	if !done.reported {
		t.Error("reported = false, want true")
	}
	if done.capture.Category != models.CategoryIntruder {
		t.Errorf("category = %s, want INTR", done.capture.Category)
	}
	if done.capture.MatchedFaceID != nil {
		t.Errorf("MatchedFaceID = %v, want nil", done.capture.MatchedFaceID)
	}
	if len(f.notifier.calls) != 1 || f.notifier.calls[0] != models.CategoryIntruder {
		t.Errorf("notifier calls = %v, want [INTR]", f.notifier.calls)
	}
}

func TestProcessEmptyKnownSet(t *testing.T) {
	// No registered faces: analyzed=true, reported=false, and neither the
	// extractor nor the notifier may run.
	f := newFixture(nil, [][]float32{{0, 0, 0}})

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done := f.tasks.completed[0]
	if done.reported {
		t.Error("reported = true, want false")
	}
	if done.capture != nil {
		t.Errorf("capture = %+v, want nil", done.capture)
	}
	if f.extractor.calls != 0 {
		t.Errorf("extractor called %d times, want 0", f.extractor.calls)
	}
	if len(f.notifier.calls) != 0 {
		t.Errorf("notifier called %d times, want 0", len(f.notifier.calls))
	}
	if f.publisher.published != 0 {
		t.Errorf("published = %d, want 0", f.publisher.published)
	}
}

func TestProcessNoDescriptors(t *testing.T) {
	// Image with no detectable face: ambiguous, analyzed=true,
	// reported=false, no push.
	f := newFixture([]models.KnownFace{knownFace(1, 0, 0, 0)}, nil)

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done := f.tasks.completed[0]
	if done.reported {
		t.Error("reported = true, want false")
	}
	if len(f.notifier.calls) != 0 {
		t.Errorf("notifier called, want no pushes")
	}
}

func TestProcessUnreadableImageIsAmbiguous(t *testing.T) {
	f := newFixture([]models.KnownFace{knownFace(1, 0, 0, 0)}, [][]float32{{0, 0, 0}})
	f.objects.getErr = errors.New("storage gone")

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done := f.tasks.completed[0]
	if done.reported {
		t.Error("reported = true, want false")
	}
}

func TestProcessExtractorErrorIsAmbiguous(t *testing.T) {
	f := newFixture([]models.KnownFace{knownFace(1, 0, 0, 0)}, nil)
	f.extractor.err = errors.New("model crashed")

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done := f.tasks.completed[0]
	if done.reported {
		t.Error("reported = true, want false")
	}
	if len(f.notifier.calls) != 0 {
		t.Error("push sent for failed extraction")
	}
}

func TestProcessCompleteFailureLeavesTaskPending(t *testing.T) {
	// A write failure after the verdict must surface as an error, send no
	// push, and leave the task unanalyzed for the next poll.
	f := newFixture(
		[]models.KnownFace{knownFace(1, 0.3, 0, 0)},
		[][]float32{{0, 0, 0}},
	)
	f.tasks.completeErr = errors.New("commit failed")

	if err := f.processor.Process(context.Background(), 1); err == nil {
		t.Fatal("Process returned nil, want error")
	}

	if f.tasks.tasks[1].Analyzed {
		t.Error("task marked analyzed despite failed write")
	}
	if len(f.notifier.calls) != 0 {
		t.Errorf("notifier called after failed write")
	}
	if f.publisher.published != 0 {
		t.Errorf("event published after failed write")
	}
}

func TestProcessMissingTaskIsSilent(t *testing.T) {
	f := newFixture(nil, nil)

	if err := f.processor.Process(context.Background(), 999); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(f.tasks.completed) != 0 {
		t.Errorf("completions = %d, want 0", len(f.tasks.completed))
	}
}

func TestProcessAlreadyAnalyzedIsSilent(t *testing.T) {
	f := newFixture(nil, nil)
	f.tasks.tasks[1].Analyzed = true

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(f.tasks.completed) != 0 {
		t.Errorf("completions = %d, want 0", len(f.tasks.completed))
	}
	if f.eligibility.calls != 0 {
		t.Errorf("eligibility resolved for analyzed task")
	}
}

func TestProcessEligibilityErrorIsRetryable(t *testing.T) {
	f := newFixture(nil, nil)
	f.eligibility.err = errors.New("db down")

	if err := f.processor.Process(context.Background(), 1); err == nil {
		t.Fatal("Process returned nil, want error")
	}
	if len(f.tasks.completed) != 0 {
		t.Errorf("task completed despite eligibility failure")
	}
}

func TestProcessArchivesSnapshot(t *testing.T) {
	f := newFixture(
		[]models.KnownFace{knownFace(1, 0.9, 0, 0)},
		[][]float32{{0, 0, 0}},
	)

	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done := f.tasks.completed[0]
	if done.capture.SnapshotKey == "" {
		t.Fatal("SnapshotKey empty, want archived copy")
	}
	if _, ok := f.objects.putted[done.capture.SnapshotKey]; !ok {
		t.Errorf("snapshot %q not written to object store", done.capture.SnapshotKey)
	}
}

func TestProcessRetryOverwritesSnapshot(t *testing.T) {
	// A task retried after a failed commit must archive under the same
	// key, not accumulate one orphan object per attempt.
	f := newFixture(
		[]models.KnownFace{knownFace(1, 0.9, 0, 0)},
		[][]float32{{0, 0, 0}},
	)
	f.tasks.completeErr = errors.New("commit failed")

	if err := f.processor.Process(context.Background(), 1); err == nil {
		t.Fatal("Process returned nil, want error")
	}

	f.tasks.completeErr = nil
	if err := f.processor.Process(context.Background(), 1); err != nil {
		t.Fatalf("Process retry: %v", err)
	}

	if len(f.objects.putted) != 1 {
		keys := make([]string, 0, len(f.objects.putted))
		for k := range f.objects.putted {
			keys = append(keys, k)
		}
		t.Fatalf("archived objects = %v, want a single key across retries", keys)
	}
	if key := f.tasks.completed[0].capture.SnapshotKey; f.objects.putted[key] == nil {
		t.Errorf("capture SnapshotKey %q does not match archived object", key)
	}
}
