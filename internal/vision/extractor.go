// Package vision turns raw image bytes into face descriptors using ONNX
// models (SCRFD detection, ArcFace embedding). Sessions are not safe for
// concurrent use; each worker process owns its own Extractor.
package vision

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/watchdog/internal/config"
)

// Extractor converts an image into zero or more face descriptors.
// An image with no detectable face yields an empty slice and nil error.
type Extractor interface {
	Extract(imageData []byte) ([][]float32, error)
}

// ONNXExtractor chains the face detector and the embedder. Descriptors are
// returned ordered by detection confidence, highest first.
type ONNXExtractor struct {
	detector *Detector
	embedder *Embedder
}

// InitRuntime points onnxruntime_go at the platform shared library and
// initializes the environment. Call once per process, before NewONNXExtractor.
func InitRuntime() error {
	ort.SetSharedLibraryPath(onnxLibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("init onnx runtime: %w", err)
	}
	return nil
}

// DestroyRuntime tears down the ONNX environment.
func DestroyRuntime() {
	_ = ort.DestroyEnvironment()
}

func onnxLibPath() string {
	switch runtime.GOOS {
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "onnxruntime.dll"
	}
}

// NewONNXExtractor loads both models from cfg.ModelsDir.
func NewONNXExtractor(cfg config.VisionConfig) (*ONNXExtractor, error) {
	detPath := filepath.Join(cfg.ModelsDir, "det_10g.onnx")
	embPath := filepath.Join(cfg.ModelsDir, "w600k_r50.onnx")

	det, err := NewDetector(detPath, float32(cfg.DetectionThreshold))
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	emb, err := NewEmbedder(embPath)
	if err != nil {
		det.Close()
		return nil, fmt.Errorf("load embedder: %w", err)
	}

	return &ONNXExtractor{detector: det, embedder: emb}, nil
}

func (e *ONNXExtractor) Extract(imageData []byte) ([][]float32, error) {
	img, err := decodeImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()

	detInput := preprocessForDetection(img, e.detector.inputW, e.detector.inputH)
	detections, err := e.detector.Detect(detInput, origW, origH)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if len(detections) == 0 {
		return nil, nil
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	var descriptors [][]float32
	for _, det := range detections {
		crop := cropFace(img, det.BBox)
		if crop == nil {
			continue
		}
		embInput := preprocessForEmbedding(crop, e.embedder.inputW, e.embedder.inputH)
		desc, err := e.embedder.Extract(embInput)
		if err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		descriptors = append(descriptors, desc)
	}

	return descriptors, nil
}

func (e *ONNXExtractor) Close() {
	if e.detector != nil {
		e.detector.Close()
	}
	if e.embedder != nil {
		e.embedder.Close()
	}
}
