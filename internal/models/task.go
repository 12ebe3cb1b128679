package models

import (
	"time"
)

// AnalysisTask is one camera capture waiting for face analysis.
// A task is born with analyzed=false and transitions to analyzed=true
// exactly once; the backlog is the set {analyzed=false, deleted=false}.
type AnalysisTask struct {
	ID         int64      `json:"id" db:"id"`
	RecordedAt time.Time  `json:"recorded_at" db:"recorded_at"`
	ReportedAt time.Time  `json:"reported_at" db:"reported_at"`
	FilePath   string     `json:"file_path" db:"file_path"` // object key in the capture bucket
	CameraID   int64      `json:"camera_id" db:"camera_id"`
	Analyzed   bool       `json:"analyzed" db:"analyzed"`
	Reported   bool       `json:"reported" db:"reported"`
	Deleted    bool       `json:"deleted" db:"deleted"`
	AnalyzedAt *time.Time `json:"analyzed_at,omitempty" db:"analyzed_at"`
}
