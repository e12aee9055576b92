package model

import "time"

// Status is the anomaly classification of a record.
type Status string

const (
	StatusNormal  Status = "Normal"
	StatusAnomaly Status = "Anomaly"
)

// LogRecord is one durable log entry, created once per detection per frame.
type LogRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	SubjectID  string    `json:"subject_id"`
	Position   Box       `json:"position"`
	SizeBucket string    `json:"size_bucket"`
	Status     Status    `json:"status"`
	// Motion is empty when no previous position existed for the class.
	Motion string `json:"motion,omitempty"`

	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	RunID      string  `json:"run_id,omitempty"`
	FrameIndex int     `json:"frame_index"`
}

// StoredRecord is a LogRecord as indexed in the database.
type StoredRecord struct {
	ID int64 `json:"id"`
	LogRecord
}

// Snapshot is an annotated frame saved to disk.
type Snapshot struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	RunID      string    `json:"run_id"`
	FrameIndex int       `json:"frame_index"`
	Timestamp  time.Time `json:"timestamp"`
	FilePath   string    `json:"filepath"`
	FileSize   int64     `json:"filesize"`
}
