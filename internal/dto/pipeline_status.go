package dto

import "time"

// PipelineStatus describes the current or last stream run.
type PipelineStatus struct {
	Running   bool      `json:"running"`
	RunID     string    `json:"run_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`

	FramesRead      uint64 `json:"frames_read"`
	FramesProcessed uint64 `json:"frames_processed"`
	RecordsAppended uint64 `json:"records_appended"`
}
