package dto

import "truckmonitor/internal/model"

// ProcessResult is returned for a single uploaded image.
type ProcessResult struct {
	RunID   string            `json:"run_id"`
	Records []model.LogRecord `json:"records"`
	Anomaly bool              `json:"anomaly"`
	// Image is the annotated frame as base64 JPEG.
	Image string `json:"image,omitempty"`
}
