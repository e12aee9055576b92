package dto

// RecordStats summarizes the record index.
type RecordStats struct {
	TotalRecords  int            `json:"total_records"`
	AnomalyCount  int            `json:"anomaly_count"`
	PerLabel      map[string]int `json:"per_label"`
	PerMotion     map[string]int `json:"per_motion"`
	Runs          int            `json:"runs"`
	LastTimestamp string         `json:"last_timestamp,omitempty"`
}
