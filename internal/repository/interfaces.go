package repository

import (
	"truckmonitor/internal/dto"
	"truckmonitor/internal/model"
)

// RecordRepository indexes log records for querying.
type RecordRepository interface {
	// Create operations
	InsertBatch(records []model.LogRecord) error

	// Read operations
	GetAll(filter *dto.RecordFilter) ([]model.StoredRecord, error)
	GetTotalCount(filter *dto.RecordFilter) (int, error)
	GetStats() (*dto.RecordStats, error)
}

// SnapshotRepository defines the interface for saved frame metadata.
type SnapshotRepository interface {
	Insert(s *model.Snapshot) (int64, error)
	GetAll(limit int) ([]model.Snapshot, error)
	GetByFilename(filename string) (*model.Snapshot, error)
}
