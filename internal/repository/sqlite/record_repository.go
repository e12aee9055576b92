package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"truckmonitor/internal/dto"
	"truckmonitor/internal/model"
)

// RecordRepository implements repository.RecordRepository for SQLite.
type RecordRepository struct {
	db *DB
}

// NewRecordRepository creates a new SQLite record repository.
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// InsertBatch adds the records of one frame in a single transaction.
func (r *RecordRepository) InsertBatch(records []model.LogRecord) error {
	if len(records) == 0 {
		return nil
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (run_id, frame_index, timestamp, subject_id, label, confidence,
			x, y, width, height, size_bucket, status, motion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.RunID, rec.FrameIndex, rec.Timestamp, rec.SubjectID, rec.Label, rec.Confidence,
			rec.Position.X, rec.Position.Y, rec.Position.Width, rec.Position.Height,
			rec.SizeBucket, string(rec.Status), rec.Motion); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return tx.Commit()
}

// GetAll retrieves records matching the filter, newest first.
func (r *RecordRepository) GetAll(filter *dto.RecordFilter) ([]model.StoredRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := recordWhere(filter)
	query := `
		SELECT id, run_id, frame_index, timestamp, subject_id, label, confidence,
			x, y, width, height, size_bucket, status, motion
		FROM records
	` + where + " ORDER BY id DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []model.StoredRecord{}
	for rows.Next() {
		var rec model.StoredRecord
		var status string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.FrameIndex, &rec.Timestamp, &rec.SubjectID, &rec.Label, &rec.Confidence,
			&rec.Position.X, &rec.Position.Y, &rec.Position.Width, &rec.Position.Height,
			&rec.SizeBucket, &status, &rec.Motion); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Status = model.Status(status)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetTotalCount returns the number of records matching the filter.
func (r *RecordRepository) GetTotalCount(filter *dto.RecordFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := recordWhere(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM records `+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// GetStats returns aggregate counts over all indexed records.
func (r *RecordRepository) GetStats() (*dto.RecordStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &dto.RecordStats{
		PerLabel:  make(map[string]int),
		PerMotion: make(map[string]int),
	}

	var last sql.NullString
	err := r.db.Conn().QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT run_id),
			MAX(timestamp)
		FROM records
	`, string(model.StatusAnomaly)).Scan(&stats.TotalRecords, &stats.AnomalyCount, &stats.Runs, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	stats.LastTimestamp = last.String

	labelRows, err := r.db.Conn().Query(`SELECT label, COUNT(*) FROM records GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer labelRows.Close()

	for labelRows.Next() {
		var label string
		var count int
		if err := labelRows.Scan(&label, &count); err != nil {
			return nil, err
		}
		stats.PerLabel[label] = count
	}

	motionRows, err := r.db.Conn().Query(`SELECT motion, COUNT(*) FROM records WHERE motion != '' GROUP BY motion`)
	if err != nil {
		return nil, fmt.Errorf("failed to query motions: %w", err)
	}
	defer motionRows.Close()

	// Motion text carries the angle, group by direction only.
	for motionRows.Next() {
		var motion string
		var count int
		if err := motionRows.Scan(&motion, &count); err != nil {
			return nil, err
		}
		direction, _, _ := strings.Cut(motion, ":")
		stats.PerMotion[direction] += count
	}

	return stats, nil
}

func recordWhere(filter *dto.RecordFilter) (string, []interface{}) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if filter == nil {
		return where, args
	}

	if filter.Status != "" {
		where += " AND status = ? COLLATE NOCASE"
		args = append(args, filter.Status)
	}

	if filter.Label != "" {
		where += " AND label = ? COLLATE NOCASE"
		args = append(args, filter.Label)
	}

	if filter.RunID != "" {
		where += " AND run_id = ?"
		args = append(args, filter.RunID)
	}

	return where, args
}
