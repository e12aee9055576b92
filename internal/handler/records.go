package handler

import (
	"net/http"

	"truckmonitor/internal/dto"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/model"
	"truckmonitor/internal/repository"
)

// RecordPage is the paginated response of GET /api/records.
type RecordPage struct {
	Records     []model.StoredRecord `json:"records"`
	Length      int                  `json:"length"`
	TotalPages  int                  `json:"total_pages"`
	CurrentPage int                  `json:"current_page"`
	Limit       int                  `json:"limit"`
}

// GetRecordsHandler returns indexed records filtered by status, label and run.
func GetRecordsHandler(recordRepo repository.RecordRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 50)

		filter := &dto.RecordFilter{
			Status: q.Get("status"),
			Label:  q.Get("label"),
			RunID:  q.Get("run"),
			Limit:  limit,
			Offset: (page - 1) * limit,
		}

		records, err := recordRepo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying records from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := recordRepo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting records: %v", err)
			totalCount = len(records)
		}

		writeJSON(w, http.StatusOK, RecordPage{
			Records:     records,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}, logger)
	}
}

// GetRecordStatsHandler returns aggregate record counts.
func GetRecordStatsHandler(recordRepo repository.RecordRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := recordRepo.GetStats()
		if err != nil {
			logger.Error("Error computing record stats: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats, logger)
	}
}
