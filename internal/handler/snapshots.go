package handler

import (
	"net/http"
	"path/filepath"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/repository"
)

// GetSnapshotsHandler lists the newest anomaly snapshots.
func GetSnapshotsHandler(snapshotRepo repository.SnapshotRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDefault(r.URL.Query().Get("limit"), 24)

		snapshots, err := snapshotRepo.GetAll(limit)
		if err != nil {
			logger.Error("Error querying snapshots from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, snapshots, logger)
	}
}

// ViewSnapshotHandler serves a single snapshot named by the "name" query parameter.
func ViewSnapshotHandler(cfg *config.Config, snapshotRepo repository.SnapshotRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "Name parameter is required", http.StatusBadRequest)
			return
		}
		// Only bare file names inside the image directory are served.
		name = filepath.Base(name)

		snapshot, err := snapshotRepo.GetByFilename(name)
		if err != nil {
			logger.Error("Error looking up snapshot %s: %v", name, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if snapshot == nil {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(cfg.ImageDirectory, snapshot.Filename))
	}
}
