package handler

import (
	"errors"
	"io"
	"net/http"

	"truckmonitor/internal/dto"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/pipeline"
)

// MaxUploadSize bounds POST /api/images bodies.
const MaxUploadSize = 10 << 20

// PipelineController starts and stops stream runs and processes uploads.
type PipelineController interface {
	StartStream(source string) (string, error)
	Stop() error
	Status() dto.PipelineStatus
	ProcessImage(data []byte) (*dto.ProcessResult, error)
}

// StartPipelineHandler handles POST /api/pipeline/start?source=.
func StartPipelineHandler(ctl PipelineController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		runID, err := ctl.StartStream(r.URL.Query().Get("source"))
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, err.Error(), logger)
			return
		}
		if err != nil {
			logger.Error("Failed to start pipeline: %v", err)
			writeError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started", "run_id": runID}, logger)
	}
}

// StopPipelineHandler handles POST /api/pipeline/stop.
func StopPipelineHandler(ctl PipelineController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := ctl.Stop(); err != nil {
			if errors.Is(err, pipeline.ErrNotRunning) {
				writeError(w, http.StatusConflict, err.Error(), logger)
				return
			}
			logger.Error("Failed to stop pipeline: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error(), logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"}, logger)
	}
}

// PipelineStatusHandler handles GET /api/pipeline/status.
func PipelineStatusHandler(ctl PipelineController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctl.Status(), logger)
	}
}

// ProcessImageHandler handles POST /api/images with a multipart "file" field.
func ProcessImageHandler(ctl PipelineController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required", logger)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			writeError(w, http.StatusBadRequest, "unreadable upload", logger)
			return
		}

		result, err := ctl.ProcessImage(data)
		if err != nil {
			if pipeline.IsStoreError(err) {
				logger.Error("Log store failed while processing upload: %v", err)
				writeError(w, http.StatusInternalServerError, err.Error(), logger)
				return
			}
			writeError(w, http.StatusUnprocessableEntity, err.Error(), logger)
			return
		}

		writeJSON(w, http.StatusOK, result, logger)
	}
}
