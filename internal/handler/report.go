package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/service/report"
)

// ReportHandler renders the current log store as a PDF download.
func ReportHandler(cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lines, err := logsink.ReadLines(cfg.LogStorePath)
		if err != nil {
			logger.Error("Failed to read log store: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		pages, err := report.Render(&buf, cfg.ReportTitle, lines)
		if err != nil {
			logger.Error("Failed to render report: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		logger.Info("Report rendered: %d line(s), %d page(s)", len(lines), pages)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Write(buf.Bytes())
	}
}
