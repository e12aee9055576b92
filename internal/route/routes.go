package route

import (
	"net/http"
	"os"
	"path/filepath"

	"truckmonitor/internal/config"
	"truckmonitor/internal/handler"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/metrics"
	"truckmonitor/internal/middleware"
	"truckmonitor/internal/repository"
	"truckmonitor/internal/service/websocket"
)

// Deps are the services the routes are served from.
type Deps struct {
	Controller   handler.PipelineController
	Hub          *websocket.HubService
	RecordRepo   repository.RecordRepository
	SnapshotRepo repository.SnapshotRepository
	Metrics      *metrics.Metrics
}

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join("static", filepath.Clean(path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the authentication middleware.
func SetupRoutes(deps Deps, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Pipeline control
	mux.HandleFunc("/api/pipeline/start", handler.StartPipelineHandler(deps.Controller, logger))
	mux.HandleFunc("/api/pipeline/stop", handler.StopPipelineHandler(deps.Controller, logger))
	mux.HandleFunc("/api/pipeline/status", handler.PipelineStatusHandler(deps.Controller, logger))
	mux.HandleFunc("/api/images", handler.ProcessImageHandler(deps.Controller, logger))
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(deps.Hub, logger))

	// Indexed records and snapshots
	mux.HandleFunc("/api/records", handler.GetRecordsHandler(deps.RecordRepo, logger))
	mux.HandleFunc("/api/records/stats", handler.GetRecordStatsHandler(deps.RecordRepo, logger))
	mux.HandleFunc("/api/snapshots", handler.GetSnapshotsHandler(deps.SnapshotRepo, logger))
	mux.HandleFunc("/api/snapshots/view", handler.ViewSnapshotHandler(cfg, deps.SnapshotRepo, logger))
	mux.HandleFunc("/api/report", handler.ReportHandler(cfg, logger))

	// Log endpoints
	mux.HandleFunc("/logs/records", handler.ShowRecordLogHandler(cfg))
	mux.HandleFunc("/logs/info", handler.ShowInfoLogsHandler(cfg))
	mux.HandleFunc("/logs/warning", handler.ShowWarningLogsHandler(cfg))
	mux.HandleFunc("/logs/error", handler.ShowErrorLogsHandler(cfg))

	mux.HandleFunc("/logs/info/clear", handler.ClearInfoLogsHandler(logger))
	mux.HandleFunc("/logs/warning/clear", handler.ClearWarningLogsHandler(logger))
	mux.HandleFunc("/logs/error/clear", handler.ClearErrorLogsHandler(logger))

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	mux.Handle("/metrics", deps.Metrics.Handler())

	// Automatic HTML handler mapping for example: /records -> /static/records.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	// Apply middleware
	return middleware.AuthMiddleware(mux)
}
