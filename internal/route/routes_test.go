package route

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"truckmonitor/internal/config"
	"truckmonitor/internal/dto"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/metrics"
	"truckmonitor/internal/middleware"
	"truckmonitor/internal/repository/sqlite"
	"truckmonitor/internal/service/websocket"
)

type idleController struct{}

func (idleController) StartStream(string) (string, error) { return "run", nil }
func (idleController) Stop() error                          { return nil }
func (idleController) Status() dto.PipelineStatus           { return dto.PipelineStatus{} }
func (idleController) ProcessImage([]byte) (*dto.ProcessResult, error) {
	return &dto.ProcessResult{}, nil
}

func TestSetupRoutes(t *testing.T) {
	dir := t.TempDir()
	log, err := logger.New(filepath.Join(dir, "logs"), "info", io.Discard)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer log.Close()

	db, err := sqlite.New(filepath.Join(dir, "records.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	cfg := &config.Config{
		LogStorePath:   filepath.Join(dir, "log_file.txt"),
		LogDirectory:   filepath.Join(dir, "logs"),
		ImageDirectory: filepath.Join(dir, "snapshots"),
	}
	router := SetupRoutes(Deps{
		Controller:   idleController{},
		Hub:          websocket.NewHubService(log),
		RecordRepo:   sqlite.NewRecordRepository(db),
		SnapshotRepo: sqlite.NewSnapshotRepository(db),
		Metrics:      metrics.New(),
	}, cfg, log)

	tests := []struct {
		name   string
		path   string
		auth   bool
		want   int
		inBody string
	}{
		{"metrics without auth", "/metrics", false, http.StatusOK, "truckmonitor_frames_read_total"},
		{"status requires auth", "/api/pipeline/status", false, http.StatusUnauthorized, ""},
		{"status", "/api/pipeline/status", true, http.StatusOK, `"running":false`},
		{"records", "/api/records", true, http.StatusOK, `"records":[]`},
		{"snapshots", "/api/snapshots", true, http.StatusOK, "[]"},
		{"unknown page", "/nope", true, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth {
				req.AddCookie(&http.Cookie{Name: middleware.AuthCookie, Value: "true"})
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
			if tt.inBody != "" && !strings.Contains(rec.Body.String(), tt.inBody) {
				t.Errorf("Expected %q in body %s", tt.inBody, rec.Body.String())
			}
		})
	}
}
