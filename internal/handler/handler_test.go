package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"truckmonitor/internal/config"
	"truckmonitor/internal/dto"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/model"
	"truckmonitor/internal/pipeline"
	"truckmonitor/internal/repository/sqlite"
)

type fakeController struct {
	startErr  error
	stopErr   error
	processed []byte
	source    string
}

func (f *fakeController) StartStream(source string) (string, error) {
	f.source = source
	if f.startErr != nil {
		return "", f.startErr
	}
	return "run-1", nil
}

func (f *fakeController) Stop() error { return f.stopErr }

func (f *fakeController) Status() dto.PipelineStatus {
	return dto.PipelineStatus{Running: true, RunID: "run-1", FramesProcessed: 4}
}

func (f *fakeController) ProcessImage(data []byte) (*dto.ProcessResult, error) {
	f.processed = data
	return &dto.ProcessResult{RunID: "upload", Anomaly: true}, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(t.TempDir(), "debug", io.Discard)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestStartPipelineHandler(t *testing.T) {
	log := newTestLogger(t)

	tests := []struct {
		name   string
		method string
		err    error
		want   int
	}{
		{"started", http.MethodPost, nil, http.StatusAccepted},
		{"already running", http.MethodPost, pipeline.ErrAlreadyRunning, http.StatusConflict},
		{"bad source", http.MethodPost, errors.New("video source not available"), http.StatusBadRequest},
		{"wrong method", http.MethodGet, nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &fakeController{startErr: tt.err}
			rec := httptest.NewRecorder()
			StartPipelineHandler(ctl, log)(rec, httptest.NewRequest(tt.method, "/api/pipeline/start?source=clip.mp4", nil))

			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
			if tt.method == http.MethodPost && ctl.source != "clip.mp4" {
				t.Errorf("Expected source to be passed through, got %q", ctl.source)
			}
		})
	}
}

func TestStopPipelineHandler_NotRunning(t *testing.T) {
	rec := httptest.NewRecorder()
	StopPipelineHandler(&fakeController{stopErr: pipeline.ErrNotRunning}, newTestLogger(t))(rec, httptest.NewRequest(http.MethodPost, "/api/pipeline/stop", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rec.Code)
	}
}

func TestPipelineStatusHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	PipelineStatusHandler(&fakeController{}, newTestLogger(t))(rec, httptest.NewRequest(http.MethodGet, "/api/pipeline/status", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `"running":true`) || !strings.Contains(body, `"frames_processed":4`) {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestProcessImageHandler(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "frame.jpg")
	part.Write([]byte("fake-jpeg"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	ctl := &fakeController{}
	rec := httptest.NewRecorder()
	ProcessImageHandler(ctl, newTestLogger(t))(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(ctl.processed) != "fake-jpeg" {
		t.Errorf("Upload not forwarded, got %q", ctl.processed)
	}
	if !strings.Contains(rec.Body.String(), `"anomaly":true`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestProcessImageHandler_MissingFile(t *testing.T) {
	rec := httptest.NewRecorder()
	ProcessImageHandler(&fakeController{}, newTestLogger(t))(rec, httptest.NewRequest(http.MethodPost, "/api/images", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestGetRecordsHandler(t *testing.T) {
	db, err := sqlite.New(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewRecordRepository(db)
	var batch []model.LogRecord
	for i := 0; i < 5; i++ {
		status := model.StatusNormal
		if i == 0 {
			status = model.StatusAnomaly
		}
		batch = append(batch, model.LogRecord{
			Timestamp: time.Now(), SubjectID: "1", Label: "Truck", Status: status, RunID: "run", FrameIndex: i + 1,
		})
	}
	if err := repo.InsertBatch(batch); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	log := newTestLogger(t)

	rec := httptest.NewRecorder()
	GetRecordsHandler(repo, log)(rec, httptest.NewRequest(http.MethodGet, "/api/records?limit=2&page=2", nil))

	var page RecordPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if page.Length != 5 || page.TotalPages != 3 || len(page.Records) != 2 || page.CurrentPage != 2 {
		t.Errorf("Unexpected page: %+v", page)
	}

	rec = httptest.NewRecorder()
	GetRecordsHandler(repo, log)(rec, httptest.NewRequest(http.MethodGet, "/api/records?status=Anomaly", nil))
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Length != 1 || page.Records[0].FrameIndex != 1 {
		t.Errorf("Unexpected anomaly page: %+v", page)
	}

	rec = httptest.NewRecorder()
	GetRecordStatsHandler(repo, log)(rec, httptest.NewRequest(http.MethodGet, "/api/records/stats", nil))
	if !strings.Contains(rec.Body.String(), `"anomaly_count":1`) {
		t.Errorf("Unexpected stats %s", rec.Body.String())
	}
}

func TestViewSnapshotHandler_RejectsTraversal(t *testing.T) {
	db, err := sqlite.New(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "shot.jpg"), []byte("jpeg"), 0644)

	repo := sqlite.NewSnapshotRepository(db)
	repo.Insert(&model.Snapshot{Filename: "shot.jpg", Timestamp: time.Now(), FilePath: filepath.Join(dir, "shot.jpg")})

	cfg := &config.Config{ImageDirectory: dir}
	h := ViewSnapshotHandler(cfg, repo, newTestLogger(t))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots/view?name=shot.jpg", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Errorf("Expected snapshot to be served, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots/view?name=../../etc/passwd", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestShowRecordLogHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log_file.txt")
	cfg := &config.Config{LogStorePath: path}

	rec := httptest.NewRecorder()
	ShowRecordLogHandler(cfg)(rec, httptest.NewRequest(http.MethodGet, "/logs/records", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before first append, got %d", rec.Code)
	}

	logsink.NewFileStore(path).Append(model.LogRecord{Timestamp: time.Now(), SubjectID: "1", Status: model.StatusNormal})

	rec = httptest.NewRecorder()
	ShowRecordLogHandler(cfg)(rec, httptest.NewRequest(http.MethodGet, "/logs/records", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Truck ID: 1") {
		t.Errorf("Unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReportHandler(t *testing.T) {
	cfg := &config.Config{LogStorePath: filepath.Join(t.TempDir(), "log_file.txt")}

	rec := httptest.NewRecorder()
	ReportHandler(cfg, newTestLogger(t))(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/pdf" || !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("Expected a PDF response")
	}
}

func TestLoginHandler(t *testing.T) {
	cfg := &config.Config{Password: "secret"}
	log := newTestLogger(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("password=wrong"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	LoginHandler(cfg, log)(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("password=secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	LoginHandler(cfg, log)(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("Login must not redirect, got Location %q", loc)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "authenticated" || cookies[0].Value != "true" {
		t.Errorf("Expected auth cookie, got %v", cookies)
	}
}

func TestLogoutHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	LogoutHandler(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("Logout must not redirect, got Location %q", loc)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "authenticated" || cookies[0].MaxAge >= 0 {
		t.Errorf("Expected cleared auth cookie, got %v", cookies)
	}

	rec = httptest.NewRecorder()
	LogoutHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}
