package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"truckmonitor/internal/config"
	"truckmonitor/internal/dto"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/metrics"
	"truckmonitor/internal/model"
	"truckmonitor/internal/pipeline"
	"truckmonitor/internal/repository"
	"truckmonitor/internal/service/ai"
	"truckmonitor/internal/service/storage"
	"truckmonitor/internal/service/video"
	"truckmonitor/internal/service/websocket"
)

var (
	// ErrAlreadyRunning is returned when a stream is started twice.
	ErrAlreadyRunning = pipeline.ErrAlreadyRunning
	// ErrNotRunning is returned by Stop when no stream is active.
	ErrNotRunning = pipeline.ErrNotRunning
)

// Manager owns the detector and the shared sinks and runs at most one
// stream pipeline at a time. Every run gets a fresh pipeline and track state.
type Manager struct {
	cfg              *config.Config
	detectorService  *ai.DetectorService
	store            logsink.Store
	recordRepo       repository.RecordRepository
	bufferService    *storage.BufferService
	websocketService *websocket.HubService
	metrics          *metrics.Metrics
	logger           *logger.Logger

	mu      sync.Mutex
	current *pipeline.Pipeline
	cancel  context.CancelFunc
	done   chan struct{}
	status dto.PipelineStatus

	// Uploads share the detector but each gets its own pipeline.
	uploadMu sync.Mutex
}

// NewManager wires the services together. detectorService may be nil when the
// model could not be loaded; frames then yield no detections.
func NewManager(cfg *config.Config, detectorService *ai.DetectorService, store logsink.Store,
	recordRepo repository.RecordRepository, bufferService *storage.BufferService,
	websocketService *websocket.HubService, mtr *metrics.Metrics, logger *logger.Logger) *Manager {
	return &Manager{
		cfg:              cfg,
		detectorService:  detectorService,
		store:            store,
		recordRepo:       recordRepo,
		bufferService:    bufferService,
		websocketService: websocketService,
		metrics:          mtr,
		logger:           logger,
	}
}

// StartStream opens source and processes it in the background. An empty
// source uses the configured one. It returns the run id.
func (m *Manager) StartStream(source string) (string, error) {
	if source == "" {
		source = m.cfg.VideoSource
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return "", ErrAlreadyRunning
	}

	frames, err := video.OpenSource(source)
	if err != nil {
		return "", err
	}

	p, err := m.newPipeline()
	if err != nil {
		frames.Close()
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.current = p
	m.done = make(chan struct{})
	m.status = dto.PipelineStatus{
		Running:   true,
		RunID:     p.RunID(),
		Source:    source,
		StartedAt: time.Now(),
	}

	go m.run(ctx, p, frames, m.done)

	m.logger.Info("🎬 Stream %s started on source %s", p.RunID(), source)
	return p.RunID(), nil
}

func (m *Manager) run(ctx context.Context, p *pipeline.Pipeline, frames video.Source, done chan struct{}) {
	defer close(done)
	defer frames.Close()

	err := p.Run(ctx, frames)

	m.mu.Lock()
	m.status.Running = false
	if err != nil {
		m.status.LastError = err.Error()
		m.logger.Error("Stream %s ended: %v", p.RunID(), err)
	}
	m.cancel()
	m.cancel = nil
	m.mu.Unlock()

	// Flush what the run captured rather than wait for the ticker.
	m.bufferService.FlushSnapshots()
}

// Stop cancels the active stream and waits for the frame in flight to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel == nil {
		return ErrNotRunning
	}

	cancel()
	<-done
	m.logger.Info("🛑 Stream stopped")
	return nil
}

// Status reports the current or last run with that run's counters.
// Process-wide totals live on /metrics.
func (m *Manager) Status() dto.PipelineStatus {
	m.mu.Lock()
	status, current := m.status, m.current
	m.mu.Unlock()

	if current != nil {
		stats := current.Stats()
		status.FramesRead = stats.FramesRead
		status.FramesProcessed = stats.FramesProcessed
		status.RecordsAppended = stats.RecordsAppended
	}
	return status
}

// ProcessImage runs a single uploaded image through a fresh pipeline and
// returns its records with the annotated frame.
func (m *Manager) ProcessImage(data []byte) (*dto.ProcessResult, error) {
	frame, err := video.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	m.uploadMu.Lock()
	defer m.uploadMu.Unlock()

	p, err := m.newPipeline()
	if err != nil {
		return nil, err
	}

	result, err := p.ProcessFrame(frame)
	if err != nil {
		return nil, err
	}

	out := &dto.ProcessResult{
		RunID:   result.RunID,
		Records: result.Records,
		Anomaly: result.Anomaly,
	}

	if m.detectorService != nil {
		annotated, err := m.detectorService.Annotate(frame, result.Records)
		if err != nil {
			m.logger.Warning("Failed to annotate upload: %v", err)
		} else {
			out.Image = base64.StdEncoding.EncodeToString(annotated)
		}
	}
	return out, nil
}

// Shutdown stops any active stream.
func (m *Manager) Shutdown() {
	if err := m.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		m.logger.Error("Failed to stop stream: %v", err)
	}
}

func (m *Manager) newPipeline() (*pipeline.Pipeline, error) {
	var detector pipeline.Model
	if m.detectorService != nil {
		detector = m.detectorService
	}

	observers := []pipeline.Observer{
		pipeline.ObserverFunc(m.indexRecords),
		pipeline.ObserverFunc(m.broadcastResult),
		pipeline.ObserverFunc(m.captureSnapshot),
	}

	p, err := pipeline.NewFromConfig(m.cfg, detector, m.store, observers, m.metrics, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return p, nil
}

func (m *Manager) indexRecords(_ model.Frame, result pipeline.FrameResult) {
	if m.recordRepo == nil || len(result.Records) == 0 {
		return
	}
	if err := m.recordRepo.InsertBatch(result.Records); err != nil {
		m.logger.Error("Failed to index records of frame %d: %v", result.FrameIndex, err)
	}
}

func (m *Manager) broadcastResult(_ model.Frame, result pipeline.FrameResult) {
	if err := m.websocketService.BroadcastJSON(result); err != nil {
		m.logger.Error("Failed to broadcast frame %d: %v", result.FrameIndex, err)
	}
}

func (m *Manager) captureSnapshot(frame model.Frame, result pipeline.FrameResult) {
	if !result.Anomaly || m.detectorService == nil {
		return
	}
	mf, ok := frame.(ai.MatFrame)
	if !ok {
		return
	}

	data, err := m.detectorService.Annotate(mf, result.Records)
	if err != nil {
		m.logger.Error("Failed to annotate frame %d: %v", result.FrameIndex, err)
		return
	}
	m.bufferService.AddSnapshot(data, result.RunID, result.FrameIndex, result.Detections.Labels())
}
