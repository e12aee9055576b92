package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/metrics"
	"truckmonitor/internal/repository/sqlite"
	"truckmonitor/internal/route"
	"truckmonitor/internal/service"
	"truckmonitor/internal/service/ai"
	"truckmonitor/internal/service/storage"
	"truckmonitor/internal/service/websocket"
)

type App struct {
	config          *config.Config
	logger          *logger.Logger
	db              *sqlite.DB
	detectorService *ai.DetectorService
	bufferService   *storage.BufferService
	hubService      *websocket.HubService
	store           *logsink.FileStore
	manager         *service.Manager
	server          *http.Server
}

// NewApp loads configuration and wires every service.
func NewApp() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Close()
		return nil, err
	}
	recordRepo := sqlite.NewRecordRepository(db)
	snapshotRepo := sqlite.NewSnapshotRepository(db)

	detector, err := ai.NewDetectorService(cfg, log)
	if err != nil {
		// Frames still flow and are logged with no detections.
		log.Warning("Could not initialize detection network: %v", err)
		detector = nil
	}

	mtr := metrics.New()
	buffer := storage.NewBufferService(cfg, log, snapshotRepo)
	hub := websocket.NewHubService(log)
	store := logsink.NewFileStore(cfg.LogStorePath)

	mng := service.NewManager(cfg, detector, store, recordRepo, buffer, hub, mtr, log)

	router := route.SetupRoutes(route.Deps{
		Controller:   mng,
		Hub:          hub,
		RecordRepo:   recordRepo,
		SnapshotRepo: snapshotRepo,
		Metrics:      mtr,
	}, cfg, log)

	return &App{
		config:          cfg,
		logger:          log,
		db:              db,
		detectorService: detector,
		bufferService:   buffer,
		hubService:      hub,
		store:           store,
		manager:         mng,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves HTTP until ctx is cancelled, then stops the stream, flushes
// snapshots and releases resources.
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancelBg := context.WithCancel(context.Background())
	bufferDone := make(chan struct{})
	go func() {
		a.bufferService.Run(bgCtx)
		close(bufferDone)
	}()
	go a.hubService.Run(bgCtx)

	a.logger.Info("🚀 Truck Monitor")
	a.logger.Info("📍 URL: http://localhost:%d", a.config.Port)
	a.logger.Info("📝 Log store: %s", a.store.Path())
	a.logger.Info("📁 Snapshots: %s", a.config.ImageDirectory)
	a.logger.Info("🤖 AI Model: %s", a.config.ModelPath)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := a.server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Error("HTTP shutdown failed: %v", shutdownErr)
	}

	a.manager.Shutdown()
	cancelBg()
	<-bufferDone

	if a.detectorService != nil {
		a.detectorService.Close()
	}
	a.db.Close()
	a.logger.Info("Server stopped")
	a.logger.Close()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
