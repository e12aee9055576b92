package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/model"
	"truckmonitor/internal/repository"
)

const (
	// DefaultBufferLimit limits how many snapshots per run are buffered before flushing.
	DefaultBufferLimit = 10
	// DefaultFlushInterval defines how often (seconds) buffered snapshots are flushed to disk.
	DefaultFlushInterval = 30

	timestampLayout = "2006-01-02_15-04-05.000"
)

// BufferedSnapshot is an annotated frame waiting to be written.
type BufferedSnapshot struct {
	Timestamp  time.Time
	RunID      string
	FrameIndex int
	Labels     []string
	Data       []byte
}

// BufferService buffers anomaly snapshots in memory and periodically flushes them to disk.
type BufferService struct {
	imagesDir     string
	limit         int
	flushInterval time.Duration
	snapshots     []BufferedSnapshot
	bufferCount   map[string]int
	mu            sync.Mutex
	logger        *logger.Logger
	snapshotRepo  repository.SnapshotRepository
	now           func() time.Time
}

// NewBufferService creates a BufferService writing to the configured image directory.
// snapshotRepo may be nil, in which case files are written but not indexed.
func NewBufferService(cfg *config.Config, logger *logger.Logger, snapshotRepo repository.SnapshotRepository) *BufferService {
	limit := cfg.SnapshotBufferLimit
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	interval := cfg.SnapshotFlushInterval
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	return &BufferService{
		imagesDir:     cfg.ImageDirectory,
		limit:         limit,
		flushInterval: time.Duration(interval) * time.Second,
		snapshots:     make([]BufferedSnapshot, 0),
		bufferCount:   make(map[string]int),
		logger:        logger,
		snapshotRepo:  snapshotRepo,
		now:           time.Now,
	}
}

// Run flushes on a ticker until ctx is cancelled, then flushes once more.
func (s *BufferService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.FlushSnapshots()
			return
		case <-ticker.C:
			s.FlushSnapshots()
		}
	}
}

// AddSnapshot buffers an encoded image. Snapshots past the per-run limit are
// dropped until the next flush. It reports whether the snapshot was kept.
func (s *BufferService) AddSnapshot(data []byte, runID string, frameIndex int, labels []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferCount[runID] >= s.limit {
		return false
	}

	s.snapshots = append(s.snapshots, BufferedSnapshot{
		Timestamp:  s.now(),
		RunID:      runID,
		FrameIndex: frameIndex,
		Labels:     labels,
		Data:       data,
	})
	s.bufferCount[runID]++
	s.logger.Debug("Snapshot buffer for run %s: %d/%d", runID, s.bufferCount[runID], s.limit)
	return true
}

// Pending returns the number of buffered snapshots.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// FlushSnapshots writes buffered snapshots to disk, indexes them and resets
// the buffer. It returns the number saved.
func (s *BufferService) FlushSnapshots() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.snapshots) == 0 {
		return 0
	}

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		s.logger.Error("Error creating directory: %v", err)
		return 0
	}

	savedCount := 0
	for _, snap := range s.snapshots {
		filename := snapshotFilename(snap)
		fullpath := filepath.Join(s.imagesDir, filename)

		if err := os.WriteFile(fullpath, snap.Data, 0644); err != nil {
			s.logger.Error("Error saving snapshot %s: %v", filename, err)
			continue
		}

		if s.snapshotRepo != nil {
			_, err := s.snapshotRepo.Insert(&model.Snapshot{
				Filename:   filename,
				RunID:      snap.RunID,
				FrameIndex: snap.FrameIndex,
				Timestamp:  snap.Timestamp,
				FilePath:   fullpath,
				FileSize:   int64(len(snap.Data)),
			})
			if err != nil {
				s.logger.Error("Error saving snapshot to database %s: %v", filename, err)
				continue
			}
		}

		savedCount++
	}

	s.logger.Info("Flushed %d snapshots to disk", savedCount)
	s.snapshots = s.snapshots[:0]
	s.bufferCount = make(map[string]int)
	return savedCount
}

func snapshotFilename(snap BufferedSnapshot) string {
	run := snap.RunID
	if len(run) > 8 {
		run = run[:8]
	}

	labels := make([]string, 0, len(snap.Labels))
	for _, l := range snap.Labels {
		labels = append(labels, strings.ReplaceAll(strings.ToLower(l), " ", "-"))
	}

	name := fmt.Sprintf("%s_%s_%06d", snap.Timestamp.Format(timestampLayout), run, snap.FrameIndex)
	if len(labels) > 0 {
		name += "_" + strings.Join(labels, "_")
	}
	return name + ".jpg"
}
