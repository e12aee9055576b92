package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/model"
)

type memorySnapshots struct {
	inserted []model.Snapshot
}

func (m *memorySnapshots) Insert(s *model.Snapshot) (int64, error) {
	m.inserted = append(m.inserted, *s)
	return int64(len(m.inserted)), nil
}

func (m *memorySnapshots) GetAll(limit int) ([]model.Snapshot, error) {
	return m.inserted, nil
}

func (m *memorySnapshots) GetByFilename(filename string) (*model.Snapshot, error) {
	return nil, nil
}

func newTestBuffer(t *testing.T, limit int) (*BufferService, *memorySnapshots, string) {
	t.Helper()

	log, err := logger.New(t.TempDir(), "debug", io.Discard)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { log.Close() })

	dir := filepath.Join(t.TempDir(), "snapshots")
	repo := &memorySnapshots{}
	buf := NewBufferService(&config.Config{ImageDirectory: dir, SnapshotBufferLimit: limit}, log, repo)
	buf.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 15, 0, time.UTC) }
	return buf, repo, dir
}

func TestAddSnapshot_RespectsPerRunLimit(t *testing.T) {
	buf, _, _ := newTestBuffer(t, 2)

	if !buf.AddSnapshot([]byte("a"), "run-1", 1, nil) || !buf.AddSnapshot([]byte("b"), "run-1", 2, nil) {
		t.Fatal("Expected first two snapshots to be kept")
	}
	if buf.AddSnapshot([]byte("c"), "run-1", 3, nil) {
		t.Error("Expected third snapshot of the same run to be dropped")
	}
	if !buf.AddSnapshot([]byte("d"), "run-2", 1, nil) {
		t.Error("Expected other run to have its own limit")
	}
	if buf.Pending() != 3 {
		t.Errorf("Expected 3 pending, got %d", buf.Pending())
	}
}

func TestFlushSnapshots_WritesAndIndexes(t *testing.T) {
	buf, repo, dir := newTestBuffer(t, 10)

	buf.AddSnapshot([]byte("jpeg-bytes"), "0123456789abcdef", 7, []string{"Truck", "Traffic Light"})

	if saved := buf.FlushSnapshots(); saved != 1 {
		t.Fatalf("Expected 1 saved, got %d", saved)
	}
	if buf.Pending() != 0 {
		t.Error("Expected buffer to be empty after flush")
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("Expected 1 indexed snapshot, got %d", len(repo.inserted))
	}
	snap := repo.inserted[0]
	want := "2024-05-01_12-30-15.000_01234567_000007_truck_traffic-light.jpg"
	if snap.Filename != want {
		t.Errorf("Expected filename %s, got %s", want, snap.Filename)
	}
	if snap.FileSize != int64(len("jpeg-bytes")) || snap.FrameIndex != 7 {
		t.Errorf("Unexpected snapshot metadata: %+v", snap)
	}

	data, err := os.ReadFile(filepath.Join(dir, want))
	if err != nil {
		t.Fatalf("Snapshot not written: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("Unexpected file content %q", data)
	}
}

func TestFlushSnapshots_ResetsLimit(t *testing.T) {
	buf, _, _ := newTestBuffer(t, 1)

	buf.AddSnapshot([]byte("a"), "run", 1, nil)
	buf.FlushSnapshots()

	if !buf.AddSnapshot([]byte("b"), "run", 2, nil) {
		t.Error("Expected limit to reset after flush")
	}
}

func TestSnapshotFilename_NoLabels(t *testing.T) {
	name := snapshotFilename(BufferedSnapshot{
		Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		RunID:      "abc",
		FrameIndex: 12,
	})
	if !strings.HasSuffix(name, "_abc_000012.jpg") {
		t.Errorf("Unexpected filename %s", name)
	}
}
