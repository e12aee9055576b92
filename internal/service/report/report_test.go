package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"truckmonitor/internal/logsink"
	"truckmonitor/internal/model"
)

func TestRender_SinglePage(t *testing.T) {
	var buf bytes.Buffer
	pages, err := Render(&buf, "", []string{
		"2024-05-01 12:00:00.000000, Truck ID: 1, Position: (0, 0, 50, 30), Object Size: medium, Status: Normal, Turn Info: ",
		"2024-05-01 12:00:01.000000, Truck ID: 1, Position: (20, 0, 50, 30), Object Size: medium, Status: Normal, Turn Info: Moving Straight: 0.00°",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if pages != 1 {
		t.Errorf("Expected 1 page, got %d", pages)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Error("Output is not a PDF")
	}
}

func TestRender_Paginates(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}

	var buf bytes.Buffer
	pages, err := Render(&buf, "Fleet", lines)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if pages < 2 {
		t.Errorf("Expected multiple pages, got %d", pages)
	}
}

func TestGenerateFromStore(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "log_file.txt")
	reportPath := filepath.Join(dir, "out", "report.pdf")

	store := logsink.NewFileStore(storePath)
	err := store.Append(model.LogRecord{
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		SubjectID:  "1",
		Position:   model.Box{Width: 50, Height: 30},
		SizeBucket: "medium",
		Status:     model.StatusAnomaly,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	pages, err := GenerateFromStore(storePath, reportPath, DefaultTitle)
	if err != nil {
		t.Fatalf("GenerateFromStore failed: %v", err)
	}
	if pages != 1 {
		t.Errorf("Expected 1 page, got %d", pages)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Report not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Report is not a PDF")
	}
}

func TestGenerateFromStore_MissingStore(t *testing.T) {
	dir := t.TempDir()

	pages, err := GenerateFromStore(filepath.Join(dir, "missing.txt"), filepath.Join(dir, "report.pdf"), "")
	if err != nil {
		t.Fatalf("Expected empty report, got %v", err)
	}
	if pages != 1 {
		t.Errorf("Expected title page only, got %d pages", pages)
	}
}
