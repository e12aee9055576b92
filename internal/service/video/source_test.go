package video

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestIsImagePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"yard.jpg", true},
		{"/data/YARD.JPEG", true},
		{"gate.png", true},
		{"old.bmp", true},
		{"clip.mp4", false},
		{"0", false},
		{"rtsp://camera/stream", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsImagePath(tt.path); got != tt.want {
				t.Errorf("IsImagePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestImageSource_YieldsOneFrame(t *testing.T) {
	frame := NewFrame(gocv.NewMatWithSize(4, 6, gocv.MatTypeCV8UC3))
	source := NewImageSource(frame)
	defer source.Close()

	got, err := source.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if w, h := got.Size(); w != 6 || h != 4 {
		t.Errorf("Expected 6x4 frame, got %dx%d", w, h)
	}
	if _, err := source.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF after the image, got %v", err)
	}
	frame.Close()
}

func TestImageSource_CloseReleasesUnreadFrame(t *testing.T) {
	source := NewImageSource(NewFrame(gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC3)))

	if err := source.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := source.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
	if _, err := source.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF after Close, got %v", err)
	}
}

func TestOpenSource_ReadsImageFile(t *testing.T) {
	mat := gocv.NewMatWithSize(8, 10, gocv.MatTypeCV8UC3)
	defer mat.Close()

	path := filepath.Join(t.TempDir(), "yard.png")
	if ok := gocv.IMWrite(path, mat); !ok {
		t.Fatalf("Failed to write test image")
	}

	source, err := OpenSource(path)
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	defer source.Close()

	if _, ok := source.(*ImageSource); !ok {
		t.Fatalf("Expected *ImageSource, got %T", source)
	}
	frame, err := source.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	defer frame.(*Frame).Close()
	if w, h := frame.Size(); w != 10 || h != 8 {
		t.Errorf("Expected 10x8 frame, got %dx%d", w, h)
	}
}

func TestOpenSource_MissingImage(t *testing.T) {
	if _, err := OpenSource(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("Expected error for missing image")
	}
}
