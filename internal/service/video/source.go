package video

import (
	"path/filepath"
	"strings"

	"truckmonitor/internal/model"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// Source yields frames until io.EOF.
type Source interface {
	Next() (model.Frame, error)
	Close() error
}

// IsImagePath reports whether path names a still image by its extension.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// OpenSource opens a still image, a video file or a camera index.
func OpenSource(source string) (Source, error) {
	if IsImagePath(source) {
		frame, err := ReadImage(source)
		if err != nil {
			return nil, err
		}
		return NewImageSource(frame), nil
	}
	return OpenCapture(source)
}
