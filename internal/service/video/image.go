package video

import (
	"fmt"
	"io"

	"truckmonitor/internal/model"

	"gocv.io/x/gocv"
)

// ImageSource yields a single still image, then io.EOF.
type ImageSource struct {
	frame *Frame
}

// DecodeImage decodes an encoded image (JPEG, PNG, ...) held in memory.
func DecodeImage(data []byte) (*Frame, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("decoded image is empty")
	}
	return NewFrame(mat), nil
}

// ReadImage loads an image file from disk.
func ReadImage(path string) (*Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to read image %s", path)
	}
	return NewFrame(mat), nil
}

// NewImageSource wraps an already decoded frame.
func NewImageSource(frame *Frame) *ImageSource {
	return &ImageSource{frame: frame}
}

func (s *ImageSource) Next() (model.Frame, error) {
	if s.frame == nil {
		return nil, io.EOF
	}
	f := s.frame
	s.frame = nil
	return f, nil
}

// Close releases the image if it was never handed out.
func (s *ImageSource) Close() error {
	if s.frame != nil {
		err := s.frame.Close()
		s.frame = nil
		return err
	}
	return nil
}
