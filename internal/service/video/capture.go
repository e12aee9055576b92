package video

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"truckmonitor/internal/model"

	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when a camera yields no image.
var ErrEmptyFrame = errors.New("camera returned an empty frame")

// Capture reads frames from a camera index or a video file.
type Capture struct {
	device bool
	vc     *gocv.VideoCapture
}

// OpenCapture opens source. A numeric source is a device index.
func OpenCapture(source string) (*Capture, error) {
	_, err := strconv.Atoi(source)
	device := err == nil

	vc, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open video source %q: %w", source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video source %q is not available", source)
	}

	return &Capture{device: device, vc: vc}, nil
}

// Next grabs the next frame. Files end with io.EOF; cameras report
// ErrEmptyFrame so the caller can decide how long to keep trying.
func (c *Capture) Next() (model.Frame, error) {
	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		if c.device {
			return nil, ErrEmptyFrame
		}
		return nil, io.EOF
	}
	return NewFrame(mat), nil
}

// Close releases the capture device.
func (c *Capture) Close() error {
	return c.vc.Close()
}
