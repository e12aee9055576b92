package video

import (
	"gocv.io/x/gocv"
)

// Frame wraps a decoded BGR image.
type Frame struct {
	mat gocv.Mat
}

// NewFrame takes ownership of mat.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

// Mat returns the underlying image. It is invalid after Close.
func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

// Size returns the frame width and height in pixels.
func (f *Frame) Size() (int, int) {
	return f.mat.Cols(), f.mat.Rows()
}

// Close releases the image memory.
func (f *Frame) Close() error {
	return f.mat.Close()
}
