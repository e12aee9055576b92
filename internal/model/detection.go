package model

import "fmt"

// Box is an axis-aligned rectangle in pixel coordinates of the source frame.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the middle of the box.
func (b Box) Center() Point {
	return Point{
		X: float64(b.X) + float64(b.Width)/2,
		Y: float64(b.Y) + float64(b.Height)/2,
	}
}

// Area returns width*height, or 0 for degenerate boxes.
func (b Box) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return float64(b.Width) * float64(b.Height)
}

// String formats the box as a tuple, e.g. "(0, 0, 50, 30)".
func (b Box) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.X, b.Y, b.Width, b.Height)
}

// Point is a position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Candidate is one raw network row. Geometry is normalized to the frame size.
type Candidate struct {
	CenterX float32
	CenterY float32
	Width   float32
	Height  float32
	Scores  []float32
}

// Detection is one object found in one frame.
type Detection struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	// Center is the pixel center reported by the decoder, valid when HasCenter is set.
	Center    Point `json:"center"`
	HasCenter bool  `json:"-"`
}

// CenterPoint returns the decoder-reported center, falling back to the box center.
func (d Detection) CenterPoint() Point {
	if d.HasCenter {
		return d.Center
	}
	return d.Box.Center()
}

// DetectionSet is the deduplicated detections of one frame, in selection order.
type DetectionSet []Detection

// Labels returns the labels of the set in order.
func (s DetectionSet) Labels() []string {
	labels := make([]string, 0, len(s))
	for _, d := range s {
		labels = append(labels, d.Label)
	}
	return labels
}

// Frame is a raster frame carrying its own pixel size.
type Frame interface {
	Size() (width, height int)
}
