package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/model"

	"gocv.io/x/gocv"
)

// DefaultInputSize is the square YOLOv3 input resolution.
const DefaultInputSize = 416

var (
	red    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	orange = color.RGBA{R: 255, G: 165, B: 0, A: 0}
	green  = color.RGBA{R: 0, G: 200, B: 0, A: 0}
	white  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// MatFrame is a frame backed by an OpenCV image.
type MatFrame interface {
	model.Frame
	Mat() gocv.Mat
}

// DetectorService runs a Darknet YOLO network through OpenCV DNN.
type DetectorService struct {
	net         gocv.Net
	outputNames []string
	inputSize   int
	modelPath   string
	configPath  string
	logger      *logger.Logger

	// gocv.Net is not safe for concurrent Forward calls.
	mu sync.Mutex
}

// NewDetectorService loads the network from the configured weights and cfg.
func NewDetectorService(cfg *config.Config, logger *logger.Logger) (*DetectorService, error) {
	service := &DetectorService{
		modelPath:  cfg.ModelPath,
		configPath: cfg.ConfigPath,
		inputSize:  cfg.InputSize,
		logger:     logger,
	}
	if service.inputSize <= 0 {
		service.inputSize = DefaultInputSize
	}

	if err := service.initializeNet(); err != nil {
		return nil, err
	}
	return service, nil
}

// initializeNet loads the DNN network and resolves its output layers.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.configPath)
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	names := net.GetLayerNames()
	for _, id := range net.GetUnconnectedOutLayers() {
		if id-1 >= 0 && id-1 < len(names) {
			s.outputNames = append(s.outputNames, names[id-1])
		}
	}
	if len(s.outputNames) == 0 {
		net.Close()
		return fmt.Errorf("network has no output layers")
	}

	s.net = net
	s.logger.Info("Detection network initialized with outputs %s", strings.Join(s.outputNames, ", "))
	return nil
}

// Forward runs the network and returns every raw output row as a candidate.
func (s *DetectorService) Forward(frame model.Frame) ([]model.Candidate, error) {
	mf, ok := frame.(MatFrame)
	if !ok {
		return nil, fmt.Errorf("unsupported frame type %T", frame)
	}
	mat := mf.Mat()
	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(s.inputSize, s.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.mu.Lock()
	s.net.SetInput(blob, "")
	outputs := s.net.ForwardLayers(s.outputNames)
	s.mu.Unlock()

	var candidates []model.Candidate
	for _, out := range outputs {
		candidates = append(candidates, rowsToCandidates(out)...)
		out.Close()
	}
	return candidates, nil
}

// rowsToCandidates reads [cx, cy, w, h, objectness, scores...] rows.
func rowsToCandidates(out gocv.Mat) []model.Candidate {
	cols := out.Cols()
	if cols <= 5 {
		return nil
	}

	candidates := make([]model.Candidate, 0, out.Rows())
	for i := 0; i < out.Rows(); i++ {
		scores := make([]float32, cols-5)
		for j := range scores {
			scores[j] = out.GetFloatAt(i, j+5)
		}
		candidates = append(candidates, model.Candidate{
			CenterX: out.GetFloatAt(i, 0),
			CenterY: out.GetFloatAt(i, 1),
			Width:   out.GetFloatAt(i, 2),
			Height:  out.GetFloatAt(i, 3),
			Scores:  scores,
		})
	}
	return candidates
}

// Annotate draws boxes, captions and motion text on a copy of the frame and
// returns it as JPEG.
func (s *DetectorService) Annotate(frame MatFrame, records []model.LogRecord) ([]byte, error) {
	mat := frame.Mat().Clone()
	defer mat.Close()

	for _, r := range records {
		c := labelColor(r.Label)
		if r.Status == model.StatusAnomaly {
			c = red
		}

		rect := image.Rect(r.Position.X, r.Position.Y, r.Position.X+r.Position.Width, r.Position.Y+r.Position.Height)
		if err := gocv.Rectangle(&mat, rect, c, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %v", err)
		}

		caption := fmt.Sprintf("%s %.0f%%", r.Label, r.Confidence*100)
		if err := gocv.PutText(&mat, caption, image.Pt(r.Position.X, r.Position.Y-5), gocv.FontHersheySimplex, 0.5, c, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %v", err)
		}

		if r.Motion != "" {
			pt := image.Pt(r.Position.X, r.Position.Y+r.Position.Height+15)
			if err := gocv.PutText(&mat, r.Motion, pt, gocv.FontHersheySimplex, 0.5, c, 1); err != nil {
				return nil, fmt.Errorf("failed to draw text: %v", err)
			}
		}
	}

	return EncodeJPEG(mat)
}

// EncodeJPEG copies the encoded image out of OpenCV memory.
func EncodeJPEG(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

func labelColor(label string) color.RGBA {
	switch strings.ToLower(label) {
	case "person":
		return red
	case "traffic light", "light":
		return orange
	case "truck":
		return green
	default:
		return white
	}
}
