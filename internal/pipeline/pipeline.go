package pipeline

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"truckmonitor/internal/detection"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/metrics"
	"truckmonitor/internal/model"
	"truckmonitor/internal/tracking"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Model runs the detection network on one frame.
type Model interface {
	Forward(frame model.Frame) ([]model.Candidate, error)
}

// FrameResult is everything produced for one processed frame.
type FrameResult struct {
	RunID      string             `json:"run_id"`
	FrameIndex int                `json:"frame_index"`
	Detections model.DetectionSet `json:"detections"`
	Records    []model.LogRecord  `json:"records"`
	Anomaly    bool               `json:"anomaly"`
}

// Observer is notified after a frame's records were appended.
// Observers must not retain the frame.
type Observer interface {
	ObserveFrame(frame model.Frame, result FrameResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frame model.Frame, result FrameResult)

func (f ObserverFunc) ObserveFrame(frame model.Frame, result FrameResult) {
	f(frame, result)
}

// Pipeline is one decoder -> classifier -> store chain with its own track state.
// It is not safe for concurrent use.
type Pipeline struct {
	runID      string
	model      Model
	decoder    *detection.Decoder
	classifier *tracking.Classifier
	store      logsink.Store
	observers  []Observer
	metrics    *metrics.Metrics
	logger     *logger.Logger

	interval      int
	maxReadErrors int
	frameIndex    int

	// Per-run counters, readable while Run is in progress.
	framesRead      atomic.Uint64
	framesProcessed atomic.Uint64
	recordsAppended atomic.Uint64
}

// RunStats counts the work of one pipeline instance.
type RunStats struct {
	FramesRead      uint64
	FramesProcessed uint64
	RecordsAppended uint64
}

// Options configures a Pipeline.
type Options struct {
	Model      Model
	Decoder    *detection.Decoder
	Classifier *tracking.Classifier
	Store      logsink.Store
	Observers  []Observer
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
	// Interval processes every Nth frame read in Run.
	Interval      int
	MaxReadErrors int
}

// New creates a pipeline with a fresh run id.
func New(opts Options) *Pipeline {
	if opts.Interval < 1 {
		opts.Interval = 1
	}
	if opts.MaxReadErrors < 1 {
		opts.MaxReadErrors = 30
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Pipeline{
		runID:         uuid.NewString(),
		model:         opts.Model,
		decoder:       opts.Decoder,
		classifier:    opts.Classifier,
		store:         opts.Store,
		observers:     opts.Observers,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		interval:      opts.Interval,
		maxReadErrors: opts.MaxReadErrors,
	}
}

// RunID identifies this pipeline instance in records and logs.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Stats returns this run's counters. Safe to call concurrently with Run.
func (p *Pipeline) Stats() RunStats {
	return RunStats{
		FramesRead:      p.framesRead.Load(),
		FramesProcessed: p.framesProcessed.Load(),
		RecordsAppended: p.recordsAppended.Load(),
	}
}

// ProcessFrame decodes, classifies and appends the records of one frame.
// Model failures degrade to an empty detection set; only store failures are
// returned.
func (p *Pipeline) ProcessFrame(frame model.Frame) (FrameResult, error) {
	start := time.Now()
	p.frameIndex++

	width, height := frame.Size()

	var candidates []model.Candidate
	if p.model != nil {
		var err error
		candidates, err = p.model.Forward(frame)
		if err != nil {
			p.metrics.InferenceErrors.Add(1)
			p.logger.Warning("Inference failed on frame %d, treating as empty: %v", p.frameIndex, err)
			candidates = nil
		}
	}

	set := p.decoder.Decode(candidates, width, height)
	records := p.classifier.Classify(set)

	result := FrameResult{
		RunID:      p.runID,
		FrameIndex: p.frameIndex,
		Detections: set,
		Records:    records,
	}
	for i := range result.Records {
		result.Records[i].RunID = p.runID
		result.Records[i].FrameIndex = p.frameIndex
		if result.Records[i].Status == model.StatusAnomaly {
			result.Anomaly = true
		}
	}

	if err := p.store.Append(result.Records...); err != nil {
		p.metrics.StoreErrors.Add(1)
		return result, fmt.Errorf("frame %d: %w", p.frameIndex, err)
	}

	p.framesProcessed.Add(1)
	p.recordsAppended.Add(uint64(len(records)))
	p.metrics.FramesProcessed.Add(1)
	p.metrics.Detections.Add(uint64(len(set)))
	p.metrics.RecordsAppended.Add(uint64(len(records)))
	if result.Anomaly {
		p.metrics.AnomalyFrames.Add(1)
	}
	p.metrics.UpdateProcessLatency(time.Since(start))

	if len(set) > 0 {
		p.logger.WithFields(logrus.Fields{
			"run":     p.runID,
			"frame":   p.frameIndex,
			"objects": len(set),
			"anomaly": result.Anomaly,
		}).Debug("frame processed")
	}

	for _, o := range p.observers {
		o.ObserveFrame(frame, result)
	}
	return result, nil
}

// IsStoreError reports whether err came from the log store.
func IsStoreError(err error) bool {
	return errors.Is(err, logsink.ErrStoreUnwritable)
}
