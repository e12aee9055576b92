package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds pipeline counters exported to Prometheus.
type Metrics struct {
	// Frame counters
	FramesRead      atomic.Uint64
	FramesProcessed atomic.Uint64
	FramesSkipped   atomic.Uint64
	AnomalyFrames   atomic.Uint64

	// Error counters
	ReadErrors      atomic.Uint64
	InferenceErrors atomic.Uint64
	StoreErrors     atomic.Uint64

	// Output counters
	Detections      atomic.Uint64
	RecordsAppended atomic.Uint64

	ProcessLatencyMs atomic.Uint64
	PipelineRunning  atomic.Uint64 // 0 = idle, 1 = running

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	gauges := []struct {
		name  string
		help  string
		value *atomic.Uint64
	}{
		{"truckmonitor_frames_read_total", "Total frames read from the frame source", &m.FramesRead},
		{"truckmonitor_frames_processed_total", "Total frames run through detection", &m.FramesProcessed},
		{"truckmonitor_frames_skipped_total", "Total frames skipped by the processing interval", &m.FramesSkipped},
		{"truckmonitor_anomaly_frames_total", "Total frames flagged as anomalous", &m.AnomalyFrames},
		{"truckmonitor_read_errors_total", "Total unreadable frames", &m.ReadErrors},
		{"truckmonitor_inference_errors_total", "Total model forward failures", &m.InferenceErrors},
		{"truckmonitor_store_errors_total", "Total failed log store appends", &m.StoreErrors},
		{"truckmonitor_detections_total", "Total detections after NMS", &m.Detections},
		{"truckmonitor_records_appended_total", "Total records appended to the log store", &m.RecordsAppended},
		{"truckmonitor_process_latency_ms", "Processing latency of the last frame in milliseconds", &m.ProcessLatencyMs},
		{"truckmonitor_pipeline_running", "Pipeline running (0=idle, 1=running)", &m.PipelineRunning},
	}

	for _, g := range gauges {
		value := g.value
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return float64(value.Load()) },
		))
	}
}

// UpdateProcessLatency records the latency of the last processed frame.
func (m *Metrics) UpdateProcessLatency(duration time.Duration) {
	m.ProcessLatencyMs.Store(uint64(duration.Milliseconds()))
}

// SetRunning flips the pipeline running gauge.
func (m *Metrics) SetRunning(running bool) {
	if running {
		m.PipelineRunning.Store(1)
	} else {
		m.PipelineRunning.Store(0)
	}
}

// Handler returns the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
