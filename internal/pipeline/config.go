package pipeline

import (
	"truckmonitor/internal/config"
	"truckmonitor/internal/detection"
	"truckmonitor/internal/logger"
	"truckmonitor/internal/logsink"
	"truckmonitor/internal/metrics"
	"truckmonitor/internal/tracking"
)

// LabelsFromConfig resolves the label table, preferring a names file.
func LabelsFromConfig(cfg *config.Config) (detection.LabelTable, error) {
	if cfg.LabelsFile != "" {
		return detection.LoadLabelFile(cfg.LabelsFile)
	}
	return detection.LabelSet(cfg.LabelSet)
}

// NewFromConfig builds a pipeline with a fresh class tracker.
func NewFromConfig(cfg *config.Config, m Model, store logsink.Store, observers []Observer,
	mtr *metrics.Metrics, log *logger.Logger) (*Pipeline, error) {
	labels, err := LabelsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	scope, err := tracking.ParseScope(cfg.AnomalyScope)
	if err != nil {
		return nil, err
	}

	classifier := tracking.NewClassifier(tracking.NewClassTracker(), tracking.Options{
		SubjectID:     cfg.SubjectID,
		SizeBucket:    cfg.SizeBucket,
		TurnThreshold: cfg.TurnThreshold,
		Policy:        tracking.NewAnomalyPolicy(cfg.AnomalyLabels, scope),
	})

	return New(Options{
		Model:         m,
		Decoder:       detection.NewDecoder(labels, cfg.ScoreThreshold, cfg.NMSThreshold),
		Classifier:    classifier,
		Store:         store,
		Observers:     observers,
		Metrics:       mtr,
		Logger:        log,
		Interval:      cfg.ProcessingInterval,
		MaxReadErrors: cfg.MaxReadErrors,
	}), nil
}
