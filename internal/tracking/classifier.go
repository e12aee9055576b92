package tracking

import (
	"time"

	"truckmonitor/internal/model"
)

// DefaultSizeBucket is the placeholder size label of every record.
const DefaultSizeBucket = "medium"

// Options configures a Classifier.
type Options struct {
	SubjectID     string
	SizeBucket    string
	TurnThreshold float64
	Policy        AnomalyPolicy
	// Now overrides the record clock, mainly for tests.
	Now func() time.Time
}

// Classifier turns a frame's detections into log records, updating the
// position tracker as it goes.
type Classifier struct {
	positions PositionTracker
	opts      Options
}

// NewClassifier creates a classifier over the given tracker.
func NewClassifier(positions PositionTracker, opts Options) *Classifier {
	if opts.SizeBucket == "" {
		opts.SizeBucket = DefaultSizeBucket
	}
	if opts.TurnThreshold == 0 {
		opts.TurnThreshold = DefaultTurnThreshold
	}
	if opts.Policy.Scope == "" {
		opts.Policy.Scope = ScopeFrame
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Classifier{positions: positions, opts: opts}
}

// Classify emits exactly one record per detection, in set order.
func (c *Classifier) Classify(set model.DetectionSet) []model.LogRecord {
	statuses := c.opts.Policy.Statuses(set)
	records := make([]model.LogRecord, 0, len(set))

	for i, d := range set {
		current := d.CenterPoint()

		var motion string
		if previous, ok := c.positions.Previous(d); ok {
			motion = Estimate(previous, current, c.opts.TurnThreshold).String()
		}
		c.positions.Update(d, current)

		records = append(records, model.LogRecord{
			Timestamp:  c.opts.Now(),
			SubjectID:  c.opts.SubjectID,
			Position:   d.Box,
			SizeBucket: c.opts.SizeBucket,
			Status:     statuses[i],
			Motion:     motion,
			Label:      d.Label,
			Confidence: d.Confidence,
		})
	}
	return records
}
