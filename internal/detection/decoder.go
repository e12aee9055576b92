package detection

import (
	"truckmonitor/internal/model"
)

const (
	// ScoreThreshold is the default minimum class score (exclusive).
	ScoreThreshold = 0.5
	// NMSThreshold is the default IoU above which overlapping boxes are suppressed.
	NMSThreshold = 0.4
)

// Decoder turns raw network rows into a deduplicated DetectionSet.
type Decoder struct {
	labels         LabelTable
	scoreThreshold float64
	nmsThreshold   float64
}

// NewDecoder creates a decoder. Zero thresholds fall back to the defaults.
func NewDecoder(labels LabelTable, scoreThreshold, nmsThreshold float64) *Decoder {
	if labels == nil {
		labels = Labels(nil)
	}
	if scoreThreshold <= 0 {
		scoreThreshold = ScoreThreshold
	}
	if nmsThreshold <= 0 {
		nmsThreshold = NMSThreshold
	}
	return &Decoder{
		labels:         labels,
		scoreThreshold: scoreThreshold,
		nmsThreshold:   nmsThreshold,
	}
}

// Decode converts candidates of a width x height frame into detections.
// It never fails: empty or fully filtered input yields an empty set.
func (d *Decoder) Decode(candidates []model.Candidate, width, height int) model.DetectionSet {
	var (
		boxes   []model.Box
		scores  []float64
		classes []int
		centers []model.Point
	)

	for _, c := range candidates {
		classID, confidence := argmax(c.Scores)
		if classID < 0 || confidence <= d.scoreThreshold {
			continue
		}

		centerX := int(c.CenterX * float32(width))
		centerY := int(c.CenterY * float32(height))
		w := int(c.Width * float32(width))
		h := int(c.Height * float32(height))

		boxes = append(boxes, model.Box{
			X:      int(float64(centerX) - float64(w)/2),
			Y:      int(float64(centerY) - float64(h)/2),
			Width:  w,
			Height: h,
		})
		scores = append(scores, confidence)
		classes = append(classes, classID)
		centers = append(centers, model.Point{X: float64(centerX), Y: float64(centerY)})
	}

	keep := NMS(boxes, scores, d.scoreThreshold, d.nmsThreshold)

	set := make(model.DetectionSet, 0, len(keep))
	for _, i := range keep {
		set = append(set, model.Detection{
			ClassID:    classes[i],
			Label:      d.labels.Lookup(classes[i]),
			Confidence: scores[i],
			Box:        boxes[i],
			Center:     centers[i],
			HasCenter:  true,
		})
	}
	return set
}

// argmax returns the first index holding the maximum score, or -1 for no scores.
func argmax(scores []float32) (int, float64) {
	best := -1
	var bestScore float32
	for i, s := range scores {
		if best < 0 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best, float64(bestScore)
}
