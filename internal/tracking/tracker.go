package tracking

import "truckmonitor/internal/model"

// PositionTracker remembers where objects were last seen.
type PositionTracker interface {
	// Previous returns the last known center for the detection's track.
	Previous(d model.Detection) (model.Point, bool)
	// Update records the detection's current center.
	Update(d model.Detection, center model.Point)
	// Len returns the number of tracks.
	Len() int
}

// TrackState maps a class label to its last-seen center.
type TrackState map[string]model.Point

// ClassTracker keys tracks by class label rather than by object instance.
// With several objects of one class in a frame, the previous position of the
// class is whichever of them was processed last.
type ClassTracker struct {
	state TrackState
}

// NewClassTracker creates a tracker with an empty state.
func NewClassTracker() *ClassTracker {
	return &ClassTracker{state: make(TrackState)}
}

func (t *ClassTracker) Previous(d model.Detection) (model.Point, bool) {
	p, ok := t.state[d.Label]
	return p, ok
}

func (t *ClassTracker) Update(d model.Detection, center model.Point) {
	t.state[d.Label] = center
}

func (t *ClassTracker) Len() int {
	return len(t.state)
}

// State returns a copy of the current track state.
func (t *ClassTracker) State() TrackState {
	out := make(TrackState, len(t.state))
	for k, v := range t.state {
		out[k] = v
	}
	return out
}
