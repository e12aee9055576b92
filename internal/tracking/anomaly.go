package tracking

import (
	"fmt"
	"strconv"
	"strings"

	"truckmonitor/internal/model"
)

// AnomalyScope decides which records an anomalous detection marks.
type AnomalyScope string

const (
	// ScopeFrame marks every record of a frame once any detection is anomalous.
	ScopeFrame AnomalyScope = "frame"
	// ScopeObject marks only the anomalous detection's own record.
	ScopeObject AnomalyScope = "object"
)

// ParseScope parses a scope name.
func ParseScope(s string) (AnomalyScope, error) {
	switch AnomalyScope(strings.ToLower(s)) {
	case ScopeFrame:
		return ScopeFrame, nil
	case ScopeObject:
		return ScopeObject, nil
	}
	return "", fmt.Errorf("unknown anomaly scope: %s", s)
}

// AnomalyPolicy holds the anomaly trigger set and its scope.
type AnomalyPolicy struct {
	labels map[string]struct{}
	Scope  AnomalyScope
}

// NewAnomalyPolicy creates a policy. Labels match case-insensitively against the
// detection label, or exactly against its decimal class id.
func NewAnomalyPolicy(labels []string, scope AnomalyScope) AnomalyPolicy {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	if scope == "" {
		scope = ScopeFrame
	}
	return AnomalyPolicy{labels: set, Scope: scope}
}

// IsAnomalous reports whether a single detection is in the trigger set.
func (p AnomalyPolicy) IsAnomalous(d model.Detection) bool {
	if _, ok := p.labels[strings.ToLower(d.Label)]; ok {
		return true
	}
	_, ok := p.labels[strconv.Itoa(d.ClassID)]
	return ok
}

// Statuses returns one status per detection, in order.
func (p AnomalyPolicy) Statuses(set model.DetectionSet) []model.Status {
	statuses := make([]model.Status, len(set))
	frameAnomaly := false
	for i, d := range set {
		if p.IsAnomalous(d) {
			statuses[i] = model.StatusAnomaly
			frameAnomaly = true
		} else {
			statuses[i] = model.StatusNormal
		}
	}

	if p.Scope == ScopeFrame && frameAnomaly {
		for i := range statuses {
			statuses[i] = model.StatusAnomaly
		}
	}
	return statuses
}
