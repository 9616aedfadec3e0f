package domain

import "fmt"

// EpisodeTracker is a two-threshold hysteresis gate for one notification
// class. It starts armed, fires once when the metric reaches AlertThreshold,
// and re-arms only after the metric falls to ResetThreshold or below.
type EpisodeTracker struct {
	Name           string
	AlertThreshold int
	ResetThreshold int

	cooling bool
}

// NewEpisodeTracker returns an armed tracker. ResetThreshold must be strictly
// below AlertThreshold.
func NewEpisodeTracker(name string, alertThreshold, resetThreshold int) (*EpisodeTracker, error) {
	if resetThreshold >= alertThreshold {
		return nil, fmt.Errorf("episode tracker %s: reset threshold %d must be below alert threshold %d",
			name, resetThreshold, alertThreshold)
	}
	return &EpisodeTracker{Name: name, AlertThreshold: alertThreshold, ResetThreshold: resetThreshold}, nil
}

// Armed reports whether the next threshold crossing may fire.
func (t *EpisodeTracker) Armed() bool {
	return !t.cooling
}

// Observe feeds one metric sample and reports whether the class fires.
func (t *EpisodeTracker) Observe(metric int) bool {
	if !t.Eligible(metric) {
		return false
	}
	t.cooling = true
	return true
}

// Eligible applies the re-arm rule for metric and reports whether the tracker
// would fire, without committing the firing.
func (t *EpisodeTracker) Eligible(metric int) bool {
	if metric <= t.ResetThreshold {
		t.cooling = false
		return false
	}
	return metric >= t.AlertThreshold && !t.cooling
}

// Settle applies only the re-arm rule. Used when a higher-priority class
// suppresses this one for the current tick; the tracker stays armed.
func (t *EpisodeTracker) Settle(metric int) {
	t.Eligible(metric)
}
