package domain

import (
	"strings"
	"time"
)

// NWS event names the scorer understands, lower-cased.
const (
	EventTornadoWarning     = "tornado warning"
	EventSevereThunderstorm = "severe thunderstorm warning"
	EventTornadoWatch       = "tornado watch"
)

// Alert is one record from the active-alerts feed. It is never mutated after
// decoding. Zero times mean the field was absent upstream.
type Alert struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	Headline    string    `json:"headline"`
	Description string    `json:"description"`
	AreaDesc    string    `json:"areaDesc"`
	Sent        time.Time `json:"sent"`
	Effective   time.Time `json:"effective"`
	Onset       time.Time `json:"onset"`
	Expires     time.Time `json:"expires"`
}

// ScoredAlert pairs an alert with its contribution for the current tick.
type ScoredAlert struct {
	Alert        Alert `json:"alert"`
	Contribution int   `json:"contribution"`
}

// EventType returns the trimmed, lower-cased event name.
func (a Alert) EventType() string {
	return strings.ToLower(strings.TrimSpace(a.Event))
}

// IsTornadoEmergency reports whether the headline or description carries a
// tornado-emergency marker, regardless of the declared event type.
func (a Alert) IsTornadoEmergency() bool {
	return containsAny(a.markerText(), currentPhrases().Markers.TornadoEmergency)
}

// IsPDS reports whether the headline or description carries a "particularly
// dangerous situation" marker.
func (a Alert) IsPDS() bool {
	return containsAny(a.markerText(), currentPhrases().Markers.PDS)
}

// IsActiveAt reports whether the alert is still in effect at now. Alerts with
// no expiration are treated as active.
func (a Alert) IsActiveAt(now time.Time) bool {
	return a.Expires.IsZero() || a.Expires.After(now)
}

// Areas returns the affected-area list as a deduplicated ordered set.
func (a Alert) Areas() AreaList {
	return ParseAreas(a.AreaDesc)
}

func (a Alert) markerText() string {
	return strings.ToLower(a.Headline + "\n" + a.Description)
}
