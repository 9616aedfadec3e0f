package domain

import "time"

// Classification splits a feed batch into the subsets the aggregator needs.
type Classification struct {
	// Scoring holds tornado warnings, severe thunderstorm warnings and
	// tornado watches.
	Scoring []Alert
	// Tornado holds tornado warnings only; its length drives the outbreak
	// trigger. Watches never count here.
	Tornado []Alert
}

// Classify filters a raw batch by event type. Marker text does not affect
// membership; it only affects scoring.
func Classify(batch []Alert) Classification {
	var c Classification
	for _, a := range batch {
		switch a.EventType() {
		case EventTornadoWarning:
			c.Scoring = append(c.Scoring, a)
			c.Tornado = append(c.Tornado, a)
		case EventSevereThunderstorm, EventTornadoWatch:
			c.Scoring = append(c.Scoring, a)
		}
	}
	return c
}

// ActiveEmergencies returns the alerts that carry a tornado-emergency marker
// and are still in effect at now.
func ActiveEmergencies(alerts []Alert, now time.Time) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.IsTornadoEmergency() && a.IsActiveAt(now) {
			out = append(out, a)
		}
	}
	return out
}
