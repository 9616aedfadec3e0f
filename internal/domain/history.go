package domain

import "time"

// HistoryWindow is how far back ScoreHistory retains samples.
const HistoryWindow = time.Hour

// HistoryPoint is one composite-score sample.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
}

// ScoreHistory is an append-only series pruned to HistoryWindow on every
// update. Not safe for concurrent use; the aggregator owns it.
type ScoreHistory struct {
	points []HistoryPoint
}

// Add appends a sample at now and drops samples older than now-HistoryWindow.
func (h *ScoreHistory) Add(now time.Time, score int) {
	h.points = append(h.points, HistoryPoint{Timestamp: now, Score: score})

	cutoff := now.Add(-HistoryWindow)
	i := 0
	for i < len(h.points) && h.points[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		h.points = append([]HistoryPoint(nil), h.points[i:]...)
	}
}

// Points returns a copy of the retained samples in insertion order.
func (h *ScoreHistory) Points() []HistoryPoint {
	out := make([]HistoryPoint, len(h.points))
	copy(out, h.points)
	return out
}

// MaxScore returns the highest retained score, or 0 when empty.
func MaxScore(points []HistoryPoint) int {
	highest := 0
	for _, p := range points {
		if p.Score > highest {
			highest = p.Score
		}
	}
	return highest
}
