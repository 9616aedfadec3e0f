package domain

import "time"

// HighScoreNotifyInterval is the minimum gap between "new high score"
// notifications, measured from the previous record's date.
const HighScoreNotifyInterval = time.Hour

// EpisodeEvent is one durable record of a PDS or tornado-emergency alert.
type EpisodeEvent struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Details  string    `json:"details"`
}

// HighScore is the all-time composite score record.
type HighScore struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// StatsRecord is the durable statistics document. Lists are deduplicated by
// alert ID; HighestScoreEver.Score never decreases.
type StatsRecord struct {
	PDSTornadoes     []EpisodeEvent `json:"pdsTornadoes"`
	TorETornadoes    []EpisodeEvent `json:"torETornadoes"`
	HighestScoreEver HighScore      `json:"highestScoreEver"`
}

// NewStatsRecord returns the empty default record.
func NewStatsRecord() StatsRecord {
	return StatsRecord{
		PDSTornadoes:  []EpisodeEvent{},
		TorETornadoes: []EpisodeEvent{},
	}
}

// RecordEpisodeEvents appends every marker-carrying alert to its list unless
// an entry with the same ID is already present. Returns the number added.
func (s *StatsRecord) RecordEpisodeEvents(scored []ScoredAlert) int {
	added := 0
	for _, sa := range scored {
		a := sa.Alert
		if a.IsTornadoEmergency() && !containsEvent(s.TorETornadoes, a.ID) {
			s.TorETornadoes = append(s.TorETornadoes, newEpisodeEvent(a))
			added++
		}
		if a.IsPDS() && !containsEvent(s.PDSTornadoes, a.ID) {
			s.PDSTornadoes = append(s.PDSTornadoes, newEpisodeEvent(a))
			added++
		}
	}
	return added
}

// RecordScore raises HighestScoreEver when score is strictly greater and
// reports whether a "new high score" notification is due: only when more
// than HighScoreNotifyInterval has passed since the previous record's date.
func (s *StatsRecord) RecordScore(score int, now time.Time) bool {
	if score <= s.HighestScoreEver.Score {
		return false
	}
	previous := s.HighestScoreEver.Date
	s.HighestScoreEver = HighScore{Date: now, Score: score}
	return previous.IsZero() || now.Sub(previous) > HighScoreNotifyInterval
}

func newEpisodeEvent(a Alert) EpisodeEvent {
	return EpisodeEvent{
		ID:       a.ID,
		Date:     a.Sent,
		Location: a.AreaDesc,
		Details:  a.Description,
	}
}

func containsEvent(events []EpisodeEvent, id string) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}
